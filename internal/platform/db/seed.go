package db

import (
	"context"
	"fmt"
	"time"

	"roster/internal/domain/directory"
)

// Seed writes the sample roles and users when the snapshot tables are empty.
// A non-empty snapshot is left untouched.
func Seed(ctx context.Context, snapshot *Snapshot) (bool, error) {
	empty, err := snapshot.Empty(ctx)
	if err != nil {
		return false, fmt.Errorf("check snapshot: %w", err)
	}
	if !empty {
		return false, nil
	}

	err = snapshot.Apply(ctx, directory.Change{
		Kind:  directory.RoleCreated,
		Roles: directory.SeedRoles(),
		Users: directory.SeedUsers(),
		At:    time.Now().UTC(),
	})
	if err != nil {
		return false, fmt.Errorf("write seed: %w", err)
	}
	return true, nil
}
