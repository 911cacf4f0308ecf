package directory

import (
	"context"
	"time"
)

type ChangeKind string

const (
	UserCreated ChangeKind = "user.created"
	UserUpdated ChangeKind = "user.updated"
	UserDeleted ChangeKind = "user.deleted"
	RoleCreated ChangeKind = "role.created"
	RoleUpdated ChangeKind = "role.updated"
	RoleDeleted ChangeKind = "role.deleted"
)

// Change describes one committed mutation. Users and Roles hold the new
// state of every record the mutation wrote; for RoleDeleted, Users are the
// records whose role list was stripped. Seq numbers changes in commit
// order, starting at 1 for each store.
type Change struct {
	Seq       uint64
	Kind      ChangeKind
	Users     []User
	Roles     []Role
	DeletedID string
	At        time.Time
}

// Listener is notified after each mutation, outside the store lock and in
// commit order.
type Listener interface {
	Apply(ctx context.Context, change Change) error
}

type ListenerFunc func(ctx context.Context, change Change) error

func (f ListenerFunc) Apply(ctx context.Context, change Change) error {
	return f(ctx, change)
}
