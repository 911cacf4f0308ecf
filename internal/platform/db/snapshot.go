package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"roster/internal/domain/directory"
	"roster/internal/platform/crypto"
)

// Snapshot mirrors the in-memory directory into Postgres. It is registered
// as a directory.Listener, so every committed mutation is written through.
// With a configured sealer each row is stored as {"sealed": <ciphertext>}.
type Snapshot struct {
	pool   *Pool
	sealer *crypto.Sealer
}

// sealedRecord is the row shape written when encryption is configured.
type sealedRecord struct {
	Sealed []byte `json:"sealed"`
}

func NewSnapshot(pool *Pool, sealer *crypto.Sealer) *Snapshot {
	return &Snapshot{pool: pool, sealer: sealer}
}

func (s *Snapshot) Apply(ctx context.Context, change directory.Change) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin snapshot tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	switch change.Kind {
	case directory.UserDeleted:
		if _, err := tx.Exec(ctx, "DELETE FROM directory_users WHERE id = $1", change.DeletedID); err != nil {
			return fmt.Errorf("delete user %s: %w", change.DeletedID, err)
		}
	case directory.RoleDeleted:
		if _, err := tx.Exec(ctx, "DELETE FROM directory_roles WHERE id = $1", change.DeletedID); err != nil {
			return fmt.Errorf("delete role %s: %w", change.DeletedID, err)
		}
	}

	for _, role := range change.Roles {
		if err := s.upsert(ctx, tx, "directory_roles", role.ID, role); err != nil {
			return err
		}
	}
	for _, user := range change.Users {
		if err := s.upsert(ctx, tx, "directory_users", user.ID, user); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (s *Snapshot) upsert(ctx context.Context, tx pgx.Tx, table, id string, record any) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode %s %s: %w", table, id, err)
	}
	if data, err = sealJSON(s.sealer, data); err != nil {
		return fmt.Errorf("seal %s %s: %w", table, id, err)
	}
	_, err = tx.Exec(ctx, `
    INSERT INTO `+table+` (id, data, updated_at)
    VALUES ($1, $2, now())
    ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = now()
  `, id, data)
	if err != nil {
		return fmt.Errorf("upsert %s %s: %w", table, id, err)
	}
	return nil
}

// Load reads both collections in insertion order.
func (s *Snapshot) Load(ctx context.Context) ([]directory.User, []directory.Role, error) {
	roles, err := loadRecords[directory.Role](ctx, s, "SELECT data FROM directory_roles ORDER BY seq")
	if err != nil {
		return nil, nil, fmt.Errorf("load roles: %w", err)
	}
	users, err := loadRecords[directory.User](ctx, s, "SELECT data FROM directory_users ORDER BY seq")
	if err != nil {
		return nil, nil, fmt.Errorf("load users: %w", err)
	}
	return users, roles, nil
}

func loadRecords[T any](ctx context.Context, s *Snapshot, query string) ([]T, error) {
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		raw, err = openJSON(s.sealer, raw)
		if err != nil {
			return nil, err
		}
		var record T
		if err := json.Unmarshal(raw, &record); err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	return out, rows.Err()
}

// sealJSON wraps a JSON document as {"sealed": <ciphertext>} when the
// sealer has a key.
func sealJSON(sealer *crypto.Sealer, data []byte) ([]byte, error) {
	if !sealer.Configured() || data == nil {
		return data, nil
	}
	sealed, err := sealer.Seal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(sealedRecord{Sealed: sealed})
}

// openJSON unwraps a sealed document. Plain documents are returned as is so
// a key can be introduced on an existing database.
func openJSON(sealer *crypto.Sealer, raw []byte) ([]byte, error) {
	var wrapped sealedRecord
	if err := json.Unmarshal(raw, &wrapped); err != nil || len(wrapped.Sealed) == 0 {
		return raw, nil
	}
	if !sealer.Configured() {
		return nil, errors.New("record is encrypted but DATA_ENCRYPTION_KEY is not set")
	}
	return sealer.Open(wrapped.Sealed)
}

func (s *Snapshot) Empty(ctx context.Context) (bool, error) {
	var count int
	err := s.pool.QueryRow(ctx, "SELECT (SELECT COUNT(1) FROM directory_users) + (SELECT COUNT(1) FROM directory_roles)").Scan(&count)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}
