package db

import (
	"context"
	"fmt"

	"roster/internal/domain/audit"
	"roster/internal/platform/crypto"
)

// AuditLog stores audit events in Postgres. Before and after payloads hold
// directory records, so they are sealed like snapshot rows.
type AuditLog struct {
	pool   *Pool
	sealer *crypto.Sealer
}

func NewAuditLog(pool *Pool, sealer *crypto.Sealer) *AuditLog {
	return &AuditLog{pool: pool, sealer: sealer}
}

func (l *AuditLog) Append(ctx context.Context, evt audit.Event) error {
	before, err := sealJSON(l.sealer, evt.Before)
	if err != nil {
		return fmt.Errorf("seal audit before: %w", err)
	}
	after, err := sealJSON(l.sealer, evt.After)
	if err != nil {
		return fmt.Errorf("seal audit after: %w", err)
	}
	_, err = l.pool.Exec(ctx, `
    INSERT INTO audit_events (id, actor_user_id, action, entity_type, entity_id, request_id, ip, before_json, after_json, created_at)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
    ON CONFLICT (id) DO NOTHING
  `, evt.ID, evt.ActorID, evt.Action, evt.EntityType, evt.EntityID, evt.RequestID, evt.IP, before, after, evt.CreatedAt)
	return err
}

func (l *AuditLog) Recent(ctx context.Context, limit int) ([]audit.Event, error) {
	rows, err := l.pool.Query(ctx, `
    SELECT id, actor_user_id, action, entity_type, entity_id, request_id, ip, before_json, after_json, created_at
    FROM (SELECT * FROM audit_events ORDER BY seq DESC LIMIT $1) recent
    ORDER BY seq ASC
  `, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []audit.Event{}
	for rows.Next() {
		var evt audit.Event
		var before, after []byte
		if err := rows.Scan(&evt.ID, &evt.ActorID, &evt.Action, &evt.EntityType, &evt.EntityID, &evt.RequestID, &evt.IP, &before, &after, &evt.CreatedAt); err != nil {
			return nil, err
		}
		if evt.Before, err = l.open(before); err != nil {
			return nil, fmt.Errorf("open audit event %s: %w", evt.ID, err)
		}
		if evt.After, err = l.open(after); err != nil {
			return nil, fmt.Errorf("open audit event %s: %w", evt.ID, err)
		}
		evt.CreatedAt = evt.CreatedAt.UTC()
		out = append(out, evt)
	}
	return out, rows.Err()
}

func (l *AuditLog) open(raw []byte) ([]byte, error) {
	if raw == nil {
		return nil, nil
	}
	return openJSON(l.sealer, raw)
}
