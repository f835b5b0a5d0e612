package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	audit "tracker/pkg/platform/audit"
)

// Schema creates the audit_events table. Counts are kept as JSONB so new
// outcome totals need no migration.
const Schema = `
CREATE TABLE IF NOT EXISTS audit_events (
	id         UUID PRIMARY KEY,
	category   TEXT NOT NULL,
	timestamp  TIMESTAMPTZ NOT NULL,
	actor_id   TEXT NOT NULL DEFAULT '',
	subject    TEXT NOT NULL DEFAULT '',
	action     TEXT NOT NULL,
	decision   TEXT NOT NULL DEFAULT '',
	reason     TEXT NOT NULL DEFAULT '',
	request_id TEXT NOT NULL DEFAULT '',
	counts     JSONB
);
CREATE INDEX IF NOT EXISTS audit_events_actor_idx ON audit_events (actor_id, timestamp DESC);
`

// Store implements audit.Store on PostgreSQL.
type Store struct {
	db    *sql.DB
	newID func() uuid.UUID
}

// New creates a new PostgreSQL audit store.
func New(db *sql.DB) *Store {
	return &Store{db: db, newID: uuid.New}
}

// EnsureSchema creates the audit table when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("create audit schema: %w", err)
	}
	return nil
}

// Append inserts an audit event under a fresh ID.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	return s.AppendWithID(ctx, s.newID(), event)
}

// AppendWithID inserts an audit event under id. Inserting an ID that is
// already stored is a no-op, so redelivered queue messages are stored once.
func (s *Store) AppendWithID(ctx context.Context, id uuid.UUID, event audit.Event) error {
	// Always derive category from action - eventCategories map is the source of truth
	category := audit.AuditEvent(event.Action).Category()

	var counts any
	if len(event.Counts) > 0 {
		raw, err := json.Marshal(event.Counts)
		if err != nil {
			return fmt.Errorf("marshal audit counts: %w", err)
		}
		counts = string(raw)
	}

	query := `
		INSERT INTO audit_events (
			id, category, timestamp, actor_id, subject, action,
			decision, reason, request_id, counts
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO NOTHING
	`
	_, err := s.db.ExecContext(ctx, query,
		id,
		string(category),
		event.Timestamp,
		event.ActorID,
		event.Subject,
		event.Action,
		event.Decision,
		event.Reason,
		event.RequestID,
		counts,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListByActor returns events submitted by actorID, newest first.
func (s *Store) ListByActor(ctx context.Context, actorID string) ([]audit.Event, error) {
	query := `
		SELECT category, timestamp, actor_id, subject, action,
			   decision, reason, request_id, counts
		FROM audit_events
		WHERE actor_id = $1
		ORDER BY timestamp DESC
	`

	rows, err := s.db.QueryContext(ctx, query, actorID)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// ListRecent returns the N most recent events.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]audit.Event, error) {
	query := `
		SELECT category, timestamp, actor_id, subject, action,
			   decision, reason, request_id, counts
		FROM audit_events
		ORDER BY timestamp DESC
		LIMIT $1
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]audit.Event, error) {
	var events []audit.Event
	for rows.Next() {
		var (
			category string
			counts   []byte
			event    audit.Event
		)
		err := rows.Scan(
			&category,
			&event.Timestamp,
			&event.ActorID,
			&event.Subject,
			&event.Action,
			&event.Decision,
			&event.Reason,
			&event.RequestID,
			&counts,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.Category = audit.EventCategory(category)
		if len(counts) > 0 {
			if err := json.Unmarshal(counts, &event.Counts); err != nil {
				return nil, fmt.Errorf("decode audit counts: %w", err)
			}
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
