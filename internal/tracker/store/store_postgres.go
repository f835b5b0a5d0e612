package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"tracker/internal/tracker/models"
	"tracker/pkg/platform/sentinel"
)

// Schema creates the minimal tables the existence lookups read. Records are
// soft-deleted; a deleted row no longer counts as stored.
const Schema = `
CREATE TABLE IF NOT EXISTS tracked_entity (
	uid     VARCHAR(11) PRIMARY KEY,
	deleted BOOLEAN NOT NULL DEFAULT FALSE
);
CREATE TABLE IF NOT EXISTS enrollment (
	uid     VARCHAR(11) PRIMARY KEY,
	deleted BOOLEAN NOT NULL DEFAULT FALSE
);
CREATE TABLE IF NOT EXISTS event (
	uid     VARCHAR(11) PRIMARY KEY,
	deleted BOOLEAN NOT NULL DEFAULT FALSE
);
CREATE TABLE IF NOT EXISTS relationship (
	uid     VARCHAR(11) PRIMARY KEY,
	deleted BOOLEAN NOT NULL DEFAULT FALSE
);
`

var tables = map[models.RecordKind]string{
	models.KindRoot:         "tracked_entity",
	models.KindEnrollment:   "enrollment",
	models.KindEvent:        "event",
	models.KindRelationship: "relationship",
}

// PostgresStore reads record existence from PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema applies Schema.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("apply tracker schema: %w", err)
	}
	return nil
}

// Existing uses one ANY($1) query per call.
func (s *PostgresStore) Existing(ctx context.Context, kind models.RecordKind, uids []string) ([]string, error) {
	if len(uids) == 0 {
		return nil, nil
	}
	table, ok := tables[kind]
	if !ok {
		return nil, fmt.Errorf("%w: unknown record kind %d", sentinel.ErrInvalidState, kind)
	}

	query := `SELECT uid FROM ` + table + ` WHERE uid = ANY($1) AND NOT deleted`
	rows, err := s.db.QueryContext(ctx, query, pq.Array(uids))
	if err != nil {
		return nil, fmt.Errorf("query existing %s: %w: %w", table, sentinel.ErrUnavailable, err)
	}
	defer rows.Close()

	found := make([]string, 0, len(uids))
	for rows.Next() {
		var uid string
		if err := rows.Scan(&uid); err != nil {
			return nil, fmt.Errorf("scan existing %s: %w", table, err)
		}
		found = append(found, uid)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate existing %s: %w: %w", table, sentinel.ErrUnavailable, err)
	}
	return found, nil
}

// MarkStored inserts uids, reviving soft-deleted rows. Batch insert uses
// unnest for a single round trip.
func (s *PostgresStore) MarkStored(ctx context.Context, kind models.RecordKind, uids []string) error {
	if len(uids) == 0 {
		return nil
	}
	table, ok := tables[kind]
	if !ok {
		return fmt.Errorf("%w: unknown record kind %d", sentinel.ErrInvalidState, kind)
	}
	query := `
		INSERT INTO ` + table + ` (uid, deleted)
		SELECT unnest($1::text[]), FALSE
		ON CONFLICT (uid) DO UPDATE SET deleted = FALSE
	`
	if _, err := s.db.ExecContext(ctx, query, pq.Array(uids)); err != nil {
		return fmt.Errorf("mark stored %s: %w: %w", table, sentinel.ErrUnavailable, err)
	}
	return nil
}

// MarkDeleted soft-deletes uids.
func (s *PostgresStore) MarkDeleted(ctx context.Context, kind models.RecordKind, uids []string) error {
	if len(uids) == 0 {
		return nil
	}
	table, ok := tables[kind]
	if !ok {
		return fmt.Errorf("%w: unknown record kind %d", sentinel.ErrInvalidState, kind)
	}
	query := `UPDATE ` + table + ` SET deleted = TRUE WHERE uid = ANY($1)`
	if _, err := s.db.ExecContext(ctx, query, pq.Array(uids)); err != nil {
		return fmt.Errorf("mark deleted %s: %w: %w", table, sentinel.ErrUnavailable, err)
	}
	return nil
}
