// Package store answers which tracker records are already persisted.
package store

import (
	"context"

	"tracker/internal/tracker/models"
)

// ExistenceStore looks up persisted records by kind in one batch.
type ExistenceStore interface {
	// Existing returns the subset of uids that are stored for kind. Order is
	// unspecified.
	Existing(ctx context.Context, kind models.RecordKind, uids []string) ([]string, error)
}

// Writer records identities as stored. Used by the in-memory store and by
// cache population.
type Writer interface {
	MarkStored(ctx context.Context, kind models.RecordKind, uids []string) error
}
