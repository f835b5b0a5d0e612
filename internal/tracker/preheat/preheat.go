// Package preheat loads the storage-existence snapshot a bundle is validated
// against, so validation itself performs no I/O.
package preheat

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"tracker/internal/tracker/metrics"
	"tracker/internal/tracker/models"
	dErrors "tracker/pkg/domain-errors"
	"tracker/pkg/platform/sentinel"
)

//go:generate mockgen -source=preheat.go -destination=mocks/mocks.go -package=mocks Store

const defaultTimeout = 5 * time.Second

// Store answers which uids of a kind are persisted.
type Store interface {
	Existing(ctx context.Context, kind models.RecordKind, uids []string) ([]string, error)
}

// Snapshot is an immutable set of stored identities. It implements
// models.Existence.
type Snapshot struct {
	stored models.IdentitySet
}

// NewSnapshot builds a snapshot from known stored identities.
func NewSnapshot(ids ...models.Identity) *Snapshot {
	return &Snapshot{stored: models.NewIdentitySet(ids...)}
}

func (s *Snapshot) Exists(id models.Identity) bool {
	return s != nil && s.stored.Contains(id)
}

func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.stored)
}

// Loader queries the store once per kind, concurrently.
type Loader struct {
	store   Store
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
	timeout time.Duration
}

type Option func(*Loader)

func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(l *Loader) {
		l.metrics = m
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(l *Loader) {
		l.tracer = tracer
	}
}

// WithTimeout bounds the whole preheat. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(l *Loader) {
		if d > 0 {
			l.timeout = d
		}
	}
}

func NewLoader(store Store, opts ...Option) (*Loader, error) {
	if store == nil {
		return nil, errors.New("store is required")
	}
	l := &Loader{
		store:   store,
		logger:  slog.Default(),
		tracer:  otel.Tracer("tracker/preheat"),
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Collect returns every identity the bundle references: its own records,
// their parents and relationship endpoints.
func Collect(bundle *models.Bundle) models.IdentitySet {
	ids := models.NewIdentitySet()
	add := func(id models.Identity) {
		if id.UID != "" {
			ids.Add(id)
		}
	}
	for _, r := range bundle.Roots {
		add(r.Identity())
	}
	for _, e := range bundle.Enrollments {
		add(e.Identity())
		add(e.Parent())
	}
	for _, e := range bundle.Events {
		add(e.Identity())
		add(e.Parent())
	}
	for _, rel := range bundle.Relationships {
		add(rel.Identity())
		for _, ep := range []models.Endpoint{rel.From, rel.To} {
			if id, ok := ep.Identity(); ok {
				add(id)
			}
		}
	}
	return ids
}

// Load builds the snapshot for bundle. Any store failure fails the whole load.
func (l *Loader) Load(ctx context.Context, bundle *models.Bundle) (*Snapshot, error) {
	ctx, span := l.tracer.Start(ctx, "preheat.load")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	start := time.Now()
	ids := Collect(bundle)
	span.SetAttributes(attribute.Int("tracker.referenced", len(ids)))

	// One slot per kind keeps goroutines from sharing a slice.
	results := make([][]string, len(models.TopDownKinds))
	g, gctx := errgroup.WithContext(ctx)
	for i, kind := range models.TopDownKinds {
		uids := ids.UIDs(kind)
		if len(uids) == 0 {
			continue
		}
		g.Go(func() error {
			found, err := l.store.Existing(gctx, kind, uids)
			if err != nil {
				return err
			}
			results[i] = found
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		l.logger.ErrorContext(ctx, "failed to load existence snapshot", "error", err)
		return nil, translateStoreError(err)
	}

	snapshot := NewSnapshot()
	for i, kind := range models.TopDownKinds {
		for _, uid := range results[i] {
			snapshot.stored.Add(models.Identity{Kind: kind, UID: uid})
		}
	}

	l.metrics.ObservePreheatLatency(time.Since(start))
	l.logger.DebugContext(ctx, "existence snapshot loaded",
		"referenced", len(ids),
		"stored", snapshot.Len(),
		"duration", time.Since(start),
	)
	return snapshot, nil
}

// Preheat loads the snapshot and attaches it to bundle.Existing.
func (l *Loader) Preheat(ctx context.Context, bundle *models.Bundle) error {
	snapshot, err := l.Load(ctx, bundle)
	if err != nil {
		return err
	}
	bundle.Existing = snapshot
	return nil
}

func translateStoreError(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return dErrors.Wrap(err, dErrors.CodeTimeout, "timed out loading stored records")
	case errors.Is(err, sentinel.ErrInvalidState):
		return dErrors.Wrap(err, dErrors.CodeInternal, "stored records could not be queried")
	default:
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to load stored records")
	}
}
