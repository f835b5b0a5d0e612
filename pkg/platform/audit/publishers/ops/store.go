// Package ops guards an audit sink: operational events are sampled, and sink
// failures trip a circuit breaker that diverts events to the log.
package ops

import (
	"context"
	"log/slog"

	audit "tracker/pkg/platform/audit"
)

// Store decorates an audit.Store. Security events are never sampled.
type Store struct {
	sink    audit.Store
	sampler *Sampler
	breaker *CircuitBreaker
	logger  *slog.Logger
	metrics *Metrics
}

type Option func(*Store)

func WithSampler(s *Sampler) Option {
	return func(st *Store) {
		st.sampler = s
	}
}

func WithCircuitBreaker(cb *CircuitBreaker) Option {
	return func(st *Store) {
		st.breaker = cb
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(st *Store) {
		st.logger = logger
	}
}

func WithMetrics(m *Metrics) Option {
	return func(st *Store) {
		st.metrics = m
	}
}

// New wraps sink. Without options every event is kept and a default breaker
// is used.
func New(sink audit.Store, opts ...Option) *Store {
	st := &Store{
		sink:    sink,
		sampler: NewSampler(1, nil),
		breaker: NewCircuitBreaker(5, 0),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(st)
	}
	return st
}

// Append writes event to the sink. It only fails when the sink fails while
// the circuit is closed; an open circuit logs the event and returns nil.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	if event.Category != audit.CategorySecurity && !s.sampler.Keep(event.Action) {
		s.metrics.incSampled()
		return nil
	}

	if !s.breaker.Allow() {
		s.fallback(ctx, event, nil)
		return nil
	}

	if err := s.sink.Append(ctx, event); err != nil {
		s.metrics.incSinkFailure()
		if s.breaker.RecordFailure() {
			s.metrics.setCircuitOpen(true)
			s.logger.WarnContext(ctx, "audit sink circuit opened", "error", err)
		}
		s.fallback(ctx, event, err)
		return err
	}

	s.breaker.RecordSuccess()
	s.metrics.setCircuitOpen(false)
	s.metrics.incWritten(string(event.Category))
	return nil
}

// ListByActor delegates to the sink when it can read events back.
func (s *Store) ListByActor(ctx context.Context, actorID string) ([]audit.Event, error) {
	lister, ok := s.sink.(interface {
		ListByActor(ctx context.Context, actorID string) ([]audit.Event, error)
	})
	if !ok {
		return nil, nil
	}
	return lister.ListByActor(ctx, actorID)
}

func (s *Store) fallback(ctx context.Context, event audit.Event, cause error) {
	s.metrics.incFallback()
	attrs := []any{
		"category", string(event.Category),
		"action", event.Action,
		"actor_id", event.ActorID,
		"subject", event.Subject,
		"decision", event.Decision,
		"request_id", event.RequestID,
	}
	if cause != nil {
		attrs = append(attrs, "error", cause)
	}
	s.logger.WarnContext(ctx, "audit event not written to sink", attrs...)
}
