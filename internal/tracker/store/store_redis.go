package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"tracker/internal/tracker/metrics"
	"tracker/internal/tracker/models"
	"tracker/pkg/platform/sentinel"
)

const cacheKeyPrefix = "tracker:stored:"

// CachedStore is a read-through Redis cache in front of another ExistenceStore.
// Only positive answers are cached: a record that is stored stays stored until
// the TTL expires, while a miss is always re-checked against the backing store.
type CachedStore struct {
	client  *redis.Client
	backing ExistenceStore
	ttl     time.Duration
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type CachedStoreOption func(*CachedStore)

func WithCacheLogger(logger *slog.Logger) CachedStoreOption {
	return func(s *CachedStore) {
		s.logger = logger
	}
}

func WithCacheMetrics(m *metrics.Metrics) CachedStoreOption {
	return func(s *CachedStore) {
		s.metrics = m
	}
}

func NewCachedStore(client *redis.Client, backing ExistenceStore, ttl time.Duration, opts ...CachedStoreOption) *CachedStore {
	s := &CachedStore{
		client:  client,
		backing: backing,
		ttl:     ttl,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// cacheKey is one key per identity so every entry expires on its own TTL.
// The kind is a hash tag so a batch MGET stays in one cluster slot.
func cacheKey(kind models.RecordKind, uid string) string {
	return cacheKeyPrefix + "{" + kind.String() + "}:" + uid
}

func cacheKeys(kind models.RecordKind, uids []string) []string {
	keys := make([]string, len(uids))
	for i, uid := range uids {
		keys[i] = cacheKey(kind, uid)
	}
	return keys
}

// Existing answers from the cache first and falls through to the backing
// store for misses. A cache failure degrades to the backing store.
func (s *CachedStore) Existing(ctx context.Context, kind models.RecordKind, uids []string) ([]string, error) {
	if len(uids) == 0 {
		return nil, nil
	}

	hits, err := s.client.MGet(ctx, cacheKeys(kind, uids)...).Result()
	if err != nil {
		s.logger.WarnContext(ctx, "existence cache unavailable, reading backing store",
			"kind", kind.String(),
			"error", err,
		)
		s.metrics.AddExistenceLookups(kind.String(), "store", len(uids))
		return s.backing.Existing(ctx, kind, uids)
	}

	var found, misses []string
	for i, hit := range hits {
		if hit != nil {
			found = append(found, uids[i])
		} else {
			misses = append(misses, uids[i])
		}
	}
	s.metrics.AddExistenceLookups(kind.String(), "cache", len(found))
	if len(misses) == 0 {
		return found, nil
	}

	s.metrics.AddExistenceLookups(kind.String(), "store", len(misses))
	stored, err := s.backing.Existing(ctx, kind, misses)
	if err != nil {
		return nil, err
	}
	if err := s.MarkStored(ctx, kind, stored); err != nil {
		s.logger.WarnContext(ctx, "failed to populate existence cache",
			"kind", kind.String(),
			"error", err,
		)
	}
	return append(found, stored...), nil
}

// MarkStored caches each uid under its own key with a fresh TTL. Writing one
// uid never extends the lifetime of another.
func (s *CachedStore) MarkStored(ctx context.Context, kind models.RecordKind, uids []string) error {
	if len(uids) == 0 {
		return nil
	}
	pipe := s.client.Pipeline()
	for _, key := range cacheKeys(kind, uids) {
		pipe.Set(ctx, key, 1, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache stored %s: %w: %w", kind, sentinel.ErrUnavailable, err)
	}
	return nil
}

// Evict removes uids from the cache, for example after a delete import.
func (s *CachedStore) Evict(ctx context.Context, kind models.RecordKind, uids []string) error {
	if len(uids) == 0 {
		return nil
	}
	return s.client.Del(ctx, cacheKeys(kind, uids)...).Err()
}
