//go:build integration

package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"tracker/internal/tracker/metrics"
	"tracker/internal/tracker/models"
	"tracker/pkg/testutil/containers"
)

type countingStore struct {
	*InMemoryStore
	calls [][]string
	err   error
}

func (c *countingStore) Existing(ctx context.Context, kind models.RecordKind, uids []string) ([]string, error) {
	c.calls = append(c.calls, append([]string(nil), uids...))
	if c.err != nil {
		return nil, c.err
	}
	return c.InMemoryStore.Existing(ctx, kind, uids)
}

type CachedStoreSuite struct {
	suite.Suite
	redis   *containers.RedisContainer
	backing *countingStore
	metrics *metrics.Metrics
	store   *CachedStore
}

func TestCachedStoreSuite(t *testing.T) {
	suite.Run(t, new(CachedStoreSuite))
}

func (s *CachedStoreSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
}

func (s *CachedStoreSuite) TearDownSuite() {
	_ = s.redis.Client.Close()
	_ = s.redis.Container.Terminate(context.Background())
}

func (s *CachedStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
	s.backing = &countingStore{InMemoryStore: NewInMemoryStore()}
	s.metrics = metrics.NewWithRegistry(prometheus.NewRegistry())
	s.store = NewCachedStore(s.redis.Client.Client, s.backing, time.Minute, WithCacheMetrics(s.metrics))
}

func (s *CachedStoreSuite) TestReadThrough() {
	ctx := context.Background()
	s.Require().NoError(s.backing.MarkStored(ctx, models.KindRoot, []string{"PQfMcpmXeFE"}))

	found, err := s.store.Existing(ctx, models.KindRoot, []string{"PQfMcpmXeFE", "nBnjGIbXqy9"})
	s.Require().NoError(err)
	s.ElementsMatch([]string{"PQfMcpmXeFE"}, found)
	s.Len(s.backing.calls, 1)

	found, err = s.store.Existing(ctx, models.KindRoot, []string{"PQfMcpmXeFE", "nBnjGIbXqy9"})
	s.Require().NoError(err)
	s.ElementsMatch([]string{"PQfMcpmXeFE"}, found)
	s.Require().Len(s.backing.calls, 2)
	s.Equal([]string{"nBnjGIbXqy9"}, s.backing.calls[1], "only misses reach the backing store")

	s.Equal(float64(1), testutil.ToFloat64(s.metrics.ExistenceLookups.WithLabelValues("TrackedEntity", "cache")))
}

func (s *CachedStoreSuite) TestEvict() {
	ctx := context.Background()
	s.Require().NoError(s.store.MarkStored(ctx, models.KindEvent, []string{"ZwwuwNp6gVd"}))
	s.Require().NoError(s.store.Evict(ctx, models.KindEvent, []string{"ZwwuwNp6gVd"}))

	found, err := s.store.Existing(ctx, models.KindEvent, []string{"ZwwuwNp6gVd"})
	s.Require().NoError(err)
	s.Empty(found)
}

func (s *CachedStoreSuite) TestEntriesExpireIndependently() {
	ctx := context.Background()
	ttl := 1500 * time.Millisecond
	cache := NewCachedStore(s.redis.Client.Client, s.backing, ttl)

	s.Require().NoError(cache.MarkStored(ctx, models.KindEvent, []string{"ZwwuwNp6gVd"}))
	for range 4 {
		time.Sleep(ttl / 3)
		s.Require().NoError(cache.MarkStored(ctx, models.KindEvent, []string{"QsAhMiZtnl2"}))
	}

	cached, err := s.redis.Client.Exists(ctx,
		cacheKey(models.KindEvent, "ZwwuwNp6gVd"),
		cacheKey(models.KindEvent, "QsAhMiZtnl2"),
	).Result()
	s.Require().NoError(err)
	s.Equal(int64(1), cached, "only the recently written entry is still cached")

	found, err := cache.Existing(ctx, models.KindEvent, []string{"ZwwuwNp6gVd", "QsAhMiZtnl2"})
	s.Require().NoError(err)
	s.Equal([]string{"QsAhMiZtnl2"}, found, "the expired entry is re-checked against the backing store")
	s.Require().Len(s.backing.calls, 1)
	s.Equal([]string{"ZwwuwNp6gVd"}, s.backing.calls[0])
}

func (s *CachedStoreSuite) TestBackingErrorPropagates() {
	s.backing.err = errors.New("connection refused")
	_, err := s.store.Existing(context.Background(), models.KindEvent, []string{"ZwwuwNp6gVd"})
	s.Require().Error(err)
}
