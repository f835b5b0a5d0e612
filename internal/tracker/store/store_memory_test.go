package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tracker/internal/tracker/models"
)

func TestInMemoryStore_Existing(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	require.NoError(t, s.MarkStored(ctx, models.KindRoot, []string{"PQfMcpmXeFE", "Kj6vYde4LHh"}))
	require.NoError(t, s.MarkStored(ctx, models.KindEvent, []string{"ZwwuwNp6gVd"}))

	t.Run("returns only stored uids of the kind", func(t *testing.T) {
		found, err := s.Existing(ctx, models.KindRoot, []string{"PQfMcpmXeFE", "ZwwuwNp6gVd", "nBnjGIbXqy9"})
		require.NoError(t, err)
		assert.Equal(t, []string{"PQfMcpmXeFE"}, found)
	})

	t.Run("kinds are separate namespaces", func(t *testing.T) {
		found, err := s.Existing(ctx, models.KindEnrollment, []string{"PQfMcpmXeFE"})
		require.NoError(t, err)
		assert.Empty(t, found)
	})

	t.Run("clear forgets everything", func(t *testing.T) {
		s.Clear()
		found, err := s.Existing(ctx, models.KindRoot, []string{"PQfMcpmXeFE"})
		require.NoError(t, err)
		assert.Empty(t, found)
	})
}
