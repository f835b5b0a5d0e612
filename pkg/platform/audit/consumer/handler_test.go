package consumer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tracker/internal/platform/kafka/consumer"
	audit "tracker/pkg/platform/audit"
)

type fakeStore struct {
	ids    []uuid.UUID
	events []audit.Event
	err    error
}

func (s *fakeStore) AppendWithID(_ context.Context, id uuid.UUID, event audit.Event) error {
	if s.err != nil {
		return s.err
	}
	s.ids = append(s.ids, id)
	s.events = append(s.events, event)
	return nil
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func encoded(t *testing.T, event audit.Event) []byte {
	t.Helper()
	value, err := audit.Encode(event)
	require.NoError(t, err)
	return value
}

const eventKey = "3d1f0c7a-5b2e-4a9d-8c6f-7e1a2b3c4d5e"

func TestEventHandler(t *testing.T) {
	skipped := audit.Event{
		Timestamp: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
		ActorID:   "M5zQapPyTZI",
		Subject:   "CREATE/SKIP",
		Action:    string(audit.EventValidationSkipped),
		Decision:  "skipped",
		RequestID: "req-3",
		Counts:    map[string]int{"records": 2},
	}

	t.Run("stores the event under the message key", func(t *testing.T) {
		store := &fakeStore{}
		h := NewSecurityHandler(store, discard())

		err := h.Handle(context.Background(), &consumer.Message{
			Topic: "tracker.audit.security",
			Key:   []byte(eventKey),
			Value: encoded(t, skipped),
		})

		require.NoError(t, err)
		require.Len(t, store.events, 1)
		assert.Equal(t, uuid.MustParse(eventKey), store.ids[0])
		got := store.events[0]
		assert.Equal(t, audit.CategorySecurity, got.Category)
		assert.True(t, skipped.Timestamp.Equal(got.Timestamp))
		assert.Equal(t, "M5zQapPyTZI", got.ActorID)
		assert.Equal(t, map[string]int{"records": 2}, got.Counts)
	})

	t.Run("malformed messages are committed", func(t *testing.T) {
		store := &fakeStore{}
		h := NewSecurityHandler(store, discard())

		assert.NoError(t, h.Handle(context.Background(), &consumer.Message{Key: []byte("not-a-uuid")}))
		assert.NoError(t, h.Handle(context.Background(), &consumer.Message{Key: []byte(eventKey), Value: []byte("{")}))
		assert.Empty(t, store.events)
	})

	t.Run("security store failure is returned", func(t *testing.T) {
		h := NewSecurityHandler(&fakeStore{err: errors.New("connection refused")}, discard())

		err := h.Handle(context.Background(), &consumer.Message{Key: []byte(eventKey), Value: encoded(t, skipped)})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection refused")
	})

	t.Run("operations store failure is dropped", func(t *testing.T) {
		h := NewOpsHandler(&fakeStore{err: errors.New("connection refused")}, discard())
		validated := audit.Event{Timestamp: time.Now(), Action: string(audit.EventImportValidated)}

		err := h.Handle(context.Background(), &consumer.Message{Key: []byte(eventKey), Value: encoded(t, validated)})

		assert.NoError(t, err)
	})
}

func TestRouter(t *testing.T) {
	security, ops := &fakeStore{}, &fakeStore{}
	router := NewRouter(discard(), nil)
	router.Register("tracker.audit.security", NewSecurityHandler(security, discard()))
	router.Register("tracker.audit.operations", NewOpsHandler(ops, discard()))
	value := encoded(t, audit.Event{Timestamp: time.Now(), Action: string(audit.EventImportRejected)})

	require.NoError(t, router.Handle(context.Background(), &consumer.Message{
		Topic: "tracker.audit.operations", Key: []byte(eventKey), Value: value,
	}))
	require.NoError(t, router.Handle(context.Background(), &consumer.Message{
		Topic: "tracker.audit.unknown", Key: []byte(eventKey), Value: value,
	}))

	assert.Empty(t, security.events)
	assert.Len(t, ops.events, 1)
	assert.ElementsMatch(t, []string{"tracker.audit.security", "tracker.audit.operations"}, router.Topics())
}
