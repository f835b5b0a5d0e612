package consumer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"
)

// scriptedFetcher returns one scripted poll per call and cancels the run
// once the script is exhausted.
type scriptedFetcher struct {
	polls   []kgo.Fetches
	cancel  context.CancelFunc
	commits int
}

func (f *scriptedFetcher) PollFetches(context.Context) kgo.Fetches {
	if len(f.polls) == 0 {
		f.cancel()
		return kgo.Fetches{}
	}
	next := f.polls[0]
	f.polls = f.polls[1:]
	return next
}

func (f *scriptedFetcher) CommitUncommittedOffsets(context.Context) error {
	f.commits++
	return nil
}

type recordingHandler struct {
	seen []*Message
	err  error
}

func (h *recordingHandler) Handle(_ context.Context, msg *Message) error {
	h.seen = append(h.seen, msg)
	return h.err
}

func batch(topic string, records ...*kgo.Record) kgo.Fetches {
	for _, r := range records {
		r.Topic = topic
	}
	return kgo.Fetches{{Topics: []kgo.FetchTopic{{
		Topic:      topic,
		Partitions: []kgo.FetchPartition{{Partition: 0, Records: records}},
	}}}}
}

func closedClient() kgo.Fetches {
	return kgo.Fetches{{Topics: []kgo.FetchTopic{{
		Partitions: []kgo.FetchPartition{{Partition: -1, Err: kgo.ErrClientClosed}},
	}}}}
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestConsumer_Run(t *testing.T) {
	t.Run("handles records and commits each batch", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		fetcher := &scriptedFetcher{cancel: cancel, polls: []kgo.Fetches{
			batch("tracker.audit.operations",
				&kgo.Record{Key: []byte("a"), Value: []byte("1"), Offset: 10,
					Headers: []kgo.RecordHeader{{Key: "action", Value: []byte("import_validated")}}},
				&kgo.Record{Key: []byte("b"), Value: []byte("2"), Offset: 11},
			),
			batch("tracker.audit.security", &kgo.Record{Key: []byte("c"), Offset: 3}),
		}}
		handler := &recordingHandler{}

		err := New(fetcher, handler, discard()).Run(ctx)

		assert.ErrorIs(t, err, context.Canceled)
		require.Len(t, handler.seen, 3)
		assert.Equal(t, "tracker.audit.operations", handler.seen[0].Topic)
		assert.Equal(t, "import_validated", handler.seen[0].Headers["action"])
		assert.Equal(t, int64(11), handler.seen[1].Offset)
		assert.Equal(t, "tracker.audit.security", handler.seen[2].Topic)
		assert.Equal(t, 2, fetcher.commits)
	})

	t.Run("handler error stops before commit", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		fetcher := &scriptedFetcher{cancel: cancel, polls: []kgo.Fetches{
			batch("tracker.audit.security",
				&kgo.Record{Key: []byte("a"), Offset: 1},
				&kgo.Record{Key: []byte("b"), Offset: 2},
			),
		}}
		handler := &recordingHandler{err: errors.New("db down")}

		err := New(fetcher, handler, discard()).Run(ctx)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "tracker.audit.security/0@1")
		assert.Len(t, handler.seen, 1)
		assert.Zero(t, fetcher.commits)
	})

	t.Run("closed client ends the loop cleanly", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		fetcher := &scriptedFetcher{cancel: cancel, polls: []kgo.Fetches{closedClient()}}

		err := New(fetcher, &recordingHandler{}, discard()).Run(ctx)

		assert.NoError(t, err)
		assert.Zero(t, fetcher.commits)
	})
}
