package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	audit "tracker/pkg/platform/audit"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"
)

type recordingProducer struct {
	records []*kgo.Record
	err     error
}

func (p *recordingProducer) ProduceSync(_ context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	results := make(kgo.ProduceResults, 0, len(rs))
	for _, r := range rs {
		p.records = append(p.records, r)
		results = append(results, kgo.ProduceResult{Record: r, Err: p.err})
	}
	return results
}

func TestSink_AppendRoutesByCategory(t *testing.T) {
	producer := &recordingProducer{}
	eventID := uuid.MustParse("6f1c2b8e-3a4d-4f5e-9a7b-1c2d3e4f5a6b")
	sink := NewSink(producer, "tracker.audit", WithIDGenerator(func() uuid.UUID { return eventID }))

	err := sink.Append(context.Background(), audit.Event{
		Timestamp: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
		ActorID:   "admin",
		Action:    string(audit.EventValidationSkipped),
		Subject:   "CREATE_AND_UPDATE/SKIP",
		RequestID: "req-1",
	})
	require.NoError(t, err)
	require.Len(t, producer.records, 1)

	record := producer.records[0]
	assert.Equal(t, "tracker.audit.security", record.Topic)
	assert.Equal(t, eventID.String(), string(record.Key))

	var body map[string]any
	require.NoError(t, json.Unmarshal(record.Value, &body))
	assert.Equal(t, "validation_skipped", body["action"])
	assert.Equal(t, "admin", body["actor_id"])
	assert.Equal(t, "req-1", body["request_id"])
}

func TestSink_AppendReturnsProduceError(t *testing.T) {
	producer := &recordingProducer{err: errors.New("broker unavailable")}
	sink := NewSink(producer, "tracker.audit")

	err := sink.Append(context.Background(), audit.Event{Action: string(audit.EventImportValidated)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker unavailable")
}
