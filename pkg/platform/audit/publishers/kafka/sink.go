// Package kafka forwards audit events to Kafka topics, one topic per
// event category.
package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	audit "tracker/pkg/platform/audit"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
)

// Producer is the subset of *kgo.Client the sink needs.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// Sink implements audit.Store by producing each event as a JSON record.
// The record key is a fresh event ID so consumers can deduplicate.
type Sink struct {
	producer    Producer
	topicPrefix string
	logger      *slog.Logger
	newID       func() uuid.UUID
}

type Option func(*Sink)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Sink) {
		s.logger = logger
	}
}

func WithIDGenerator(fn func() uuid.UUID) Option {
	return func(s *Sink) {
		s.newID = fn
	}
}

func NewSink(producer Producer, topicPrefix string, opts ...Option) *Sink {
	s := &Sink{
		producer:    producer,
		topicPrefix: topicPrefix,
		logger:      slog.Default(),
		newID:       uuid.New,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Topic returns the topic events of the given category are written to.
func (s *Sink) Topic(category audit.EventCategory) string {
	return TopicFor(s.topicPrefix, category)
}

// TopicFor names the topic for a category under topicPrefix.
func TopicFor(topicPrefix string, category audit.EventCategory) string {
	return topicPrefix + "." + string(category)
}

func (s *Sink) Append(ctx context.Context, event audit.Event) error {
	category := event.Category
	if category == "" {
		category = audit.AuditEvent(event.Action).Category()
	}
	value, err := audit.Encode(event)
	if err != nil {
		return err
	}

	record := &kgo.Record{
		Topic: s.Topic(category),
		Key:   []byte(s.newID().String()),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "action", Value: []byte(event.Action)},
		},
	}
	if err := s.producer.ProduceSync(ctx, record).FirstErr(); err != nil {
		s.logger.ErrorContext(ctx, "failed to produce audit event",
			"topic", record.Topic,
			"action", event.Action,
			"request_id", event.RequestID,
			"error", err,
		)
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}

// EnsureTopics creates the per-category topics, ignoring ones that already
// exist.
func EnsureTopics(ctx context.Context, client *kgo.Client, topicPrefix string, partitions int32, replication int16) error {
	adm := kadm.NewClient(client)
	topics := []string{
		TopicFor(topicPrefix, audit.CategorySecurity),
		TopicFor(topicPrefix, audit.CategoryOperations),
	}
	responses, err := adm.CreateTopics(ctx, partitions, replication, nil, topics...)
	if err != nil {
		return fmt.Errorf("create audit topics: %w", err)
	}
	for _, resp := range responses {
		if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create topic %s: %w", resp.Topic, resp.Err)
		}
	}
	return nil
}
