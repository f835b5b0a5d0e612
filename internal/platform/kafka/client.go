package kafka

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"

	"tracker/internal/platform/config"
)

// New creates a franz-go client for the configured brokers. Extra options
// are appended to the producer defaults.
// Returns nil if no brokers are configured.
func New(ctx context.Context, cfg config.KafkaConfig, logger *slog.Logger, extra ...kgo.Opt) (*kgo.Client, error) {
	if len(cfg.Brokers) == 0 {
		return nil, nil
	}

	opts := []kgo.Opt{
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ClientID("tracker"),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	}
	client, err := kgo.NewClient(append(opts, extra...)...)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	if err := client.Ping(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("kafka ping failed: %w", err)
	}

	logger.InfoContext(ctx, "connected to kafka", "brokers", cfg.Brokers)
	return client, nil
}

// ConsumerOpts returns the options for a consumer-group member reading the
// given topics. Offsets are committed by the caller after processing.
func ConsumerOpts(cfg config.KafkaConfig, topics ...string) []kgo.Opt {
	return []kgo.Opt{
		kgo.ConsumerGroup(cfg.ConsumerGroup),
		kgo.ConsumeTopics(topics...),
		kgo.DisableAutoCommit(),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	}
}
