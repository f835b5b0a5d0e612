package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"tracker/internal/platform/config"
	"tracker/internal/platform/kafka"
	"tracker/internal/platform/kafka/consumer"
	"tracker/internal/platform/logger"
	"tracker/internal/platform/postgres"
	audit "tracker/pkg/platform/audit"
	auditconsumer "tracker/pkg/platform/audit/consumer"
	kafkasink "tracker/pkg/platform/audit/publishers/kafka"
	auditpg "tracker/pkg/platform/audit/store/postgres"
)

// main drains the audit topics written by the tracker server into the
// audit_events table.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("audit consumer exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	if len(cfg.Kafka.Brokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required")
	}

	db, err := postgres.Open(ctx, cfg.Postgres)
	if err != nil {
		return err
	}
	if db == nil {
		return fmt.Errorf("DATABASE_URL is required")
	}
	defer db.Close()

	store := auditpg.New(db)
	if cfg.Postgres.EnsureSchema {
		if err := store.EnsureSchema(ctx); err != nil {
			return err
		}
	}

	router := auditconsumer.NewRouter(log, nil)
	router.Register(kafkasink.TopicFor(cfg.Kafka.TopicPrefix, audit.CategorySecurity),
		auditconsumer.NewSecurityHandler(store, log))
	router.Register(kafkasink.TopicFor(cfg.Kafka.TopicPrefix, audit.CategoryOperations),
		auditconsumer.NewOpsHandler(store, log))

	client, err := kafka.New(ctx, cfg.Kafka, log, kafka.ConsumerOpts(cfg.Kafka, router.Topics()...)...)
	if err != nil {
		return err
	}
	defer client.Close()

	log.InfoContext(ctx, "starting audit consumer",
		"group", cfg.Kafka.ConsumerGroup,
		"topics", router.Topics(),
	)
	return consumer.New(client, router, log).Run(ctx)
}
