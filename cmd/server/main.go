package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/twmb/franz-go/pkg/kgo"
	"golang.org/x/text/language"

	jwttoken "tracker/internal/jwt_token"
	"tracker/internal/platform/config"
	"tracker/internal/platform/httpserver"
	"tracker/internal/platform/kafka"
	"tracker/internal/platform/logger"
	platformmetrics "tracker/internal/platform/metrics"
	"tracker/internal/platform/postgres"
	"tracker/internal/platform/redis"
	"tracker/internal/tracker/handler"
	trackermetrics "tracker/internal/tracker/metrics"
	"tracker/internal/tracker/preheat"
	"tracker/internal/tracker/ruleengine"
	"tracker/internal/tracker/store"
	"tracker/internal/tracker/validation"
	audit "tracker/pkg/platform/audit"
	"tracker/pkg/platform/audit/publisher"
	kafkasink "tracker/pkg/platform/audit/publishers/kafka"
	"tracker/pkg/platform/audit/publishers/ops"
	"tracker/pkg/platform/audit/store/memory"
	auditpg "tracker/pkg/platform/audit/store/postgres"
	"tracker/pkg/platform/middleware/admin"
	"tracker/pkg/platform/middleware/auth"
	"tracker/pkg/platform/middleware/request"
	"tracker/pkg/platform/middleware/requesttime"
)

const shutdownTimeout = 10 * time.Second

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal/tracker.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("tracker server exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	m := trackermetrics.New()

	db, err := postgres.Open(ctx, cfg.Postgres)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	existence, err := buildExistenceStore(ctx, cfg, db, redisClient, m, log)
	if err != nil {
		return err
	}

	loader, err := preheat.NewLoader(existence,
		preheat.WithLogger(log),
		preheat.WithMetrics(m),
		preheat.WithTimeout(cfg.PreheatTimeout),
	)
	if err != nil {
		return err
	}

	kafkaClient, err := kafka.New(ctx, cfg.Kafka, log)
	if err != nil {
		return err
	}
	if kafkaClient != nil {
		defer kafkaClient.Close()
	}

	auditStore, err := buildAuditStore(ctx, cfg, db, kafkaClient, log)
	if err != nil {
		return err
	}
	auditPublisher := publisher.NewPublisher(auditStore,
		publisher.WithAsyncBuffer(1024),
		publisher.WithLogger(log),
	)
	defer auditPublisher.Close()

	defaultRunner := validation.NewDefaultRunner()
	svcOpts := []validation.Option{
		validation.WithLogger(log),
		validation.WithMetrics(m),
		validation.WithAuditPublisher(auditPublisher),
		validation.WithLocale(parseLocale(cfg.DefaultLocale, log)),
	}
	if cfg.RulesFile != "" {
		engine, err := ruleengine.LoadDeclarativeFile(cfg.RulesFile)
		if err != nil {
			return err
		}
		ruleRunner, err := ruleengine.NewRunner(engine, ruleengine.WithLogger(log))
		if err != nil {
			return err
		}
		svcOpts = append(svcOpts, validation.WithRuleEngine(validation.Chain{defaultRunner, ruleRunner}))
		log.InfoContext(ctx, "program rules loaded", "file", cfg.RulesFile)
	}
	svc, err := validation.New(defaultRunner, svcOpts...)
	if err != nil {
		return err
	}

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.JWTAudience)
	var auditReader handler.AuditLister = auditPublisher
	if kafkaClient != nil && db != nil {
		// Events produced to Kafka are stored by cmd/audit-consumer.
		auditReader = publisher.NewPublisher(auditpg.New(db))
	}
	trackerHandler := handler.New(svc, loader, auditReader, log)
	httpMetrics := platformmetrics.New()

	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(httpMetrics.Middleware)
	r.Handle("/metrics", platformmetrics.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.Get("/readyz", httpserver.ReadyHandler(readinessChecks(db, redisClient, kafkaClient)))
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(jwttoken.NewMiddlewareValidator(jwtService), log))
		trackerHandler.Register(r)
	})
	r.Group(func(r chi.Router) {
		r.Use(admin.RequireAdminToken(cfg.AdminToken, log))
		trackerHandler.RegisterAdmin(r)
	})

	srv := httpserver.New(cfg.Addr, r)
	errCh := make(chan error, 1)
	go func() {
		log.InfoContext(ctx, "starting tracker server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down tracker server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func buildExistenceStore(ctx context.Context, cfg config.Server, db *sql.DB, client *redis.Client, m *trackermetrics.Metrics, log *slog.Logger) (store.ExistenceStore, error) {
	var backing store.ExistenceStore = store.NewInMemoryStore()
	if db != nil {
		pg := store.NewPostgresStore(db)
		if cfg.Postgres.EnsureSchema {
			if err := pg.EnsureSchema(ctx); err != nil {
				return nil, err
			}
		}
		backing = pg
	} else {
		log.WarnContext(ctx, "DATABASE_URL not set, using in-memory existence store")
	}

	if client == nil {
		return backing, nil
	}
	return store.NewCachedStore(client.Client, backing, cfg.Redis.CacheTTL,
		store.WithCacheLogger(log),
		store.WithCacheMetrics(m),
	), nil
}

func buildAuditStore(ctx context.Context, cfg config.Server, db *sql.DB, client *kgo.Client, log *slog.Logger) (audit.Store, error) {
	var sink audit.Store
	switch {
	case client != nil:
		if err := kafkasink.EnsureTopics(ctx, client, cfg.Kafka.TopicPrefix, cfg.Kafka.Partitions, cfg.Kafka.ReplicationFactor); err != nil {
			return nil, err
		}
		sink = kafkasink.NewSink(client, cfg.Kafka.TopicPrefix, kafkasink.WithLogger(log))
	case db != nil:
		pg := auditpg.New(db)
		if cfg.Postgres.EnsureSchema {
			if err := pg.EnsureSchema(ctx); err != nil {
				return nil, err
			}
		}
		sink = pg
	default:
		return memory.NewInMemoryStore(), nil
	}
	return ops.New(sink,
		ops.WithSampler(ops.NewSampler(cfg.AuditSampleRate, nil)),
		ops.WithLogger(log),
		ops.WithMetrics(ops.NewMetrics()),
	), nil
}

func readinessChecks(db *sql.DB, redisClient *redis.Client, kafkaClient *kgo.Client) map[string]httpserver.Check {
	checks := map[string]httpserver.Check{}
	if db != nil {
		checks["postgres"] = db.PingContext
	}
	if redisClient != nil {
		checks["redis"] = redisClient.Health
	}
	if kafkaClient != nil {
		checks["kafka"] = kafkaClient.Ping
	}
	return checks
}

func parseLocale(v string, log *slog.Logger) language.Tag {
	tag, err := language.Parse(v)
	if err != nil {
		log.Warn("invalid locale, using English", "locale", v, "error", err)
		return language.English
	}
	return tag
}
