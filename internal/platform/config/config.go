package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process level configuration.
type Server struct {
	Addr          string
	LogLevel      slog.Level
	JWTSigningKey string
	JWTIssuer     string
	JWTAudience   string
	AdminToken    string
	// DefaultLocale selects the message catalog for validation findings.
	DefaultLocale string
	// RulesFile is an optional YAML program-rule document. Empty disables the
	// rule-engine pass.
	RulesFile      string
	PreheatTimeout time.Duration

	// AuditSampleRate is the fraction of operational audit events kept.
	// Security events are always kept.
	AuditSampleRate float64

	Postgres PostgresConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
}

// PostgresConfig points at the store of already-persisted records. An empty
// DSN selects the in-memory store.
type PostgresConfig struct {
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
	EnsureSchema bool
}

// RedisConfig configures the existence cache. An empty URL disables it.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CacheTTL     time.Duration
}

// KafkaConfig configures the audit sink. No brokers keeps audit events local.
type KafkaConfig struct {
	Brokers           []string
	TopicPrefix       string
	Partitions        int32
	ReplicationFactor int16
	// ConsumerGroup is the group the audit consumer joins.
	ConsumerGroup string
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	return Server{
		Addr:           envOr("TRACKER_ADDR", ":8080"),
		LogLevel:       parseLevel(os.Getenv("LOG_LEVEL")),
		JWTSigningKey:  jwtSigningKey,
		JWTIssuer:      envOr("JWT_ISSUER", "tracker"),
		JWTAudience:    envOr("JWT_AUDIENCE", "tracker-import"),
		AdminToken:     os.Getenv("ADMIN_API_TOKEN"),
		DefaultLocale:  envOr("TRACKER_LOCALE", "en"),
		RulesFile:      os.Getenv("TRACKER_RULES_FILE"),
		PreheatTimeout: envDuration("TRACKER_PREHEAT_TIMEOUT", 5*time.Second),

		AuditSampleRate: envFloat("AUDIT_OPS_SAMPLE_RATE", 1),

		Postgres: PostgresConfig{
			DSN:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 20),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
			EnsureSchema: os.Getenv("DATABASE_ENSURE_SCHEMA") == "true",
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
			CacheTTL:     envDuration("REDIS_CACHE_TTL", 10*time.Minute),
		},
		Kafka: KafkaConfig{
			Brokers:           splitList(os.Getenv("KAFKA_BROKERS")),
			TopicPrefix:       envOr("KAFKA_AUDIT_TOPIC_PREFIX", "tracker.audit"),
			Partitions:        int32(envInt("KAFKA_AUDIT_PARTITIONS", 3)),
			ReplicationFactor: int16(envInt("KAFKA_AUDIT_REPLICATION", 1)),
			ConsumerGroup:     envOr("KAFKA_AUDIT_CONSUMER_GROUP", "tracker-audit"),
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseLevel(v string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(v)); err != nil {
		return slog.LevelInfo
	}
	return level
}
