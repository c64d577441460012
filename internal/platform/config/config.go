package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process level configuration.
type Server struct {
	Addr        string
	AdminToken  string
	DatabaseURL string
	LogFormat   string
	LogLevel    string

	// RuleSetSeedPath points at a YAML bundle imported and activated at
	// startup when no rule set is active yet.
	RuleSetSeedPath string

	// BusinessFixturesPath seeds the in-memory business data store.
	BusinessFixturesPath string

	Redis  RedisConfig
	Kafka  KafkaConfig
	Engine EngineConfig
}

// RedisConfig configures the optional expansion cache backend.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CacheTTL     time.Duration
}

// KafkaConfig configures the optional audit sink. Empty Brokers keeps audit
// events in memory.
type KafkaConfig struct {
	Brokers    []string
	Topic      string
	Partitions int32
}

// EngineConfig tunes batch work.
type EngineConfig struct {
	RefreshConcurrency int
	AuditBuffer        int
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	return Server{
		Addr:                 envString("TAXSAFE_ADDR", ":8080"),
		AdminToken:           os.Getenv("TAXSAFE_ADMIN_TOKEN"),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		LogFormat:            envString("LOG_FORMAT", "json"),
		LogLevel:             envString("LOG_LEVEL", "info"),
		RuleSetSeedPath:      os.Getenv("TAXSAFE_RULESET_SEED"),
		BusinessFixturesPath: os.Getenv("TAXSAFE_BUSINESS_FIXTURES"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
			CacheTTL:     envDuration("TAXSAFE_EXPANSION_CACHE_TTL", 24*time.Hour),
		},
		Kafka: KafkaConfig{
			Brokers:    envList("KAFKA_BROKERS"),
			Topic:      envString("KAFKA_AUDIT_TOPIC", "taxsafe.audit"),
			Partitions: int32(envInt("KAFKA_AUDIT_PARTITIONS", 3)),
		},
		Engine: EngineConfig{
			RefreshConcurrency: envInt("TAXSAFE_REFRESH_CONCURRENCY", 8),
			AuditBuffer:        envInt("TAXSAFE_AUDIT_BUFFER", 256),
		},
	}
}

func envString(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func envList(key string) []string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
