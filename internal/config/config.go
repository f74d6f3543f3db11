package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
// Values are loaded from environment variables with sensible defaults.
type Config struct {
	// Server
	Port     int
	LogLevel string

	// HTTP client
	HTTPTimeout time.Duration

	// Resilience
	MaxRetries     int
	InitialBackoff time.Duration
	MaxConcurrency int

	// Cache
	BadLeadsCacheTTL time.Duration

	// Observability
	OTLPEndpoint string

	// Supabase (lead store, company registry, system settings)
	SupabaseURL        string
	SupabaseAnonKey    string
	SupabaseServiceKey string

	// Distribution engine
	DistributionInterval time.Duration // background cadence
	RunTimeout           time.Duration // per-run deadline, minutes-scale
	PoolBatchLimit       int           // max pool leads pulled per run
	MinPhoneDigits       int           // cleanup: shortest acceptable phone

	// Auth
	JWTSecret        string
	SchedulerKeyHash string // bcrypt hash of the scheduler API key
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		Port:     getEnvInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		HTTPTimeout: getEnvDuration("HTTP_TIMEOUT", 10*time.Second),

		MaxRetries:     getEnvInt("MAX_RETRIES", 3),
		InitialBackoff: getEnvDuration("INITIAL_BACKOFF", 100*time.Millisecond),
		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 10),

		BadLeadsCacheTTL: getEnvDuration("BAD_LEADS_CACHE_TTL", 2*time.Minute),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),

		SupabaseURL:        getEnv("SUPABASE_URL", ""),
		SupabaseAnonKey:    getEnv("SUPABASE_ANON_KEY", ""),
		SupabaseServiceKey: getEnv("SUPABASE_SERVICE_ROLE_KEY", ""),

		DistributionInterval: getEnvDuration("DISTRIBUTION_INTERVAL", 24*time.Hour),
		RunTimeout:           getEnvDuration("RUN_TIMEOUT", 5*time.Minute),
		PoolBatchLimit:       getEnvInt("POOL_BATCH_LIMIT", 500),
		MinPhoneDigits:       getEnvInt("MIN_PHONE_DIGITS", 10),

		JWTSecret:        getEnv("JWT_SECRET", "leadpool-default-dev-secret-change-me"),
		SchedulerKeyHash: getEnv("SCHEDULER_KEY_HASH", ""),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
