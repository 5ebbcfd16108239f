package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
// Every field has a sensible default; DATABASE_URL is always required and
// SECRET_KEY is required outside development.
type Config struct {
	// Application
	AppEnv    string
	SecretKey string

	// Server
	ServerPort      string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// Database
	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32

	// Auth token lifetimes
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	// Booking grid quantum
	SlotDuration time.Duration

	// External notification sender
	SenderBaseURL        string
	SenderAPIKey         string
	PlaceholderRecipient string

	// Delivery retry / circuit breaker
	CircuitFailMax      int
	CircuitResetTimeout time.Duration
	RetryMaxAttempts    int
	RetryBackoffBase    time.Duration
	RetryBackoffMax     time.Duration
	RequeueStaleAfter   time.Duration
	FailedMaxAttempts   int

	// Background workers
	OutboxBatchSize     int
	OutboxPollInterval  time.Duration
	RequeuePollInterval time.Duration
	DispatchWorkers     int
	DispatchQueueSize   int
	DispatchRateLimit   int
	WorkerMetricsPort   string
}

func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	appEnv := getEnv("APP_ENV", "development")
	secretKey := os.Getenv("SECRET_KEY")
	if secretKey == "" {
		if appEnv != "development" {
			return nil, fmt.Errorf("SECRET_KEY is required when APP_ENV=%s", appEnv)
		}
		secretKey = "dev-secret-change-me"
	}

	return &Config{
		AppEnv:    appEnv,
		SecretKey: secretKey,

		ServerPort:      getEnv("SERVER_PORT", "8080"),
		ReadTimeout:     getDuration("READ_TIMEOUT", 5*time.Second),
		WriteTimeout:    getDuration("WRITE_TIMEOUT", 10*time.Second),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 30*time.Second),

		DatabaseURL: dbURL,
		DBMaxConns:  int32(getInt("DB_MAX_CONNS", 10)),
		DBMinConns:  int32(getInt("DB_MIN_CONNS", 2)),

		AccessTokenTTL:  time.Duration(getInt("ACCESS_TOKEN_EXPIRES_MIN", 15)) * time.Minute,
		RefreshTokenTTL: time.Duration(getInt("REFRESH_TOKEN_EXPIRES_DAYS", 7)) * 24 * time.Hour,

		SlotDuration: time.Duration(getInt("SLOT_DURATION_MINUTES", 30)) * time.Minute,

		SenderBaseURL:        getEnv("NOTIF_HTTP_BASE_URL", "http://localhost:9000"),
		SenderAPIKey:         os.Getenv("NOTIF_HTTP_API_KEY"),
		PlaceholderRecipient: getEnv("NOTIF_PLACEHOLDER_RECIPIENT", "+5500000000000"),

		CircuitFailMax:      getInt("NOTIF_CIRCUIT_FAIL_MAX", 5),
		CircuitResetTimeout: getSeconds("NOTIF_CIRCUIT_RESET_SECONDS", 60*time.Second),
		RetryMaxAttempts:    getInt("NOTIF_RETRY_MAX_ATTEMPTS", 5),
		RetryBackoffBase:    getFloatSeconds("NOTIF_RETRY_BACKOFF_BASE", time.Second),
		RetryBackoffMax:     getFloatSeconds("NOTIF_RETRY_BACKOFF_MAX", 16*time.Second),
		RequeueStaleAfter:   getSeconds("NOTIF_REQUEUE_STALE_SECONDS", 120*time.Second),
		FailedMaxAttempts:   getInt("NOTIF_FAILED_MAX_ATTEMPTS", 5),

		OutboxBatchSize:     getInt("OUTBOX_BATCH_SIZE", 50),
		OutboxPollInterval:  getSeconds("OUTBOX_POLL_INTERVAL_SECONDS", 10*time.Second),
		RequeuePollInterval: getSeconds("REQUEUE_POLL_INTERVAL_SECONDS", 60*time.Second),
		DispatchWorkers:     getInt("DISPATCH_WORKER_COUNT", 4),
		DispatchQueueSize:   getInt("DISPATCH_QUEUE_SIZE", 1000),
		DispatchRateLimit:   getInt("DISPATCH_RATE_PER_SECOND", 10),
		WorkerMetricsPort:   getEnv("WORKER_METRICS_PORT", "9090"),
	}, nil
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}

// getSeconds reads an integer number of seconds.
func getSeconds(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return time.Duration(n) * time.Second
		}
	}
	return defaultVal
}

// getFloatSeconds reads a fractional number of seconds, e.g. "1.5".
func getFloatSeconds(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return time.Duration(f * float64(time.Second))
		}
	}
	return defaultVal
}
