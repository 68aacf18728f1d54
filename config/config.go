package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Sync     SyncConfig
	Gap      GapConfig
	Logging  LoggingConfig
	Metrics  MetricsConfig
	Auth     AuthConfig
	Admin    AdminConfig
}

type ServerConfig struct {
	Host                    string
	Port                    int
	ReadTimeout             time.Duration
	WriteTimeout            time.Duration
	IdleTimeout             time.Duration
	GracefulShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	URL             string
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

type RedisConfig struct {
	URL string
}

// SyncConfig controls the feed ingestion pipeline
type SyncConfig struct {
	Interval           time.Duration // background scheduler period
	FeedDelay          time.Duration // pause between feeds within one run
	FetchTimeout       time.Duration // per-request HTTP timeout
	RetryAttempts      int           // total fetch attempts per feed
	MaxConcurrentSyncs int           // concurrent sync invocations (manual + scheduled)
	DedupWindow        time.Duration // trailing window for duplicate suppression
	LeaseTTL           time.Duration // per-source sync lease lifetime
	UserAgent          string
}

// GapConfig controls the gap-detection pipeline
type GapConfig struct {
	BatchLimit int // max alerts pulled per analysis run when analyze_all is set
}

type LoggingConfig struct {
	Level  string
	Format string // json or text
}

type MetricsConfig struct {
	Enabled bool
	Port    int
	Path    string
}

type AuthConfig struct {
	RequireAPIKeys bool
	KeyHeader      string // default: Authorization Bearer <key>
	RatePerMinute  int    // per-key request rate on the public API
}

type AdminConfig struct {
	AdminSecret string
}

// Load loads configuration from environment variables with sensible defaults
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:                    getEnv("SERVER_HOST", "0.0.0.0"),
			Port:                    getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:             getEnvDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:            getEnvDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:             getEnvDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
			GracefulShutdownTimeout: getEnvDuration("SERVER_GRACEFUL_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvInt("DB_MAX_CONNS", 25),
			MinConns:        getEnvInt("DB_MIN_CONNS", 5),
			MaxConnLifetime: getEnvDuration("DB_MAX_CONN_LIFETIME", 1*time.Hour),
			MaxConnIdleTime: getEnvDuration("DB_MAX_CONN_IDLE_TIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", ""),
		},
		Sync: SyncConfig{
			Interval:           getEnvDuration("SYNC_INTERVAL", 30*time.Minute),
			FeedDelay:          getEnvDuration("SYNC_FEED_DELAY", 2*time.Second),
			FetchTimeout:       getEnvDuration("SYNC_FETCH_TIMEOUT", 20*time.Second),
			RetryAttempts:      getEnvInt("SYNC_RETRY_ATTEMPTS", 3),
			MaxConcurrentSyncs: getEnvInt("SYNC_MAX_CONCURRENT", 2),
			DedupWindow:        getEnvDuration("SYNC_DEDUP_WINDOW", 7*24*time.Hour),
			LeaseTTL:           getEnvDuration("SYNC_LEASE_TTL", 5*time.Minute),
			UserAgent:          getEnv("SYNC_USER_AGENT", "RegIQ-Monitor/1.0 (+https://regiq.example.com)"),
		},
		Gap: GapConfig{
			BatchLimit: getEnvInt("GAP_BATCH_LIMIT", 500),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvBool("METRICS_ENABLED", true),
			Port:    getEnvInt("METRICS_PORT", 9090),
			Path:    getEnv("METRICS_PATH", "/metrics"),
		},
		Auth: AuthConfig{
			RequireAPIKeys: getEnvBool("AUTH_REQUIRE_API_KEYS", false),
			KeyHeader:      getEnv("AUTH_KEY_HEADER", "Authorization"),
			RatePerMinute:  getEnvInt("AUTH_RATE_PER_MINUTE", 60),
		},
		Admin: AdminConfig{
			AdminSecret: getEnv("ADMIN_SECRET", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("database max connections must be at least 1")
	}
	if c.Sync.RetryAttempts < 1 {
		return fmt.Errorf("sync retry attempts must be at least 1")
	}
	if c.Sync.MaxConcurrentSyncs < 1 {
		return fmt.Errorf("sync max concurrent must be at least 1")
	}
	if c.Sync.DedupWindow <= 0 {
		return fmt.Errorf("sync dedup window must be positive")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
