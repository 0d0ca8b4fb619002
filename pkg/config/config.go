// ABOUTME: Configuration management for the ingester with environment variable support
// ABOUTME: Defines configuration structures for fetching, TTL stores, logging and workers

package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store types accepted by CACHE_TYPE
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
	StoreSQLite = "sqlite"
)

// Config holds all application configuration
type Config struct {
	// Fetch contains outbound HTTP and resilience settings
	Fetch FetchConfig

	// Cache contains TTL store configuration
	Cache CacheConfig

	// Log contains logger configuration
	Log LogConfig

	// Workers contains fetch worker pool configuration
	Workers WorkerConfig
}

// FetchConfig holds outbound fetch configuration
type FetchConfig struct {
	// Timeout bounds a single HTTP request
	Timeout time.Duration

	// UserAgent is sent with every request
	UserAgent string

	// MaxBodyBytes bounds how much of a response body is read
	MaxBodyBytes int64

	// FallbackSeconds is the cool-down used when a rate-limited response has no usable headers
	FallbackSeconds int

	// DefaultDelay is the requeue delay when no cool-down is recorded
	DefaultDelay time.Duration

	// ResponseCacheTTL is how long successful responses are served from cache
	ResponseCacheTTL time.Duration

	// GuardFile optionally names a YAML file of extra guard signatures
	GuardFile string
}

// CacheConfig holds TTL store backend configuration
type CacheConfig struct {
	// Type specifies the store backend (redis/memory/sqlite)
	Type string

	// Redis contains Redis-specific configuration
	Redis RedisConfig

	// SQLite contains SQLite-specific configuration
	SQLite SQLiteConfig

	// Memory contains in-memory store configuration
	Memory MemoryConfig
}

// RedisConfig holds Redis-specific configuration
type RedisConfig struct {
	// Address is the Redis server address
	Address string

	// Password is the Redis authentication password
	Password string

	// DB is the Redis database number
	DB int
}

// SQLiteConfig holds SQLite-specific configuration
type SQLiteConfig struct {
	// Path is the database file
	Path string
}

// MemoryConfig holds in-memory store configuration
type MemoryConfig struct {
	// CleanupInterval is how often expired entries are evicted
	CleanupInterval time.Duration
}

// LogConfig holds logger configuration
type LogConfig struct {
	// Level is one of debug, info, warn, error
	Level string

	// Format is json or text
	Format string

	// File optionally redirects output to a rotated file
	File string
}

// WorkerConfig holds fetch worker pool configuration
type WorkerConfig struct {
	// Count is the number of concurrent fetch workers
	Count int

	// QueueSize bounds pending jobs
	QueueSize int

	// RatePerSecond paces fetch starts across all workers
	RatePerSecond float64

	// Burst is the limiter burst
	Burst int
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Fetch: FetchConfig{
			Timeout:          getEnvAsDurationOrDefault("FETCH_TIMEOUT", 30*time.Second),
			UserAgent:        getEnvOrDefault("FETCH_USER_AGENT", "digests-ingest/1.0 (+https://digests.app)"),
			MaxBodyBytes:     int64(getEnvAsIntOrDefault("FETCH_MAX_BODY_BYTES", 10<<20)),
			FallbackSeconds:  getEnvAsIntOrDefault("RATE_LIMIT_FALLBACK_SECONDS", 60),
			DefaultDelay:     getEnvAsDurationOrDefault("RATE_LIMIT_DEFAULT_DELAY", 30*time.Second),
			ResponseCacheTTL: getEnvAsDurationOrDefault("RESPONSE_CACHE_TTL", 5*time.Minute),
			GuardFile:        getEnvOrDefault("GUARD_SIGNATURES_FILE", ""),
		},
		Cache: CacheConfig{
			Type: strings.ToLower(getEnvOrDefault("CACHE_TYPE", StoreMemory)),
			Redis: RedisConfig{
				Address:  getEnvOrDefault("REDIS_ADDRESS", "localhost:6379"),
				Password: getEnvOrDefault("REDIS_PASSWORD", ""),
				DB:       getEnvAsIntOrDefault("REDIS_DB", 0),
			},
			SQLite: SQLiteConfig{
				Path: getEnvOrDefault("SQLITE_PATH", "ingest.db"),
			},
			Memory: MemoryConfig{
				CleanupInterval: getEnvAsDurationOrDefault("MEMORY_CACHE_CLEANUP", time.Minute),
			},
		},
		Log: LogConfig{
			Level:  strings.ToLower(getEnvOrDefault("LOG_LEVEL", "info")),
			Format: strings.ToLower(getEnvOrDefault("LOG_FORMAT", "json")),
			File:   getEnvOrDefault("LOG_FILE", ""),
		},
		Workers: WorkerConfig{
			Count:         getEnvAsIntOrDefault("WORKER_COUNT", 4),
			QueueSize:     getEnvAsIntOrDefault("WORKER_QUEUE_SIZE", 256),
			RatePerSecond: getEnvAsFloatOrDefault("WORKER_FETCH_RATE", 5),
			Burst:         getEnvAsIntOrDefault("WORKER_FETCH_BURST", 5),
		},
	}

	return cfg, nil
}

// getEnvOrDefault returns the environment variable value or a default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsIntOrDefault returns the environment variable as int or a default
func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvAsDurationOrDefault accepts Go durations ("90s") or bare seconds ("90")
func getEnvAsDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Fetch.Timeout <= 0 {
		return errors.New("fetch timeout must be positive")
	}

	if c.Fetch.UserAgent == "" {
		return errors.New("user agent cannot be empty")
	}

	if c.Fetch.FallbackSeconds < 0 {
		return errors.New("rate limit fallback cannot be negative")
	}

	switch c.Cache.Type {
	case StoreMemory:
	case StoreRedis:
		if c.Cache.Redis.Address == "" {
			return errors.New("redis address cannot be empty when using redis cache")
		}
	case StoreSQLite:
		if c.Cache.SQLite.Path == "" {
			return errors.New("sqlite path cannot be empty when using sqlite cache")
		}
	default:
		return errors.New("cache type must be 'redis', 'memory' or 'sqlite'")
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return errors.New("log level must be one of debug, info, warn, error")
	}

	if c.Log.Format != "json" && c.Log.Format != "text" {
		return errors.New("log format must be 'json' or 'text'")
	}

	if c.Workers.Count < 1 {
		return errors.New("worker count must be at least 1")
	}

	if c.Workers.RatePerSecond <= 0 {
		return errors.New("worker fetch rate must be positive")
	}

	return nil
}
