// Package config provides environment-driven configuration for the relations server.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store backends.
const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
	BackendNeo4j    = "neo4j"
)

// Secret wraps a sensitive string to prevent accidental logging or marshalling.
type Secret string

// String implements fmt.Stringer, returning a redacted placeholder.
func (s Secret) String() string { return "[REDACTED]" }

// GoString implements fmt.GoStringer, returning a redacted placeholder.
func (s Secret) GoString() string { return "[REDACTED]" }

// MarshalText implements encoding.TextMarshaler, returning a redacted placeholder.
func (s Secret) MarshalText() ([]byte, error) { return []byte("[REDACTED]"), nil }

// Value returns the underlying secret string.
func (s Secret) Value() string { return string(s) }

// Config holds all application configuration values.
type Config struct {
	StoreBackend string
	DatabaseURL  Secret
	DBMaxConns   int

	Neo4jURI      string
	Neo4jUser     string
	Neo4jPassword Secret
	Neo4jDatabase string

	Port        string
	MetricsPort string
	ListenHost  string
	CORSOrigins []string
	LogLevel    string

	CursorFetchSize int
	DefaultPage     int
	DefaultPageSize int
	MaxPageSize     int

	// SizeCacheTTL of zero disables the size cache.
	SizeCacheTTL time.Duration
	SizeCacheMax int64
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		StoreBackend:  strings.ToLower(envOrDefault("STORE_BACKEND", BackendPostgres)),
		DatabaseURL:   Secret(envOrDefault("DATABASE_URL", "")),
		Neo4jURI:      envOrDefault("NEO4J_URI", ""),
		Neo4jUser:     envOrDefault("NEO4J_USER", "neo4j"),
		Neo4jPassword: Secret(envOrDefault("NEO4J_PASSWORD", "")),
		Neo4jDatabase: envOrDefault("NEO4J_DATABASE", ""),
		Port:          envOrDefault("PORT", "3040"),
		MetricsPort:   envOrDefault("METRICS_PORT", "9092"),
		ListenHost:    envOrDefault("LISTEN_HOST", "127.0.0.1"),
		LogLevel:      envOrDefault("LOG_LEVEL", "info"),
	}

	ints := []struct {
		key      string
		fallback string
		min, max int
		dst      *int
	}{
		{"DB_MAX_CONNS", "20", 1, 500, &cfg.DBMaxConns},
		{"CURSOR_FETCH_SIZE", "100", 1, 10000, &cfg.CursorFetchSize},
		{"DEFAULT_PAGE", "1", 1, 1 << 30, &cfg.DefaultPage},
		{"DEFAULT_PAGE_SIZE", "25", 1, 10000, &cfg.DefaultPageSize},
		{"MAX_PAGE_SIZE", "1000", 1, 10000, &cfg.MaxPageSize},
	}

	for _, in := range ints {
		v, err := strconv.Atoi(envOrDefault(in.key, in.fallback))
		if err != nil || v < in.min || v > in.max {
			return nil, fmt.Errorf("%s must be an integer between %d and %d", in.key, in.min, in.max)
		}

		*in.dst = v
	}

	ttl, err := time.ParseDuration(envOrDefault("SIZE_CACHE_TTL", "0s"))
	if err != nil || ttl < 0 {
		return nil, fmt.Errorf("SIZE_CACHE_TTL must be a non-negative duration (e.g. 30s)")
	}
	cfg.SizeCacheTTL = ttl

	cacheMax, err := strconv.ParseInt(envOrDefault("SIZE_CACHE_MAX", "10000"), 10, 64)
	if err != nil || cacheMax < 1 {
		return nil, fmt.Errorf("SIZE_CACHE_MAX must be a positive integer")
	}
	cfg.SizeCacheMax = cacheMax

	origins := envOrDefault("CORS_ORIGINS", "http://localhost:3002")
	cfg.CORSOrigins = strings.Split(origins, ",")

	for i, o := range cfg.CORSOrigins {
		cfg.CORSOrigins[i] = strings.TrimSpace(o)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// Addr returns the listen address in host:port format.
func (c *Config) Addr() string {
	return c.ListenHost + ":" + c.Port
}

// MetricsAddr returns the metrics listen address in host:port format.
func (c *Config) MetricsAddr() string {
	return c.ListenHost + ":" + c.MetricsPort
}

// SizeCacheEnabled reports whether collection sizes should be cached.
func (c *Config) SizeCacheEnabled() bool {
	return c.SizeCacheTTL > 0
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}
