// Package config loads csvdata settings from environment variables.
//
// Every field has a default except the database URL, which is optional: when
// it is empty check runs are kept in memory. Settings are validated on load so
// misconfiguration fails at startup.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Check    CheckConfig
	History  HistoryConfig
	Storage  StorageConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 30s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"30s"`

	// WriteTimeout is the maximum duration for writing a response (default: 60s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// DatabaseConfig holds the optional Postgres connection for run history.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string. Empty keeps history in memory.
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	MaxConns        int           `env:"DB_MAX_CONNS" default:"10"`
	MinConns        int           `env:"DB_MIN_CONNS" default:"1"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// Enabled reports whether a database is configured.
func (c *DatabaseConfig) Enabled() bool { return c.URL != "" }

// CheckConfig holds check execution settings.
type CheckConfig struct {
	// Delimiter is the default field separator (default: ",")
	Delimiter string `env:"CHECK_DELIMITER" default:","`

	// MaxFileSize is the largest accepted upload, e.g. 104857600 or 100MB (default: 100MB)
	MaxFileSize int64 `env:"CHECK_MAX_FILE_SIZE" default:"100MB"`

	// MaxConcurrent is the maximum number of checks running at once in the server (default: 5)
	MaxConcurrent int `env:"CHECK_MAX_CONCURRENT" default:"5"`

	// MaxWaitTime is how long a request waits for a check slot (default: 30s)
	MaxWaitTime time.Duration `env:"CHECK_MAX_WAIT_TIME" default:"30s"`

	// Timeout bounds a single check run (default: 5m)
	Timeout time.Duration `env:"CHECK_TIMEOUT" default:"5m"`

	// Workers is the CLI's default number of files checked in parallel (default: 4)
	Workers int `env:"CHECK_WORKERS" default:"4"`

	// Root confines server path checks to a directory or s3://bucket/prefix.
	// Empty disables path checks (default: "")
	Root string `env:"CHECK_ROOT"`
}

// HistoryConfig holds run history retention settings.
type HistoryConfig struct {
	// Retention is how long runs are kept (default: 720h)
	Retention time.Duration `env:"HISTORY_RETENTION" default:"720h"`

	// PruneInterval is how often old runs are deleted (default: 1h)
	PruneInterval time.Duration `env:"HISTORY_PRUNE_INTERVAL" default:"1h"`
}

// StorageConfig holds settings for remote sources.
type StorageConfig struct {
	// S3Region is the region used for s3:// paths. Empty defers to the AWS SDK.
	S3Region string `env:"AWS_REGION" envAlt:"AWS_DEFAULT_REGION"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`

	// CheckLimit is requests per minute for check endpoints (default: 20)
	CheckLimit int `env:"RATE_LIMIT_CHECK" default:"20"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// RequireAPIKey enforces the X-API-Key header on /api routes (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted API keys
	APIKeys []string `env:"API_KEYS"`

	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
