// Package config loads application settings from environment variables,
// applies defaults and validates the result on startup.
package config

import (
	"net"
	"strconv"
	"time"
)

// Grid sources.
const (
	SourceMock     = "mock"
	SourcePostgres = "postgres"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Grid     GridConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
	Metrics  MetricsConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading a request (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing a response (default: 30s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"30s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout bounds graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 30s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"30s"`
}

// DatabaseConfig holds settings for the Postgres grid source. None of it is
// used when the mock source is selected.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string, required for GRID_SOURCE=postgres.
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	MaxConns        int           `env:"DB_MAX_CONNS" default:"10"`
	MinConns        int           `env:"DB_MIN_CONNS" default:"1"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// GridConfig holds data grid settings.
type GridConfig struct {
	// Source selects where rows come from: mock or postgres (default: mock)
	Source string `env:"GRID_SOURCE" default:"mock"`

	// MockRows is the number of generated users (default: 50)
	MockRows int `env:"GRID_MOCK_ROWS" default:"50"`

	// MockDelay simulates network latency on load (default: 1s)
	MockDelay time.Duration `env:"GRID_MOCK_DELAY" default:"1s"`

	// MockSeed fixes the generator; 0 seeds from the clock (default: 0)
	MockSeed int64 `env:"GRID_MOCK_SEED" default:"0"`

	// MockFail makes every mock load fail (default: false)
	MockFail bool `env:"GRID_MOCK_FAIL" default:"false"`

	// LoadTimeout bounds a single view load (default: 30s)
	LoadTimeout time.Duration `env:"GRID_LOAD_TIMEOUT" default:"30s"`

	// MaxConcurrentLoads is the number of loads allowed at once (default: 8)
	MaxConcurrentLoads int `env:"GRID_MAX_CONCURRENT_LOADS" default:"8"`

	// LoadMaxWait is how long a load waits for a slot (default: 5s)
	LoadMaxWait time.Duration `env:"GRID_LOAD_MAX_WAIT" default:"5s"`

	// ViewIdleTTL evicts views nobody has touched for this long (default: 30m)
	ViewIdleTTL time.Duration `env:"GRID_VIEW_IDLE_TTL" default:"30m"`

	// JanitorInterval is how often idle views are swept (default: 1m)
	JanitorInterval time.Duration `env:"GRID_JANITOR_INTERVAL" default:"1m"`
}

// RateLimitConfig holds per-IP rate limiting settings.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the limit for every route (default: 300)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"300"`

	// ExportLimit is requests per minute for the CSV export (default: 30)
	ExportLimit int `env:"RATE_LIMIT_EXPORT" default:"30"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`

	// RequireAPIKey guards the JSON API with X-API-Key (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted keys
	APIKeys []string `env:"API_KEYS"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// MetricsConfig holds Prometheus exposition settings.
type MetricsConfig struct {
	// Enabled serves the metrics endpoint (default: true)
	Enabled bool `env:"METRICS_ENABLED" default:"true"`

	// Path is where metrics are served (default: /metrics)
	Path string `env:"METRICS_PATH" default:"/metrics"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
