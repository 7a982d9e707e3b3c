package config

import (
	"fmt"
	"net/url"
	"slices"
	"time"

	pkgconfig "github.com/utafrali/storefront/pkg/config"
	"github.com/utafrali/storefront/pkg/database"
)

// Snapshot backends.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Payment providers.
const (
	ProviderMock   = "mock"
	ProviderStripe = "stripe"
)

// Config holds all configuration for the storefront service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int    `env:"STOREFRONT_HTTP_PORT" envDefault:"8010"`
	BaseURL  string `env:"STOREFRONT_BASE_URL" envDefault:"http://localhost:3000"`

	// Session state
	SnapshotBackend    string `env:"SNAPSHOT_BACKEND" envDefault:"memory"`
	SnapshotTTLHours   int    `env:"SNAPSHOT_TTL_HOURS" envDefault:"720"`
	SnapshotMaxBytes   int    `env:"SNAPSHOT_MAX_BYTES" envDefault:"0"`
	SessionIdleMinutes int    `env:"SESSION_IDLE_MINUTES" envDefault:"60"`

	// Redis
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Catalog
	CatalogSource       string `env:"CATALOG_SOURCE" envDefault:"memory"`
	CatalogCacheSeconds int    `env:"CATALOG_CACHE_SECONDS" envDefault:"300"`
	CatalogLatencyMs    int    `env:"CATALOG_LATENCY_MS" envDefault:"0"`
	PageSize            int    `env:"PAGE_SIZE" envDefault:"12"`

	// PostgreSQL
	DatabaseURL  string `env:"DATABASE_URL" envDefault:""`
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"storefront"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"storefront_secret"`
	PostgresDB   string `env:"STOREFRONT_DB_NAME" envDefault:"storefront"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// Database pool
	DBMaxConns            int32 `env:"DB_MAX_CONNS" envDefault:"10"`
	DBMinConns            int32 `env:"DB_MIN_CONNS" envDefault:"2"`
	DBMaxConnLifetimeMins int   `env:"DB_MAX_CONN_LIFETIME_MINUTES" envDefault:"60"`
	DBMaxConnIdleTimeMins int   `env:"DB_MAX_CONN_IDLE_TIME_MINUTES" envDefault:"30"`

	// Slow query logging
	SlowQueryThresholdMs int `env:"LOG_SLOW_QUERY_MS" envDefault:"500"`

	// Payments
	PaymentProvider     string  `env:"PAYMENT_PROVIDER" envDefault:"mock"`
	StripeSecretKey     string  `env:"STRIPE_SECRET_KEY" envDefault:""`
	StripeWebhookSecret string  `env:"STRIPE_WEBHOOK_SECRET" envDefault:""`
	StripeAPIURL        string  `env:"STRIPE_API_URL" envDefault:""`
	CheckoutTaxRate     float64 `env:"CHECKOUT_TAX_RATE" envDefault:"0.08"`
	Currency            string  `env:"CURRENCY" envDefault:"USD"`

	// Circuit breaker around the payment provider
	CBMaxRequests  uint32  `env:"CB_MAX_REQUESTS" envDefault:"1"`
	CBInterval     int     `env:"CB_INTERVAL_SECONDS" envDefault:"60"`
	CBTimeout      int     `env:"CB_TIMEOUT_SECONDS" envDefault:"30"`
	CBFailureRatio float64 `env:"CB_FAILURE_RATIO" envDefault:"0.5"`
	CBMinRequests  uint32  `env:"CB_MIN_REQUESTS" envDefault:"5"`

	// Rate limiting for checkout and webhooks
	CheckoutRateLimitRPS   float64 `env:"CHECKOUT_RATE_LIMIT_RPS" envDefault:"5"`
	CheckoutRateLimitBurst int     `env:"CHECKOUT_RATE_LIMIT_BURST" envDefault:"10"`

	// Kafka
	KafkaEnabled bool     `env:"KAFKA_ENABLED" envDefault:"false"`
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:3000" envSeparator:","`

	// Pprof debug endpoints (IP allowlist in CIDR notation)
	PprofAllowedCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"10.0.0.0/8,172.16.0.0/12,192.168.0.0/16,127.0.0.0/8,::1/128" envSeparator:","`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFrom reads configuration from the given key/value map.
func LoadFrom(environ map[string]string) (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.LoadFrom(cfg, environ); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if _, err := url.ParseRequestURI(c.BaseURL); err != nil {
		return fmt.Errorf("invalid STOREFRONT_BASE_URL %q: %w", c.BaseURL, err)
	}
	if !slices.Contains([]string{BackendMemory, BackendRedis}, c.SnapshotBackend) {
		return fmt.Errorf("SNAPSHOT_BACKEND must be memory or redis, got %q", c.SnapshotBackend)
	}
	if !slices.Contains([]string{BackendMemory, BackendPostgres}, c.CatalogSource) {
		return fmt.Errorf("CATALOG_SOURCE must be memory or postgres, got %q", c.CatalogSource)
	}
	if c.CatalogSource == BackendPostgres && c.DatabaseURL == "" && c.PostgresHost == "" {
		return fmt.Errorf("POSTGRES_HOST or DATABASE_URL is required for the postgres catalog")
	}
	if c.SnapshotBackend == BackendRedis && c.RedisAddr == "" {
		return fmt.Errorf("REDIS_ADDR is required for the redis snapshot backend")
	}
	if c.SessionIdleMinutes < 1 {
		return fmt.Errorf("SESSION_IDLE_MINUTES must be positive, got %d", c.SessionIdleMinutes)
	}
	if c.PageSize < 1 || c.PageSize > 100 {
		return fmt.Errorf("PAGE_SIZE must be between 1 and 100, got %d", c.PageSize)
	}
	switch c.PaymentProvider {
	case ProviderMock:
	case ProviderStripe:
		if c.StripeSecretKey == "" {
			return fmt.Errorf("STRIPE_SECRET_KEY is required for the stripe provider")
		}
	default:
		return fmt.Errorf("PAYMENT_PROVIDER must be mock or stripe, got %q", c.PaymentProvider)
	}
	if c.CheckoutTaxRate < 0 || c.CheckoutTaxRate > 1.0 {
		return fmt.Errorf("CHECKOUT_TAX_RATE must be between 0.0 and 1.0, got %f", c.CheckoutTaxRate)
	}
	if c.CheckoutRateLimitRPS <= 0 || c.CheckoutRateLimitBurst < 1 {
		return fmt.Errorf("checkout rate limit must be positive, got %.2f rps burst %d", c.CheckoutRateLimitRPS, c.CheckoutRateLimitBurst)
	}
	if c.KafkaEnabled && len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when KAFKA_ENABLED is set")
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1.0 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", c.OTELSampleRate)
	}
	return nil
}

// Postgres returns the connection pool configuration.
func (c *Config) Postgres() database.PostgresConfig {
	return database.PostgresConfig{
		URL:             c.DatabaseURL,
		Host:            c.PostgresHost,
		Port:            c.PostgresPort,
		User:            c.PostgresUser,
		Password:        c.PostgresPass,
		DBName:          c.PostgresDB,
		SSLMode:         c.PostgresSSL,
		MaxConns:        c.DBMaxConns,
		MinConns:        c.DBMinConns,
		MaxConnLifetime: time.Duration(c.DBMaxConnLifetimeMins) * time.Minute,
		MaxConnIdleTime: time.Duration(c.DBMaxConnIdleTimeMins) * time.Minute,
	}
}

// Redis returns the Redis client configuration.
func (c *Config) Redis() database.RedisConfig {
	return database.RedisConfig{Addr: c.RedisAddr, Password: c.RedisPass, DB: c.RedisDB}
}

// SnapshotTTL is how long persisted carts and wishlists live in Redis.
func (c *Config) SnapshotTTL() time.Duration {
	return time.Duration(c.SnapshotTTLHours) * time.Hour
}

// SessionIdle is how long an untouched session stays in memory.
func (c *Config) SessionIdle() time.Duration {
	return time.Duration(c.SessionIdleMinutes) * time.Minute
}

// CatalogTTL is how long the catalog cache is trusted.
func (c *Config) CatalogTTL() time.Duration {
	return time.Duration(c.CatalogCacheSeconds) * time.Second
}

// CatalogLatency is the simulated catalog fetch delay.
func (c *Config) CatalogLatency() time.Duration {
	return time.Duration(c.CatalogLatencyMs) * time.Millisecond
}

// IsDevelopment reports whether the service runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
