package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 8010, cfg.HTTPPort)
	assert.Equal(t, "http://localhost:3000", cfg.BaseURL)
	assert.Equal(t, BackendMemory, cfg.SnapshotBackend)
	assert.Equal(t, BackendMemory, cfg.CatalogSource)
	assert.Equal(t, ProviderMock, cfg.PaymentProvider)
	assert.Equal(t, 12, cfg.PageSize)
	assert.InDelta(t, 0.08, cfg.CheckoutTaxRate, 1e-9)
	assert.Equal(t, "USD", cfg.Currency)
	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, 720*time.Hour, cfg.SnapshotTTL())
	assert.Equal(t, time.Hour, cfg.SessionIdle())
	assert.Equal(t, 5*time.Minute, cfg.CatalogTTL())
	assert.Zero(t, cfg.CatalogLatency())
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"SNAPSHOT_BACKEND":   "redis",
		"REDIS_ADDR":         "redis.prod:6380",
		"CATALOG_SOURCE":     "postgres",
		"DATABASE_URL":       "postgres://u:p@db:5432/storefront",
		"CATALOG_LATENCY_MS": "300",
		"KAFKA_ENABLED":      "true",
		"KAFKA_BROKERS":      "k1:9092,k2:9092",
		"PAGE_SIZE":          "24",
	})

	require.NoError(t, err)
	assert.Equal(t, BackendRedis, cfg.SnapshotBackend)
	assert.Equal(t, "redis.prod:6380", cfg.Redis().Addr)
	assert.Equal(t, "postgres://u:p@db:5432/storefront", cfg.Postgres().URL)
	assert.Equal(t, 300*time.Millisecond, cfg.CatalogLatency())
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 24, cfg.PageSize)
}

func TestLoadFrom_PostgresPool(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{"DB_MAX_CONNS": "20", "DB_MAX_CONN_IDLE_TIME_MINUTES": "5"})

	require.NoError(t, err)
	pg := cfg.Postgres()
	assert.Equal(t, int32(20), pg.MaxConns)
	assert.Equal(t, 5*time.Minute, pg.MaxConnIdleTime)
	assert.Equal(t, "storefront", pg.DBName)
}

func TestLoadFrom_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		environ map[string]string
		wantErr string
	}{
		{"port", map[string]string{"STOREFRONT_HTTP_PORT": "0"}, "invalid HTTP port"},
		{"base url", map[string]string{"STOREFRONT_BASE_URL": "shop"}, "invalid STOREFRONT_BASE_URL"},
		{"snapshot backend", map[string]string{"SNAPSHOT_BACKEND": "sqlite"}, "SNAPSHOT_BACKEND must be memory or redis"},
		{"catalog source", map[string]string{"CATALOG_SOURCE": "redis"}, "CATALOG_SOURCE must be memory or postgres"},
		{"page size", map[string]string{"PAGE_SIZE": "101"}, "PAGE_SIZE must be between 1 and 100"},
		{"idle", map[string]string{"SESSION_IDLE_MINUTES": "0"}, "SESSION_IDLE_MINUTES must be positive"},
		{"provider", map[string]string{"PAYMENT_PROVIDER": "paypal"}, "PAYMENT_PROVIDER must be mock or stripe"},
		{"stripe without key", map[string]string{"PAYMENT_PROVIDER": "stripe"}, "STRIPE_SECRET_KEY is required"},
		{"tax rate", map[string]string{"CHECKOUT_TAX_RATE": "1.5"}, "CHECKOUT_TAX_RATE must be between 0.0 and 1.0"},
		{"rate limit", map[string]string{"CHECKOUT_RATE_LIMIT_RPS": "0"}, "checkout rate limit must be positive"},
		{"sample rate", map[string]string{"OTEL_SAMPLE_RATE": "2.0"}, "OTEL_SAMPLE_RATE must be between 0.0 and 1.0"},
		{"not a number", map[string]string{"STOREFRONT_HTTP_PORT": "http"}, "parse config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadFrom(tt.environ)

			assert.Nil(t, cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFrom_StripeWithKey(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"PAYMENT_PROVIDER":      "stripe",
		"STRIPE_SECRET_KEY":     "sk_test_123",
		"STRIPE_WEBHOOK_SECRET": "whsec_123",
	})

	require.NoError(t, err)
	assert.Equal(t, ProviderStripe, cfg.PaymentProvider)
	assert.Equal(t, "whsec_123", cfg.StripeWebhookSecret)
}
