package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Port     int    `env:"STOREFRONT_TEST_PORT" envDefault:"8080"`
	Host     string `env:"STOREFRONT_TEST_HOST" envDefault:"localhost"`
	LogLevel string `env:"STOREFRONT_TEST_LOG_LEVEL" envDefault:"info"`
	Debug    bool   `env:"STOREFRONT_TEST_DEBUG" envDefault:"false"`
}

func TestLoad_Defaults(t *testing.T) {
	var cfg testConfig
	err := Load(&cfg)

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.Debug)
}

func TestLoad_FromEnvVars(t *testing.T) {
	t.Setenv("STOREFRONT_TEST_PORT", "9090")
	t.Setenv("STOREFRONT_TEST_HOST", "0.0.0.0")
	t.Setenv("STOREFRONT_TEST_LOG_LEVEL", "debug")
	t.Setenv("STOREFRONT_TEST_DEBUG", "true")

	var cfg testConfig
	err := Load(&cfg)

	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.Debug)
}

type requiredConfig struct {
	APIKey string `env:"STOREFRONT_TEST_API_KEY,required"`
}

func TestLoad_RequiredFieldMissing(t *testing.T) {
	var cfg requiredConfig
	err := Load(&cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestLoad_RequiredFieldPresent(t *testing.T) {
	t.Setenv("STOREFRONT_TEST_API_KEY", "secret-123")

	var cfg requiredConfig
	err := Load(&cfg)

	require.NoError(t, err)
	assert.Equal(t, "secret-123", cfg.APIKey)
}

func TestLoad_InvalidType(t *testing.T) {
	t.Setenv("STOREFRONT_TEST_PORT", "not-a-number")

	var cfg testConfig
	err := Load(&cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

type sliceConfig struct {
	Brokers []string `env:"STOREFRONT_TEST_BROKERS" envDefault:"localhost:9092" envSeparator:","`
	TaxRate float64  `env:"STOREFRONT_TEST_TAX_RATE" envDefault:"0.08"`
}

func TestLoadFrom_UsesProvidedEnvironment(t *testing.T) {
	var cfg sliceConfig
	err := LoadFrom(&cfg, map[string]string{
		"STOREFRONT_TEST_BROKERS": "kafka-1:9092,kafka-2:9092",
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Brokers)
	assert.InDelta(t, 0.08, cfg.TaxRate, 1e-9)
}

func TestLoadFrom_IgnoresProcessEnvironment(t *testing.T) {
	t.Setenv("STOREFRONT_TEST_TAX_RATE", "0.5")

	var cfg sliceConfig
	require.NoError(t, LoadFrom(&cfg, map[string]string{}))
	assert.InDelta(t, 0.08, cfg.TaxRate, 1e-9)
}
