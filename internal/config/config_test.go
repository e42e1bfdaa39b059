package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileWritesTemplate(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 0.05, cfg.Pricing.RiskFreeRate)
	assert.Equal(t, 0.30, cfg.Pricing.EquityVolatility)
	assert.Equal(t, 0.45, cfg.Pricing.CryptoVolatility)
	assert.Equal(t, 2*time.Second, cfg.Stream.RefreshInterval)
	assert.Equal(t, filepath.Join(dir, "contracts.db"), cfg.Store.Path)
	assert.FileExists(t, filepath.Join(dir, "config.toml"))

	// Second load parses the template itself.
	again, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, cfg.Pricing, again.Pricing)
	assert.Equal(t, filepath.Join(dir, "contracts.db"), again.Store.Path)
}

func TestLoad_FileValues(t *testing.T) {
	dir := t.TempDir()
	content := `
[pricing]
risk_free_rate = 0.04
equity_volatility = 0.25
crypto_symbols = ["BTC", "PEPE"]

[stream]
refresh_interval = "1500ms"

[store]
path = "/tmp/contracts-test.db"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 0.04, cfg.Pricing.RiskFreeRate)
	assert.Equal(t, 0.25, cfg.Pricing.EquityVolatility)
	assert.Equal(t, 0.45, cfg.Pricing.CryptoVolatility)
	assert.Equal(t, []string{"BTC", "PEPE"}, cfg.Pricing.CryptoSymbols)
	assert.Equal(t, 1500*time.Millisecond, cfg.Stream.RefreshInterval)
	assert.Equal(t, "/tmp/contracts-test.db", cfg.Store.Path)
}

func TestLoad_RejectsUnsupportedDefaultExpiry(t *testing.T) {
	dir := t.TempDir()
	content := "[pricing]\ndefault_expiry_days = 5\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0644))

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "default_expiry_days")
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PRICER_RISK_FREE_RATE", "0.03")
	t.Setenv("PRICER_LOG_LEVEL", "debug")
	t.Setenv("PRICER_DB_PATH", "/tmp/override.db")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 0.03, cfg.Pricing.RiskFreeRate)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "/tmp/override.db", cfg.Store.Path)

	t.Setenv("PRICER_RISK_FREE_RATE", "five percent")
	_, err = Load(dir)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative rate", func(c *Config) { c.Pricing.RiskFreeRate = -0.01 }},
		{"rate of one", func(c *Config) { c.Pricing.RiskFreeRate = 1 }},
		{"zero equity vol", func(c *Config) { c.Pricing.EquityVolatility = 0 }},
		{"huge crypto vol", func(c *Config) { c.Pricing.CryptoVolatility = 6 }},
		{"fast refresh", func(c *Config) { c.Stream.RefreshInterval = 10 * time.Millisecond }},
		{"no buffer", func(c *Config) { c.Stream.SubscriberBuffer = 0 }},
		{"unsupported default expiry", func(c *Config) { c.Pricing.DefaultExpiryDays = 5 }},
		{"zero default expiry", func(c *Config) { c.Pricing.DefaultExpiryDays = 0 }},
	}

	require.NoError(t, Default().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
