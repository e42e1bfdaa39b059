// Package config provides configuration management for the option pricer.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/viper"

	"option-pricer/internal/models"
)

// Config holds all application configuration.
type Config struct {
	Pricing PricingConfig `mapstructure:"pricing"`
	Stream  StreamConfig  `mapstructure:"stream"`
	Store   StoreConfig   `mapstructure:"store"`
	Logging LoggingConfig `mapstructure:"logging"`
	UI      UIConfig      `mapstructure:"ui"`
}

// PricingConfig holds the market assumptions fed to the pricing engine.
type PricingConfig struct {
	RiskFreeRate      float64  `mapstructure:"risk_free_rate"`
	EquityVolatility  float64  `mapstructure:"equity_volatility"`
	CryptoVolatility  float64  `mapstructure:"crypto_volatility"`
	CryptoSymbols     []string `mapstructure:"crypto_symbols"`
	DefaultExpiryDays int      `mapstructure:"default_expiry_days"`
}

// StreamConfig holds spot refresh configuration.
type StreamConfig struct {
	RefreshInterval  time.Duration `mapstructure:"refresh_interval"`
	SubscriberBuffer int           `mapstructure:"subscriber_buffer"`
}

// StoreConfig holds contract journal configuration.
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Console    bool   `mapstructure:"console"`
	File       bool   `mapstructure:"file"`
	MaxSize    int    `mapstructure:"max_size"` // megabytes
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"` // days
}

// UIConfig holds UI-related configuration.
type UIConfig struct {
	ColorEnabled bool `mapstructure:"color_enabled"`
}

// DefaultCryptoSymbols are priced with the crypto volatility regime.
var DefaultCryptoSymbols = []string{"BTC", "ETH", "SOL", "DOGE", "XRP", "ADA", "AVAX", "MATIC", "LTC", "BNB"}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/option-pricer"
	}
	return filepath.Join(home, ".config", "option-pricer")
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Pricing: PricingConfig{
			RiskFreeRate:      0.05,
			EquityVolatility:  0.30,
			CryptoVolatility:  0.45,
			CryptoSymbols:     append([]string(nil), DefaultCryptoSymbols...),
			DefaultExpiryDays: 7,
		},
		Stream: StreamConfig{
			RefreshInterval:  2 * time.Second,
			SubscriberBuffer: 1,
		},
		Store: StoreConfig{
			Path: filepath.Join(DefaultConfigDir(), "contracts.db"),
		},
		Logging: LoggingConfig{
			Level:      "info",
			Console:    true,
			File:       true,
			MaxSize:    100,
			MaxBackups: 7,
			MaxAge:     30,
		},
		UI: UIConfig{ColorEnabled: true},
	}
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory. A missing
// config.toml is created from the template and defaults are returned.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg, err := loadConfigFile(configDir, "config")
	if err != nil {
		return nil, fmt.Errorf("loading config.toml: %w", err)
	}

	if cfg.Store.Path == "" {
		cfg.Store.Path = filepath.Join(configDir, "contracts.db")
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, fmt.Errorf("applying environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func loadConfigFile(configDir, name string) (*Config, error) {
	v := viper.New()
	v.SetConfigName(name)
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	setDefaults(v, Default())

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if err := createTemplateConfig(configDir, name); err != nil {
				return nil, err
			}
			cfg := Default()
			cfg.Store.Path = ""
			return cfg, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("pricing.risk_free_rate", cfg.Pricing.RiskFreeRate)
	v.SetDefault("pricing.equity_volatility", cfg.Pricing.EquityVolatility)
	v.SetDefault("pricing.crypto_volatility", cfg.Pricing.CryptoVolatility)
	v.SetDefault("pricing.crypto_symbols", cfg.Pricing.CryptoSymbols)
	v.SetDefault("pricing.default_expiry_days", cfg.Pricing.DefaultExpiryDays)
	v.SetDefault("stream.refresh_interval", cfg.Stream.RefreshInterval)
	v.SetDefault("stream.subscriber_buffer", cfg.Stream.SubscriberBuffer)
	// Empty resolves against the config directory in Load.
	v.SetDefault("store.path", "")
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.console", cfg.Logging.Console)
	v.SetDefault("logging.file", cfg.Logging.File)
	v.SetDefault("logging.max_size", cfg.Logging.MaxSize)
	v.SetDefault("logging.max_backups", cfg.Logging.MaxBackups)
	v.SetDefault("logging.max_age", cfg.Logging.MaxAge)
	v.SetDefault("ui.color_enabled", cfg.UI.ColorEnabled)
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("PRICER_RISK_FREE_RATE"); v != "" {
		rate, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("PRICER_RISK_FREE_RATE: %w", err)
		}
		cfg.Pricing.RiskFreeRate = rate
	}
	if v := os.Getenv("PRICER_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("PRICER_DB_PATH"); v != "" {
		cfg.Store.Path = v
	}
	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Pricing.RiskFreeRate < 0 || c.Pricing.RiskFreeRate >= 1 {
		return fmt.Errorf("risk_free_rate must be in [0, 1)")
	}
	if c.Pricing.EquityVolatility <= 0 || c.Pricing.EquityVolatility > 5 {
		return fmt.Errorf("equity_volatility must be in (0, 5]")
	}
	if c.Pricing.CryptoVolatility <= 0 || c.Pricing.CryptoVolatility > 5 {
		return fmt.Errorf("crypto_volatility must be in (0, 5]")
	}
	if !models.Expiry(c.Pricing.DefaultExpiryDays).Valid() {
		return fmt.Errorf("default_expiry_days must be one of %v", models.SupportedExpiries)
	}
	if c.Stream.RefreshInterval < 100*time.Millisecond {
		return fmt.Errorf("refresh_interval must be at least 100ms")
	}
	if c.Stream.SubscriberBuffer < 1 {
		return fmt.Errorf("subscriber_buffer must be at least 1")
	}
	return nil
}
