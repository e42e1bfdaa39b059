package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# Option Pricer Configuration

[pricing]
# Annualized risk-free rate
risk_free_rate = 0.05
# Annualized volatility assumed for equity-like underlyings
equity_volatility = 0.30
# Annualized volatility assumed for crypto-like underlyings
crypto_volatility = 0.45
# Tickers priced with the crypto volatility (tickers ending in -USD or USDT are included automatically)
crypto_symbols = ["BTC", "ETH", "SOL", "DOGE", "XRP", "ADA", "AVAX", "MATIC", "LTC", "BNB"]
# Expiry used when none is given: 1, 3, 7, 14 or 30
default_expiry_days = 7

[stream]
# How often the watched chain is recomputed
refresh_interval = "2s"
# Chains buffered per subscriber before stale ones are dropped
subscriber_buffer = 1

[store]
# Contract journal database (empty uses the config directory)
path = ""

[logging]
level = "info"
console = true
file = true
max_size = 100
max_backups = 7
max_age = 30

[ui]
# Enable colored output
color_enabled = true
`

// createTemplateConfig writes the template so the user has something to
// edit. The caller keeps its defaults for this run.
func createTemplateConfig(configDir, name string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, name+".toml")
	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config template: %w", err)
	}

	return nil
}
