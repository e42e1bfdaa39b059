// Command optpricer prices European options from the terminal.
package main

import (
	"fmt"
	"os"

	"option-pricer/internal/cli"
	"option-pricer/internal/config"
	"option-pricer/internal/logging"
)

func main() {
	cfg, err := config.Load(config.DefaultConfigDir())
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v; using defaults\n", err)
		cfg = config.Default()
	}

	logger := logging.NewLoggerWithConfig(logging.FromConfig(cfg.Logging))

	if err := cli.Execute(cfg, logger); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
