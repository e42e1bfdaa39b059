// Package cli provides the command-line interface for the option pricer.
package cli

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"option-pricer/internal/config"
	"option-pricer/internal/errors"
	"option-pricer/internal/logging"
	"option-pricer/internal/quote"
	"option-pricer/internal/store"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2026-03-02"
)

// App holds the application dependencies.
type App struct {
	Config    *config.Config
	ConfigDir string
	Logger    zerolog.Logger
	Quoter    *quote.Quoter
	Store     store.ContractStore
}

// NewApp wires the application dependencies for cfg.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{
		Config:    cfg,
		ConfigDir: config.DefaultConfigDir(),
		Logger:    logger,
		Quoter:    quote.NewQuoter(cfg.Pricing, logger),
	}
}

// Execute builds the CLI for cfg and runs it.
func Execute(cfg *config.Config, logger zerolog.Logger) error {
	app := NewApp(cfg, logger)
	return app.Run(NewRootCmd(app))
}

// Run executes cmd and then releases the contract journal. The journal is
// closed whether or not the command failed.
func (app *App) Run(cmd *cobra.Command) error {
	err := cmd.Execute()
	if cerr := app.Close(); err == nil {
		err = cerr
	}
	return err
}

// Close releases the contract journal if a command opened it.
func (app *App) Close() error {
	if app.Store == nil {
		return nil
	}
	err := app.Store.Close()
	app.Store = nil
	return err
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "optpricer",
		Short: "Black-Scholes option pricer",
		Long: `optpricer prices European options with the Black-Scholes model.

It generates strike ladders around a spot price, computes Greeks, recovers
implied volatility from a market premium and records bought or written
contracts in a local journal.

Use 'optpricer <command> --help' for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if dir, _ := cmd.Flags().GetString("config"); dir != "" {
				if err := app.reload(dir); err != nil {
					return err
				}
			}
			if debug, _ := cmd.Flags().GetBool("debug"); debug {
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
				app.Quoter = quote.NewQuoter(app.Config.Pricing, app.Logger)
			}
			ctx := logging.WithLogger(cmd.Context(), logging.WithOperation(app.Logger, cmd.Name()))
			cmd.SetContext(withColor(ctx, app.Config.UI.ColorEnabled))
			return nil
		},
	}

	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/option-pricer)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	addCoreCommands(rootCmd, app)
	addOptionsCommands(rootCmd, app)
	addContractCommands(rootCmd, app)

	return rootCmd
}

// reload replaces the configuration with the one found in dir.
func (app *App) reload(dir string) error {
	cfg, err := config.Load(dir)
	if err != nil {
		return err
	}
	app.Config = cfg
	app.ConfigDir = dir
	app.Quoter = quote.NewQuoter(cfg.Pricing, app.Logger)
	return nil
}

// contracts opens the contract journal on first use.
func (app *App) contracts() (store.ContractStore, error) {
	if app.Store != nil {
		return app.Store, nil
	}
	if err := os.MkdirAll(filepath.Dir(app.Config.Store.Path), 0755); err != nil {
		return nil, errors.Wrapf(errors.ErrStoreUnavailable, "%s: %v", app.Config.Store.Path, err)
	}
	s, err := store.NewSQLiteStore(app.Config.Store.Path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrStoreUnavailable, "%s: %v", app.Config.Store.Path, err)
	}
	app.Logger.Debug().Str("path", app.Config.Store.Path).Msg("Contract store opened")
	app.Store = s
	return s, nil
}

// addCoreCommands adds core utility commands.
func addCoreCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			} else {
				output.Printf("optpricer v%s\n", Version)
				output.Dim("Build date: %s", BuildDate)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and validate application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			showConfig(output, app.Config)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"path": app.ConfigDir})
			} else {
				output.Println(app.ConfigDir)
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				output.JSON(map[string]bool{"valid": true})
			} else {
				output.Success("✓ Configuration is valid")
			}
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) {
	output.Bold("Pricing")
	output.Printf("  Risk-free rate:    %s\n", FormatPercent(cfg.Pricing.RiskFreeRate*100))
	output.Printf("  Equity vol:        %s\n", FormatIV(cfg.Pricing.EquityVolatility))
	output.Printf("  Crypto vol:        %s\n", FormatIV(cfg.Pricing.CryptoVolatility))
	output.Printf("  Crypto symbols:    %v\n", cfg.Pricing.CryptoSymbols)
	output.Printf("  Default expiry:    %dd\n", cfg.Pricing.DefaultExpiryDays)
	output.Println()

	output.Bold("Stream")
	output.Printf("  Refresh interval:  %s\n", cfg.Stream.RefreshInterval)
	output.Printf("  Subscriber buffer: %d\n", cfg.Stream.SubscriberBuffer)
	output.Println()

	output.Bold("Store")
	output.Printf("  Path:              %s\n", cfg.Store.Path)
	output.Println()

	output.Bold("Logging")
	output.Printf("  Level:             %s\n", cfg.Logging.Level)
	output.Printf("  Console:           %v\n", cfg.Logging.Console)
	output.Printf("  File:              %v\n", cfg.Logging.File)
}
