package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"hogar/internal/backend"
	"hogar/internal/cli"
	"hogar/internal/config"
	"hogar/internal/core"
	"hogar/internal/log"
)

var (
	flagDB        string
	flagHousehold string
	flagVerbose   bool
)

var rootCmd = &cobra.Command{
	Use:           "hogarctl",
	Short:         "Household budget administration",
	Long:          "Seed categories, record transactions, open budget periods and print budget reports.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	cli.LoadEnvFile()
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "SQLite database path (default $SQLITE_DB_PATH)")
	rootCmd.PersistentFlags().StringVarP(&flagHousehold, "household", "H", os.Getenv("HOGAR_HOUSEHOLD"), "Household ID")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log at info level")
}

// newLogger logs to stderr so report output on stdout stays clean.
func newLogger() *log.Logger {
	cfg := log.DefaultConfig()
	cfg.Output = os.Stderr
	cfg.Component = log.ComponentAdmin
	cfg.Level = slog.LevelWarn
	if flagVerbose {
		cfg.Level = slog.LevelInfo
	}
	logger := log.New(cfg)
	log.SetDefault(logger)
	return logger
}

// openBackend builds the budget backend without alert publishing; the CLI
// never talks to the broker.
func openBackend(ctx context.Context) (*backend.App, error) {
	logger := newLogger()
	cfg := config.Load()
	if flagDB != "" {
		cfg.SQLiteDBPath = flagDB
	}
	cfg.AMQPURL = ""

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("backend config: %w", err)
	}
	app, err := backend.NewFactory(logger).Build(ctx, bcfg)
	if err != nil {
		return nil, fmt.Errorf("open backend: %w", err)
	}
	return app, nil
}

func closeBackend(app *backend.App) {
	if err := app.Cleanup(); err != nil {
		fmt.Fprintln(os.Stderr, "warning: cleanup:", err)
	}
}

func household() (core.HouseholdContext, error) {
	hh := core.HouseholdContext{HouseholdID: flagHousehold}
	if err := hh.Validate(); err != nil {
		return hh, fmt.Errorf("%w: pass --household or set HOGAR_HOUSEHOLD", err)
	}
	return hh, nil
}
