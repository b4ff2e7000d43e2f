package main

import (
	"context"
	"os"
	"time"

	"hogar/internal/cli"
	"hogar/internal/log"
	"hogar/internal/services"
	"hogar/internal/storage"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)
	logger.Info("Starting period-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	opener := services.NewPeriodOpener(repo, cfg.PeriodSeedZeroLines)
	scheduler := services.NewPeriodScheduler(opener, services.PeriodSchedulerConfig{
		Interval: cfg.PeriodCheckInterval,
	})

	ctx, done := cli.GracefulShutdown(logger, 15*time.Second, func(ctx context.Context) {
		if err := scheduler.Stop(ctx); err != nil {
			logger.Error("Period scheduler stop error", "error", err)
		}
	})

	logger.Info("Budget period scheduler configured",
		"interval", cfg.PeriodCheckInterval,
		"seed_zero_lines", cfg.PeriodSeedZeroLines,
		"sqlite_db", cfg.SQLiteDBPath)
	if err := scheduler.Start(ctx); err != nil {
		logger.Error("Failed to start period scheduler", "error", err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("period-worker stopped")
}
