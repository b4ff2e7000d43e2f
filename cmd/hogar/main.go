package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"hogar/internal/cli"
	apphttp "hogar/internal/http"
	"hogar/internal/log"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	app, _, _ := cli.BuildBackend(context.Background(), logger, cfg)
	app.Caches.StartCleanup(time.Minute)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Options{
		Reports:  app.Budgets,
		Periods:  app.Repo,
		Ready:    app.Repo,
		Logger:   logger,
		SeedZero: cfg.PeriodSeedZeroLines,
	})
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		if err := app.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", "error", err)
		}
	})

	logger.Info("Starting hogar server",
		"port", cfg.Port,
		log.FieldModel, cfg.RecurrenceModel,
		"alerts_enabled", app.AMQP != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
