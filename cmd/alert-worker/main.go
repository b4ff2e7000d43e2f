package main

import (
	"context"
	"errors"
	"os"
	"time"

	"hogar/internal/amqp"
	"hogar/internal/backend"
	"hogar/internal/cli"
	"hogar/internal/log"
	"hogar/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)
	logger.Info("Starting alert-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if !cfg.AlertsEnabled() {
		logger.Error("AMQP_URL is required for the alert worker",
			log.FieldErrorType, log.ErrorTypeConfiguration)
		os.Exit(1)
	}

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	sink, err := backend.NewFactory(logger).AlertSink(context.Background(), bcfg)
	if err != nil {
		logger.Error("Failed to initialize alert sink", "error", err, "sink", bcfg.Sink)
		os.Exit(1)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	alertWorker := worker.NewAlertWorker(sink)

	ctx, done := cli.GracefulShutdown(logger, 15*time.Second, nil)

	logger.Info("Consuming budget alerts",
		"queue", cfg.AMQPQueue,
		"sink", bcfg.Sink.String())
	if err := amqpClient.ConsumeBudgetAlerts(ctx, alertWorker.HandleBudgetAlert); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", "error", err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("alert-worker stopped")
}
