package main

import (
	"context"
	"errors"
	"os"

	"budgetbuddy/internal/amqp"
	"budgetbuddy/internal/cli"
	applog "budgetbuddy/internal/log"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg.SlogLevel())

	logger.Info("Starting budgetbuddy-worker", applog.FieldOperation, applog.OpStartup)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the standalone worker")
		os.Exit(1)
	}

	ctx, cancel := cli.ShutdownContext(logger)
	defer cancel()

	store, closeStore, err := cli.OpenStore(ctx, logger, cfg)
	if err != nil {
		logger.Error("Failed to open record store", applog.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Error("Failed to close record store", applog.FieldError, err)
		}
	}()

	alerts, err := cli.NewAlertWorker(ctx, logger, cfg, store)
	if err != nil {
		logger.Error("Failed to initialize alert worker", applog.FieldError, err)
		os.Exit(1)
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		os.Exit(1)
	}
	defer client.Close()

	logger.Info("Worker started, waiting for balance events", "queue", cfg.AMQPQueue,
		"threshold", cfg.LowBalanceThreshold.String())
	if err := client.ConsumeBalanceChanged(ctx, alerts.HandleBalanceChanged); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully", applog.FieldOperation, applog.OpShutdown)
}
