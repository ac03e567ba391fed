package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"budgetbuddy/internal/amqp"
	"budgetbuddy/internal/cli"
	"budgetbuddy/internal/events"
	apphttp "budgetbuddy/internal/http"
	applog "budgetbuddy/internal/log"
	"budgetbuddy/internal/services"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg.SlogLevel())

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

	g, gctx := errgroup.WithContext(ctx)

	// Create hands events to this queue; one consumer either runs the alert
	// worker in-process or relays to the broker.
	queue := events.NewQueue(cfg.EventQueueSize, logger)
	var consume events.Handler
	if cfg.AMQPURL == "" {
		alerts, err := cli.NewAlertWorker(ctx, logger, cfg, store)
		if err != nil {
			logger.Error("Failed to initialize alert worker", applog.FieldError, err)
			os.Exit(1)
		}
		consume = alerts.HandleBalanceChanged
		logger.Info("Using in-process event queue", "size", cfg.EventQueueSize)
	} else {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
			os.Exit(1)
		}
		defer client.Close()
		consume = client.PublishBalanceChanged
		logger.Info("Relaying balance events to AMQP", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	}

	transactions := services.NewTransactionService(store, queue, logger)
	srv := apphttp.NewServer(apphttp.Config{
		Addr:               ":" + cfg.Port,
		CORSOrigin:         cfg.CORSOrigin,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	},
		transactions,
		services.NewUserService(store, logger),
		logger)
	srv.SetReadinessCheck(func(ctx context.Context) error {
		_, err := store.CountUsersByEmail(ctx, "")
		return err
	})

	// The consumer outlives the server so events from the last requests
	// are still delivered.
	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	defer stopConsumer()
	g.Go(func() error {
		if err := queue.Run(consumerCtx, consume); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		logger.Info("Starting budgetbuddy server", applog.FieldOperation, applog.OpStartup,
			"port", cfg.Port, "backend", cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		defer stopConsumer()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		logger.Info("Shutting down HTTP server", applog.FieldOperation, applog.OpShutdown)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := transactions.Wait(shutdownCtx); err != nil {
			logger.Warn("Balance events still in flight at shutdown", applog.FieldError, err)
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Server stopped with error", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
