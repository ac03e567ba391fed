// Package cli provides the process bootstrap shared by cmd/budgetbuddy and
// cmd/budgetbuddy-worker.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"budgetbuddy/internal/backend"
	"budgetbuddy/internal/config"
	applog "budgetbuddy/internal/log"
	"budgetbuddy/internal/notify"
	"budgetbuddy/internal/services"
	"budgetbuddy/internal/sheets"
	gsheet "budgetbuddy/internal/sheets/google"
	"budgetbuddy/internal/storage"
	"budgetbuddy/internal/worker"
)

// LoadEnvFile loads the .env file for local development.
// A missing file is not an error in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger installs a text logger at level as the process default.
func SetupLogger(level slog.Level) *applog.Logger {
	logger := applog.New(applog.Config{Level: level, Output: os.Stdout, Component: applog.ComponentApp})
	applog.SetDefault(logger)
	return logger
}

// LoadAndValidateConfig loads configuration and exits on validation failure.
func LoadAndValidateConfig() *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		// The logger level depends on config, so fall back to the default one here.
		slog.Error("Configuration validation failed",
			applog.FieldError, err,
			applog.FieldErrorType, applog.ErrorTypeConfiguration)
		os.Exit(1)
	}
	return cfg
}

// OpenStore builds the record store selected by DATA_BACKEND.
// The returned cleanup closes it.
func OpenStore(ctx context.Context, logger *applog.Logger, cfg *config.Config) (storage.Store, func() error, error) {
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	res, err := backend.NewFactory(logger.WithComponent(applog.ComponentBackend).Logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("create %s backend: %w", backendCfg.Type, err)
	}
	return res.Store, res.Cleanup, nil
}

// NewNotifier returns the SMTP mailer when a relay is configured and a
// logging notifier otherwise.
func NewNotifier(logger *applog.Logger, cfg *config.Config) (notify.Notifier, error) {
	if !cfg.SMTPEnabled() {
		logger.Info("SMTP not configured, low balance alerts will only be logged")
		return notify.NewLogNotifier(logger), nil
	}
	mailer, err := notify.NewMailer(notify.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	}, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("SMTP notifier initialized", "host", cfg.SMTPHost, "port", cfg.SMTPPort)
	return mailer, nil
}

// NewAlertWorker wires the balance evaluator, the notifier and the optional
// spreadsheet mirror around store.
func NewAlertWorker(ctx context.Context, logger *applog.Logger, cfg *config.Config, store storage.Store) (*worker.AlertWorker, error) {
	notifier, err := NewNotifier(logger, cfg)
	if err != nil {
		return nil, err
	}

	var mirror sheets.TransactionWriter
	if cfg.GoogleSpreadsheetID != "" {
		client, err := gsheet.New(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleSheetName, logger)
		if err != nil {
			return nil, fmt.Errorf("init google sheets mirror: %w", err)
		}
		mirror = client
		logger.Info("Google Sheets mirror enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID, "sheet", cfg.GoogleSheetName)
	} else {
		logger.Info("Google Sheets mirror disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	evaluator := services.NewBalanceEvaluator(store, notifier, cfg.LowBalanceThreshold, logger)
	return worker.NewAlertWorker(evaluator, store, mirror, logger), nil
}

// ShutdownContext returns a context cancelled on SIGINT or SIGTERM.
func ShutdownContext(logger *applog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
