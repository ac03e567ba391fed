// Package worker consumes BalanceChanged events: it re-evaluates the
// owner's balance, sends low balance alerts and mirrors new transactions
// to the spreadsheet when one is configured.
package worker

import (
	"context"
	"errors"
	"fmt"

	"budgetbuddy/internal/core"
	applog "budgetbuddy/internal/log"
	"budgetbuddy/internal/services"
	"budgetbuddy/internal/sheets"
	"budgetbuddy/internal/storage"
)

type AlertWorker struct {
	evaluator *services.BalanceEvaluator
	store     storage.TransactionStore
	mirror    sheets.TransactionWriter
	logger    *applog.Logger
}

// NewAlertWorker builds the worker. mirror may be nil.
func NewAlertWorker(evaluator *services.BalanceEvaluator, store storage.TransactionStore, mirror sheets.TransactionWriter, logger *applog.Logger) *AlertWorker {
	if logger == nil {
		logger = applog.Discard()
	}
	return &AlertWorker{
		evaluator: evaluator,
		store:     store,
		mirror:    mirror,
		logger:    logger.WithComponent(applog.ComponentWorker),
	}
}

// HandleBalanceChanged processes one event. Store failures are returned so
// the transport can redeliver; alert and mirror failures are only logged.
func (w *AlertWorker) HandleBalanceChanged(ctx context.Context, evt core.BalanceChanged) error {
	ev, err := w.evaluator.Evaluate(ctx, evt.OwnerEmail)
	switch {
	case errors.Is(err, services.ErrNotificationFailed):
		w.logger.ErrorContext(ctx, "Low balance alert not delivered",
			applog.FieldError, err,
			applog.FieldErrorType, applog.ErrorTypeNotification,
			applog.FieldOwnerEmail, evt.OwnerEmail,
			applog.FieldBalance, core.FormatAmount(ev.Totals.Balance))
	case err != nil:
		return fmt.Errorf("evaluate balance: %w", err)
	case ev.Alerted:
		w.logger.InfoContext(ctx, "Low balance alert sent",
			applog.FieldOwnerEmail, evt.OwnerEmail,
			applog.FieldBalance, core.FormatAmount(ev.Totals.Balance),
			applog.FieldThreshold, core.FormatAmount(w.evaluator.Threshold()))
	}

	w.mirrorTransaction(ctx, evt.TransactionID)
	return nil
}

func (w *AlertWorker) mirrorTransaction(ctx context.Context, id string) {
	if w.mirror == nil || id == "" {
		return
	}

	t, err := w.store.GetTransaction(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		w.logger.DebugContext(ctx, "Transaction gone before mirroring", applog.FieldTransactionID, id)
		return
	}
	if err != nil {
		w.logger.ErrorContext(ctx, "Failed to load transaction for mirror",
			applog.FieldError, err, applog.FieldTransactionID, id, applog.FieldOperation, applog.OpMirror)
		return
	}

	ref, err := w.mirror.AppendTransaction(ctx, t)
	if err != nil {
		w.logger.ErrorContext(ctx, "Failed to mirror transaction",
			applog.FieldError, err, applog.FieldTransactionID, id, applog.FieldOperation, applog.OpMirror)
		return
	}
	w.logger.InfoContext(ctx, "Transaction mirrored", applog.FieldTransactionID, id, "row", ref)
}
