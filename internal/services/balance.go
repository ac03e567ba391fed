package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"budgetbuddy/internal/core"
	applog "budgetbuddy/internal/log"
	"budgetbuddy/internal/notify"
	"budgetbuddy/internal/storage"
)

// DefaultLowBalanceThreshold is the balance below which owners are alerted.
var DefaultLowBalanceThreshold = decimal.NewFromInt(500)

// ErrNotificationFailed marks a failed alert delivery. Callers log it and
// move on.
var ErrNotificationFailed = errors.New("notification failed")

// Evaluation is the outcome of one balance check.
type Evaluation struct {
	OwnerEmail string
	Totals     core.Totals
	Alerted    bool
}

// BalanceEvaluator recomputes an owner's balance and alerts below the
// threshold. The recomputation is linear in the owner's transaction count.
type BalanceEvaluator struct {
	store     storage.TransactionStore
	notifier  notify.Notifier
	threshold decimal.Decimal
	logger    *applog.Logger
}

func NewBalanceEvaluator(store storage.TransactionStore, notifier notify.Notifier, threshold decimal.Decimal, logger *applog.Logger) *BalanceEvaluator {
	if logger == nil {
		logger = applog.Discard()
	}
	return &BalanceEvaluator{
		store:     store,
		notifier:  notifier,
		threshold: threshold,
		logger:    logger.WithComponent(applog.ComponentWorker),
	}
}

func (e *BalanceEvaluator) Threshold() decimal.Decimal {
	return e.threshold
}

// Evaluate sums the owner's income and expenses and notifies when the
// balance is strictly below the threshold. A notifier failure is returned
// wrapped in ErrNotificationFailed together with the evaluation.
func (e *BalanceEvaluator) Evaluate(ctx context.Context, ownerEmail string) (Evaluation, error) {
	txs, err := e.store.ListTransactions(ctx, ownerEmail)
	if err != nil {
		return Evaluation{}, fmt.Errorf("list transactions for %s: %w", ownerEmail, err)
	}

	ev := Evaluation{OwnerEmail: ownerEmail, Totals: core.ComputeBalance(txs)}
	e.logger.DebugContext(ctx, "Balance evaluated",
		applog.FieldOperation, applog.OpEvaluate,
		applog.FieldOwnerEmail, ownerEmail,
		applog.FieldBalance, core.FormatAmount(ev.Totals.Balance),
		applog.FieldThreshold, core.FormatAmount(e.threshold))

	if !ev.Totals.Balance.LessThan(e.threshold) {
		return ev, nil
	}
	if e.notifier == nil {
		return ev, nil
	}
	if err := e.notifier.SendLowBalanceAlert(ctx, ownerEmail, ev.Totals.Balance); err != nil {
		return ev, fmt.Errorf("%w: %w", ErrNotificationFailed, err)
	}
	ev.Alerted = true
	return ev, nil
}
