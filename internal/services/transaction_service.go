package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"budgetbuddy/internal/core"
	"budgetbuddy/internal/events"
	applog "budgetbuddy/internal/log"
	"budgetbuddy/internal/storage"
)

// ErrOperationFailed wraps store failures surfaced to API callers.
var ErrOperationFailed = errors.New("operation failed")

const publishTimeout = 10 * time.Second

// NewTransaction is the input of Create.
type NewTransaction struct {
	Kind       core.Kind
	Category   string
	Amount     decimal.Decimal
	OccurredAt *time.Time
	OwnerEmail string
}

// TransactionService validates and persists transactions and announces
// balance changes to the alert worker.
type TransactionService struct {
	store      storage.TransactionStore
	publisher  events.Publisher
	logger     *applog.Logger
	structured *applog.StructuredLogger
	now        func() time.Time

	// inflight counts balance events not yet handed to the publisher.
	inflight sync.WaitGroup
}

func NewTransactionService(store storage.TransactionStore, publisher events.Publisher, logger *applog.Logger) *TransactionService {
	if logger == nil {
		logger = applog.Discard()
	}
	logger = logger.WithComponent(applog.ComponentTransaction)
	return &TransactionService{
		store:      store,
		publisher:  publisher,
		logger:     logger,
		structured: applog.NewStructuredLogger(logger),
		now:        time.Now,
	}
}

// Create stores the transaction and emits BalanceChanged in the
// background. Create does not wait for the publisher; a publish failure is
// only logged.
func (s *TransactionService) Create(ctx context.Context, in NewTransaction) (core.Transaction, error) {
	t := core.Transaction{
		Kind:       in.Kind,
		Category:   strings.TrimSpace(in.Category),
		Amount:     in.Amount,
		OwnerEmail: strings.TrimSpace(in.OwnerEmail),
	}
	if in.OccurredAt != nil && !in.OccurredAt.IsZero() {
		t.OccurredAt = in.OccurredAt.UTC()
	} else {
		t.OccurredAt = s.now().UTC()
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	stored, err := s.store.InsertTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("%w: save transaction: %w", ErrOperationFailed, err)
	}
	s.structured.LogTransactionCreated(ctx, stored.ID, stored.OwnerEmail, stored.Kind.String(), stored.Category, core.FormatAmount(stored.Amount))

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		s.publish(ctx, stored)
	}()
	return stored, nil
}

// Wait blocks until every balance event emitted so far has been handed to
// the publisher, or ctx is done.
func (s *TransactionService) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *TransactionService) publish(ctx context.Context, t core.Transaction) {
	if s.publisher == nil {
		s.logger.WarnContext(ctx, "No event publisher configured, skipping balance event")
		return
	}

	// Detached from the request, which has usually been answered by now.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	evt := core.BalanceChanged{
		OwnerEmail:    t.OwnerEmail,
		TransactionID: t.ID,
		Timestamp:     s.now().UTC(),
	}
	if err := s.publisher.PublishBalanceChanged(ctx, evt); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish balance event",
			applog.FieldError, err,
			applog.FieldOperation, applog.OpPublish,
			applog.FieldOwnerEmail, t.OwnerEmail,
			applog.FieldTransactionID, t.ID)
	}
}

// List returns the owner's transactions, never nil.
func (s *TransactionService) List(ctx context.Context, ownerEmail string) ([]core.Transaction, error) {
	txs, err := s.store.ListTransactions(ctx, ownerEmail)
	if err != nil {
		return nil, fmt.Errorf("%w: list transactions: %w", ErrOperationFailed, err)
	}
	if txs == nil {
		txs = []core.Transaction{}
	}
	return txs, nil
}

// Get returns storage.ErrNotFound for unknown ids.
func (s *TransactionService) Get(ctx context.Context, id string) (core.Transaction, error) {
	t, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return core.Transaction{}, err
		}
		return core.Transaction{}, fmt.Errorf("%w: get transaction: %w", ErrOperationFailed, err)
	}
	return t, nil
}

// Update applies the supplied fields. Unknown ids succeed without effect.
func (s *TransactionService) Update(ctx context.Context, id string, patch core.TransactionPatch) error {
	if err := patch.Validate(); err != nil {
		return err
	}
	if patch.IsEmpty() {
		return nil
	}
	if err := s.store.UpdateTransaction(ctx, id, patch); err != nil {
		return fmt.Errorf("%w: update transaction: %w", ErrOperationFailed, err)
	}
	s.logger.InfoContext(ctx, "Transaction updated", applog.FieldTransactionID, id, applog.FieldOperation, applog.OpUpdate)
	return nil
}

// Delete removes the record. Unknown ids succeed without effect.
func (s *TransactionService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("%w: delete transaction: %w", ErrOperationFailed, err)
	}
	s.logger.InfoContext(ctx, "Transaction deleted", applog.FieldTransactionID, id, applog.FieldOperation, applog.OpDelete)
	return nil
}
