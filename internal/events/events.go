// Package events carries BalanceChanged notifications from the API to the
// alert worker. Queue is the in-process transport; internal/amqp provides
// the broker-backed one.
package events

import (
	"context"
	"errors"
	"sync"
	"time"

	"budgetbuddy/internal/core"
	applog "budgetbuddy/internal/log"
)

// drainTimeout bounds the delivery of buffered events at shutdown.
const drainTimeout = 10 * time.Second

var (
	// ErrQueueFull is returned when the in-process queue has no free slot.
	ErrQueueFull = errors.New("event queue full")
	ErrClosed    = errors.New("event queue closed")
)

// Publisher emits balance change events.
type Publisher interface {
	PublishBalanceChanged(ctx context.Context, evt core.BalanceChanged) error
}

// Handler processes one event.
type Handler func(ctx context.Context, evt core.BalanceChanged) error

// Queue is a bounded in-process publisher and consumer.
// Publishing never blocks the caller.
type Queue struct {
	ch     chan core.BalanceChanged
	logger *applog.Logger

	mu     sync.RWMutex
	closed bool
}

var _ Publisher = (*Queue)(nil)

func NewQueue(size int, logger *applog.Logger) *Queue {
	if size < 1 {
		size = 1
	}
	if logger == nil {
		logger = applog.Discard()
	}
	return &Queue{
		ch:     make(chan core.BalanceChanged, size),
		logger: logger.WithComponent(applog.ComponentEvents),
	}
}

func (q *Queue) PublishBalanceChanged(ctx context.Context, evt core.BalanceChanged) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrClosed
	}
	select {
	case q.ch <- evt:
		return nil
	default:
		return ErrQueueFull
	}
}

// Len reports the number of pending events.
func (q *Queue) Len() int {
	return len(q.ch)
}

// Run delivers events to handler until the queue is closed and drained,
// or ctx is cancelled. On cancellation Run closes the queue and delivers
// what is still buffered, with a detached context bounded by drainTimeout,
// before returning ctx.Err(). Handler errors are logged; the event is
// dropped.
func (q *Queue) Run(ctx context.Context, handler Handler) error {
	q.logger.InfoContext(ctx, "Started consuming balance events",
		applog.FieldOperation, applog.OpConsume, "capacity", cap(q.ch))
	for {
		// Cancellation wins over a ready event.
		if ctx.Err() != nil {
			q.drain(ctx, handler)
			return ctx.Err()
		}
		select {
		case <-ctx.Done():
			q.drain(ctx, handler)
			return ctx.Err()
		case evt, ok := <-q.ch:
			if !ok {
				return nil
			}
			q.deliver(ctx, handler, evt)
		}
	}
}

func (q *Queue) drain(ctx context.Context, handler Handler) {
	q.Close()
	pending := len(q.ch)
	q.logger.InfoContext(ctx, "Draining event queue",
		applog.FieldOperation, applog.OpShutdown, "pending", pending)
	if pending == 0 {
		return
	}

	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), drainTimeout)
	defer cancel()
	for evt := range q.ch {
		q.deliver(dctx, handler, evt)
	}
}

func (q *Queue) deliver(ctx context.Context, handler Handler, evt core.BalanceChanged) {
	if err := handler(ctx, evt); err != nil {
		q.logger.ErrorContext(ctx, "Failed to handle balance event",
			applog.FieldError, err,
			applog.FieldOperation, applog.OpConsume,
			applog.FieldOwnerEmail, evt.OwnerEmail,
			applog.FieldTransactionID, evt.TransactionID)
	}
}

// Close stops accepting events. Events already buffered are still
// delivered by Run.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		close(q.ch)
	}
}
