package storage

import (
	"context"
	"errors"

	"budgetbuddy/internal/core"
)

// ErrNotFound is returned by lookups that target a missing record.
// Updates and deletes never return it.
var ErrNotFound = errors.New("record not found")

// Ports implemented by every record store backend.
type (
	TransactionStore interface {
		// InsertTransaction stores t and returns it with its assigned ID.
		InsertTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
		// ListTransactions returns the owner's transactions in insertion order.
		ListTransactions(ctx context.Context, ownerEmail string) ([]core.Transaction, error)
		GetTransaction(ctx context.Context, id string) (core.Transaction, error)
		// UpdateTransaction applies the patch; a missing id is a no-op.
		UpdateTransaction(ctx context.Context, id string, patch core.TransactionPatch) error
		// DeleteTransaction removes the record; a missing id is a no-op.
		DeleteTransaction(ctx context.Context, id string) error
	}

	UserStore interface {
		// InsertUserIfAbsent stores u unless a user with the same email
		// exists. created reports whether a record was written.
		InsertUserIfAbsent(ctx context.Context, u core.User) (created bool, err error)
		// FindUserByEmail returns nil, nil when no user matches.
		FindUserByEmail(ctx context.Context, email string) (*core.User, error)
		CountUsersByEmail(ctx context.Context, email string) (int, error)
	}

	// Store is the full record store used by the API and the worker.
	Store interface {
		TransactionStore
		UserStore
		Close() error
	}
)
