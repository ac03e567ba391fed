// Package storagetest holds the behaviour every storage.Store backend must
// share, runnable against any implementation.
package storagetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"budgetbuddy/internal/core"
	"budgetbuddy/internal/storage"
)

// Run exercises a fresh store returned by newStore for each subtest.
func Run(t *testing.T, newStore func(t *testing.T) storage.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("insert assigns id and list keeps insertion order", func(t *testing.T) {
		s := newStore(t)
		first := mustInsert(t, s, core.Income, "Salary", 1000, "u@example.com")
		mustInsert(t, s, core.Expense, "Food", 20, "other@example.com")
		second := mustInsert(t, s, core.Expense, "Rent", 700, "u@example.com")

		if first.ID == "" || second.ID == "" || first.ID == second.ID {
			t.Fatalf("expected distinct ids, got %q and %q", first.ID, second.ID)
		}

		got, err := s.ListTransactions(ctx, "u@example.com")
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(got) != 2 || got[0].ID != first.ID || got[1].ID != second.ID {
			t.Fatalf("unexpected list: %+v", got)
		}
		if got[1].Kind != core.Expense || got[1].Category != "Rent" || !got[1].Amount.Equal(decimal.NewFromInt(700)) {
			t.Fatalf("fields not round-tripped: %+v", got[1])
		}
		if !got[0].OccurredAt.Equal(first.OccurredAt) {
			t.Fatalf("occurredAt = %v, want %v", got[0].OccurredAt, first.OccurredAt)
		}
	})

	t.Run("list for unknown owner is empty", func(t *testing.T) {
		s := newStore(t)
		got, err := s.ListTransactions(ctx, "nobody@example.com")
		if err != nil || len(got) != 0 {
			t.Fatalf("expected empty list, got %v (err=%v)", got, err)
		}
	})

	t.Run("get missing returns ErrNotFound", func(t *testing.T) {
		s := newStore(t)
		if _, err := s.GetTransaction(ctx, "does-not-exist"); !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("update applies supplied fields only", func(t *testing.T) {
		s := newStore(t)
		tx := mustInsert(t, s, core.Expense, "Food", 100, "u@example.com")

		amount := decimal.RequireFromString("42.5")
		category := "Shopping"
		if err := s.UpdateTransaction(ctx, tx.ID, core.TransactionPatch{Amount: &amount, Category: &category}); err != nil {
			t.Fatalf("update: %v", err)
		}
		got, err := s.GetTransaction(ctx, tx.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if !got.Amount.Equal(amount) || got.Category != "Shopping" || got.Kind != core.Expense {
			t.Fatalf("unexpected record after update: %+v", got)
		}
	})

	t.Run("update on missing id is a no-op", func(t *testing.T) {
		s := newStore(t)
		tx := mustInsert(t, s, core.Expense, "Food", 100, "u@example.com")

		category := "Changed"
		if err := s.UpdateTransaction(ctx, "missing-id", core.TransactionPatch{Category: &category}); err != nil {
			t.Fatalf("update missing: %v", err)
		}
		got, _ := s.ListTransactions(ctx, "u@example.com")
		if len(got) != 1 || got[0].ID != tx.ID || got[0].Category != "Food" {
			t.Fatalf("store changed by update on missing id: %+v", got)
		}
	})

	t.Run("delete removes record and ignores missing ids", func(t *testing.T) {
		s := newStore(t)
		keep := mustInsert(t, s, core.Income, "Salary", 100, "u@example.com")
		drop := mustInsert(t, s, core.Expense, "Food", 10, "u@example.com")

		if err := s.DeleteTransaction(ctx, drop.ID); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if err := s.DeleteTransaction(ctx, "missing-id"); err != nil {
			t.Fatalf("delete missing: %v", err)
		}
		got, _ := s.ListTransactions(ctx, "u@example.com")
		if len(got) != 1 || got[0].ID != keep.ID {
			t.Fatalf("unexpected list after delete: %+v", got)
		}
	})

	t.Run("user insert is idempotent on email", func(t *testing.T) {
		s := newStore(t)
		created, err := s.InsertUserIfAbsent(ctx, core.User{Name: "Ann", Email: "ann@example.com"})
		if err != nil || !created {
			t.Fatalf("first insert: created=%v err=%v", created, err)
		}
		created, err = s.InsertUserIfAbsent(ctx, core.User{Name: "Ann Again", Email: "ann@example.com"})
		if err != nil || created {
			t.Fatalf("second insert: created=%v err=%v", created, err)
		}
		n, err := s.CountUsersByEmail(ctx, "ann@example.com")
		if err != nil || n != 1 {
			t.Fatalf("count = %d (err=%v), want 1", n, err)
		}
		u, err := s.FindUserByEmail(ctx, "ann@example.com")
		if err != nil || u == nil || u.Name != "Ann" || u.ID == "" {
			t.Fatalf("find: %+v (err=%v)", u, err)
		}
	})

	t.Run("find missing user returns nil", func(t *testing.T) {
		s := newStore(t)
		u, err := s.FindUserByEmail(ctx, "ghost@example.com")
		if err != nil || u != nil {
			t.Fatalf("expected nil user, got %+v (err=%v)", u, err)
		}
	})
}

func mustInsert(t *testing.T, s storage.Store, kind core.Kind, category string, amount int64, owner string) core.Transaction {
	t.Helper()
	tx, err := s.InsertTransaction(context.Background(), core.Transaction{
		Kind:       kind,
		Category:   category,
		Amount:     decimal.NewFromInt(amount),
		OccurredAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		OwnerEmail: owner,
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	return tx
}
