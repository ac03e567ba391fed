package memory

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"budgetbuddy/internal/core"
	"budgetbuddy/internal/storage"
	"budgetbuddy/internal/storage/storagetest"
)

func TestMemoryStoreContract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Store { return New() })
}

func TestSeedAssignsIDs(t *testing.T) {
	s := New()
	s.Seed(
		[]core.User{{Name: "Ann", Email: "ann@example.com"}},
		[]core.Transaction{{Kind: core.Income, Category: "Salary", Amount: decimal.NewFromInt(1), OwnerEmail: "ann@example.com"}},
	)

	txs, _ := s.ListTransactions(context.Background(), "ann@example.com")
	if len(txs) != 1 || txs[0].ID == "" {
		t.Fatalf("unexpected seeded transactions: %+v", txs)
	}
	u, _ := s.FindUserByEmail(context.Background(), "ann@example.com")
	if u == nil || u.ID == "" {
		t.Fatalf("unexpected seeded user: %+v", u)
	}
}

func TestListReturnsCopy(t *testing.T) {
	s := New()
	_, _ = s.InsertTransaction(context.Background(), core.Transaction{Kind: core.Income, Amount: decimal.NewFromInt(5), OwnerEmail: "a@b.c"})

	txs, _ := s.ListTransactions(context.Background(), "a@b.c")
	txs[0].Category = "mutated"

	again, _ := s.ListTransactions(context.Background(), "a@b.c")
	if again[0].Category == "mutated" {
		t.Fatal("list must not expose internal storage")
	}
}
