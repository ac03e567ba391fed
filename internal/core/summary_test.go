package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func tx(kind Kind, category string, amount int64) Transaction {
	return Transaction{Kind: kind, Category: category, Amount: decimal.NewFromInt(amount), OwnerEmail: "u@example.com"}
}

func TestComputeBalance(t *testing.T) {
	tests := []struct {
		name string
		txs  []Transaction
		want int64
	}{
		{"empty", nil, 0},
		{"income and expense", []Transaction{tx(Income, "Salary", 1000), tx(Expense, "Rent", 700)}, 300},
		{"income only", []Transaction{tx(Income, "Salary", 10000)}, 10000},
		{"overspent", []Transaction{tx(Expense, "Food", 50)}, -50},
		{"unknown kind ignored", []Transaction{tx(Income, "Salary", 100), tx("loan", "Bank", 999)}, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeBalance(tt.txs)
			if !got.Balance.Equal(decimal.NewFromInt(tt.want)) {
				t.Fatalf("balance = %s, want %d", got.Balance, tt.want)
			}
		})
	}
}

func TestSummarizeCategoryBreakdown(t *testing.T) {
	s := Summarize([]Transaction{
		tx(Expense, "Food", 100),
		tx(Expense, "Food", 50),
		tx(Expense, "Rent", 500),
		tx(Income, "Salary", 2000),
	})

	if !s.Expense.Equal(decimal.NewFromInt(650)) {
		t.Fatalf("total expense = %s, want 650", s.Expense)
	}
	if !s.Income.Equal(decimal.NewFromInt(2000)) {
		t.Fatalf("total income = %s, want 2000", s.Income)
	}

	b := s.Breakdown()
	if len(b) != 2 {
		t.Fatalf("breakdown = %v, want 2 categories", b)
	}
	if !b["Food"].Equal(decimal.NewFromInt(150)) || !b["Rent"].Equal(decimal.NewFromInt(500)) {
		t.Fatalf("breakdown = %v, want Food:150 Rent:500", b)
	}
	if _, ok := b["Salary"]; ok {
		t.Fatal("income categories must not appear in the breakdown")
	}

	if s.ByCategory[0].Name != "Rent" || s.ByCategory[1].Name != "Food" {
		t.Fatalf("unexpected order: %+v", s.ByCategory)
	}
	if s.ByCategory[0].Percent != 76.92 {
		t.Fatalf("Rent percent = %v, want 76.92", s.ByCategory[0].Percent)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if len(s.ByCategory) != 0 || !s.Balance.IsZero() {
		t.Fatalf("unexpected summary: %+v", s)
	}
}
