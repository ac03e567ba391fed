package google

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"budgetbuddy/internal/core"
)

func TestTransactionRow(t *testing.T) {
	tx := core.Transaction{
		ID:         "t1",
		Kind:       core.Expense,
		Category:   "Food",
		Amount:     decimal.RequireFromString("12.5"),
		OccurredAt: time.Date(2024, 3, 9, 23, 30, 0, 0, time.UTC),
		OwnerEmail: "u@example.com",
	}

	row := transactionRow(tx)
	want := []any{"2024-03-09", "expense", "Food", "12.50", "u@example.com", "t1"}
	if len(row) != len(want) {
		t.Fatalf("row has %d columns, want %d", len(row), len(want))
	}
	for i := range want {
		if row[i] != want[i] {
			t.Errorf("column %d = %v, want %v", i, row[i], want[i])
		}
	}
}

func TestServiceAccountCredentials(t *testing.T) {
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", "")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_FILE", "")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")

	if _, err := serviceAccountCredentials(); err == nil {
		t.Error("expected error without credentials")
	}

	t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", `{"type":"service_account"}`)
	got, err := serviceAccountCredentials()
	if err != nil || string(got) != `{"type":"service_account"}` {
		t.Errorf("serviceAccountCredentials() = %s, %v", got, err)
	}
}

func TestNewRequiresSpreadsheetID(t *testing.T) {
	if _, err := New(context.Background(), " ", "Transactions", nil); err == nil {
		t.Error("expected error for empty spreadsheet id")
	}
}
