package core

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{"income": Income, " Expense ": Expense, "INCOME": Income} {
		got, err := ParseKind(in)
		if err != nil || got != want {
			t.Fatalf("ParseKind(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseKind("transfer"); !errors.Is(err, ErrInvalidKind) {
		t.Fatalf("expected ErrInvalidKind, got %v", err)
	}
}

func TestTransactionValidate(t *testing.T) {
	valid := Transaction{Kind: Expense, Category: "Food", Amount: decimal.NewFromInt(10), OwnerEmail: "a@b.c"}
	tests := []struct {
		name string
		mod  func(*Transaction)
		want error
	}{
		{"valid", func(*Transaction) {}, nil},
		{"unknown kind", func(tx *Transaction) { tx.Kind = "gift" }, ErrInvalidKind},
		{"zero amount", func(tx *Transaction) { tx.Amount = decimal.Zero }, ErrInvalidAmount},
		{"negative amount", func(tx *Transaction) { tx.Amount = decimal.NewFromInt(-5) }, ErrInvalidAmount},
		{"missing owner", func(tx *Transaction) { tx.OwnerEmail = "  " }, ErrEmptyOwner},
		{"empty category allowed", func(tx *Transaction) { tx.Category = "" }, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := valid
			tt.mod(&tx)
			if err := tx.Validate(); !errors.Is(err, tt.want) {
				t.Fatalf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestTransactionPatch(t *testing.T) {
	base := Transaction{ID: "1", Kind: Expense, Category: "Food", Amount: decimal.NewFromInt(10), OwnerEmail: "a@b.c"}

	if !(TransactionPatch{}).IsEmpty() {
		t.Fatal("zero patch should be empty")
	}

	cat := "Rent"
	amt := decimal.NewFromInt(500)
	when := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	p := TransactionPatch{Category: &cat, Amount: &amt, OccurredAt: &when}
	if p.IsEmpty() {
		t.Fatal("patch with fields should not be empty")
	}
	got := p.Apply(base)
	if got.Category != "Rent" || !got.Amount.Equal(amt) || !got.OccurredAt.Equal(when) {
		t.Fatalf("patch not applied: %+v", got)
	}
	if got.ID != "1" || got.Kind != Expense || got.OwnerEmail != "a@b.c" {
		t.Fatalf("untouched fields changed: %+v", got)
	}

	bad := Kind("loan")
	if err := (TransactionPatch{Kind: &bad}).Validate(); !errors.Is(err, ErrInvalidKind) {
		t.Fatalf("expected ErrInvalidKind, got %v", err)
	}
	neg := decimal.NewFromInt(-1)
	if err := (TransactionPatch{Amount: &neg}).Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestUserValidate(t *testing.T) {
	if err := (User{Name: "Ann", Email: "ann@example.com"}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := (User{Email: "ann@example.com"}).Validate(); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
	if err := (User{Name: "Ann"}).Validate(); !errors.Is(err, ErrEmptyEmail) {
		t.Fatalf("expected ErrEmptyEmail, got %v", err)
	}
}
