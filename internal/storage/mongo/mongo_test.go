package mongo

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"budgetbuddy/internal/core"
)

func rawAmount(t *testing.T, v any) bson.RawValue {
	t.Helper()
	b, err := bson.Marshal(bson.M{"amount": v})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return bson.Raw(b).Lookup("amount")
}

func TestDecodeAmount(t *testing.T) {
	d128, _ := primitive.ParseDecimal128("19.99")
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"decimal128", d128, "19.99"},
		{"double from legacy writer", 1000.0, "1000"},
		{"int32", int32(7), "7"},
		{"int64", int64(500), "500"},
		{"string", "12.5", "12.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeAmount(rawAmount(t, tt.in))
			if err != nil {
				t.Fatalf("decodeAmount: %v", err)
			}
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Fatalf("got %s, want %s", got, tt.want)
			}
		})
	}

	if got, err := decodeAmount(bson.RawValue{}); err != nil || !got.IsZero() {
		t.Fatalf("missing amount should decode to zero, got %s (err=%v)", got, err)
	}
	if _, err := decodeAmount(rawAmount(t, true)); err == nil {
		t.Fatal("expected error for boolean amount")
	}
}

func TestPatchToSet(t *testing.T) {
	kind := core.Income
	amount := decimal.RequireFromString("250.5")
	when := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	set, err := patchToSet(core.TransactionPatch{Kind: &kind, Amount: &amount, OccurredAt: &when})
	if err != nil {
		t.Fatalf("patchToSet: %v", err)
	}
	if len(set) != 3 {
		t.Fatalf("unexpected set: %v", set)
	}
	if set["type"] != "income" {
		t.Fatalf("type = %v", set["type"])
	}
	if d, ok := set["amount"].(primitive.Decimal128); !ok || d.String() != "250.5" {
		t.Fatalf("amount = %#v", set["amount"])
	}
	if _, ok := set["category"]; ok {
		t.Fatal("category must not be set when absent from the patch")
	}

	empty, err := patchToSet(core.TransactionPatch{})
	if err != nil || len(empty) != 0 {
		t.Fatalf("empty patch produced %v (err=%v)", empty, err)
	}
}
