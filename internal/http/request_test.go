package http

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"budgetbuddy/internal/core"
)

func mustAmount(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestFlexTime(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{`"2024-05-01"`, "2024-05-01T00:00:00Z", false},
		{`"2024-05-01T10:30"`, "2024-05-01T10:30:00Z", false},
		{`"2024-05-01T10:30:00+02:00"`, "2024-05-01T08:30:00Z", false},
		{`"01/05/2024"`, "", true},
		{`12345`, "", true},
	}

	for _, tt := range tests {
		var f flexTime
		err := json.Unmarshal([]byte(tt.in), &f)
		if tt.wantErr {
			if err == nil {
				t.Errorf("%s: expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: %v", tt.in, err)
			continue
		}
		if got := f.UTC().Format("2006-01-02T15:04:05Z07:00"); got != tt.want {
			t.Errorf("%s parsed to %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestTransactionRequestToPatch(t *testing.T) {
	var req transactionRequest
	if err := json.Unmarshal([]byte(`{"type":" Income ","category":" Bonus "}`), &req); err != nil {
		t.Fatal(err)
	}
	p, err := req.toPatch()
	if err != nil {
		t.Fatal(err)
	}
	if p.Kind == nil || *p.Kind != core.Income {
		t.Errorf("kind = %v", p.Kind)
	}
	if p.Category == nil || *p.Category != "Bonus" {
		t.Errorf("category = %v", p.Category)
	}
	if p.Amount != nil || p.OccurredAt != nil || p.OwnerEmail != nil {
		t.Error("absent fields must stay nil")
	}

	req = transactionRequest{Amount: ptr(mustAmount(t, "0"))}
	if _, err := req.toPatch(); !errors.Is(err, core.ErrInvalidAmount) {
		t.Errorf("zero amount patch error = %v", err)
	}
}

func ptr[T any](v T) *T { return &v }
