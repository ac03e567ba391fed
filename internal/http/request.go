package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"budgetbuddy/internal/core"
	"budgetbuddy/internal/services"
)

var errEmptyBody = errors.New("request body is empty")

// flexTime accepts RFC 3339 timestamps and plain YYYY-MM-DD dates, the
// two shapes browser date inputs produce.
type flexTime struct {
	time.Time
}

func (f *flexTime) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date must be a string")
	}
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			f.Time = t
			return nil
		}
	}
	return fmt.Errorf("invalid date %q", s)
}

// transactionRequest is the body of create and update. Pointers tell
// absent fields from zero values.
type transactionRequest struct {
	Type      *string          `json:"type"`
	Category  *string          `json:"category"`
	Amount    *decimal.Decimal `json:"amount"`
	Date      *flexTime        `json:"date"`
	UserEmail *string          `json:"userEmail"`
}

type userRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// decodeJSON reads a single JSON object into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return fmt.Errorf("malformed JSON: %w", err)
	}
	if dec.More() {
		return errors.New("malformed JSON: trailing data")
	}
	return nil
}

func (req transactionRequest) toNew() (services.NewTransaction, error) {
	var out services.NewTransaction
	if req.Type == nil {
		return out, core.ErrInvalidKind
	}
	kind, err := core.ParseKind(*req.Type)
	if err != nil {
		return out, err
	}
	if req.Amount == nil {
		return out, core.ErrInvalidAmount
	}
	if req.UserEmail == nil {
		return out, core.ErrEmptyOwner
	}

	out.Kind = kind
	out.Amount = *req.Amount
	out.OwnerEmail = *req.UserEmail
	if req.Category != nil {
		out.Category = *req.Category
	}
	if req.Date != nil {
		t := req.Date.Time
		out.OccurredAt = &t
	}
	return out, nil
}

func (req transactionRequest) toPatch() (core.TransactionPatch, error) {
	var p core.TransactionPatch
	if req.Type != nil {
		kind, err := core.ParseKind(*req.Type)
		if err != nil {
			return p, err
		}
		p.Kind = &kind
	}
	if req.Category != nil {
		c := strings.TrimSpace(*req.Category)
		p.Category = &c
	}
	p.Amount = req.Amount
	if req.Date != nil {
		t := req.Date.Time.UTC()
		p.OccurredAt = &t
	}
	if req.UserEmail != nil {
		e := strings.TrimSpace(*req.UserEmail)
		p.OwnerEmail = &e
	}
	return p, p.Validate()
}
