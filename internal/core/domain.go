package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income  Kind = "income"
	Expense Kind = "expense"
)

type (
	// Kind tells whether a transaction adds to or subtracts from the balance.
	Kind string

	Transaction struct {
		ID         string          `json:"_id,omitempty"`
		Kind       Kind            `json:"type"`
		Category   string          `json:"category"`
		Amount     decimal.Decimal `json:"amount"`
		OccurredAt time.Time       `json:"date"`
		OwnerEmail string          `json:"userEmail"`
	}

	// TransactionPatch carries the fields of a partial update. Nil fields
	// are left untouched.
	TransactionPatch struct {
		Kind       *Kind
		Category   *string
		Amount     *decimal.Decimal
		OccurredAt *time.Time
		OwnerEmail *string
	}

	User struct {
		ID    string `json:"_id,omitempty"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}

	// BalanceChanged is emitted after a transaction has been stored.
	BalanceChanged struct {
		OwnerEmail    string    `json:"userEmail"`
		TransactionID string    `json:"transactionId"`
		Timestamp     time.Time `json:"timestamp"`
	}
)

var (
	ErrInvalidKind   = errors.New("invalid transaction type")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrEmptyOwner    = errors.New("empty owner email")
	ErrEmptyName     = errors.New("empty name")
	ErrEmptyEmail    = errors.New("empty email")
)

// ParseKind normalizes s and reports ErrInvalidKind for anything other
// than income or expense.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", ErrInvalidKind
	}
	return k, nil
}

func (k Kind) Valid() bool {
	return k == Income || k == Expense
}

func (k Kind) String() string {
	return string(k)
}

func (t Transaction) Validate() error {
	if !t.Kind.Valid() {
		return ErrInvalidKind
	}
	if !t.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(t.OwnerEmail) == "" {
		return ErrEmptyOwner
	}
	return nil
}

func (p TransactionPatch) Validate() error {
	if p.Kind != nil && !p.Kind.Valid() {
		return ErrInvalidKind
	}
	if p.Amount != nil && !p.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if p.OwnerEmail != nil && strings.TrimSpace(*p.OwnerEmail) == "" {
		return ErrEmptyOwner
	}
	return nil
}

// IsEmpty reports whether the patch would change nothing.
func (p TransactionPatch) IsEmpty() bool {
	return p.Kind == nil && p.Category == nil && p.Amount == nil &&
		p.OccurredAt == nil && p.OwnerEmail == nil
}

// Apply returns t with every supplied field of the patch replaced.
func (p TransactionPatch) Apply(t Transaction) Transaction {
	if p.Kind != nil {
		t.Kind = *p.Kind
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	if p.OccurredAt != nil {
		t.OccurredAt = *p.OccurredAt
	}
	if p.OwnerEmail != nil {
		t.OwnerEmail = *p.OwnerEmail
	}
	return t
}

func (u User) Validate() error {
	if strings.TrimSpace(u.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(u.Email) == "" {
		return ErrEmptyEmail
	}
	return nil
}
