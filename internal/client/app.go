package client

import (
	"context"
	"errors"
	"strings"
	"time"

	"budgetbuddy/internal/core"
	applog "budgetbuddy/internal/log"
)

var (
	// ErrInvalidAmount rejects non-numeric or non-positive amounts before
	// anything is sent to the server.
	ErrInvalidAmount = errors.New("please enter a valid positive amount")
	ErrNoUser        = errors.New("no registered user")
)

// Backend is the subset of the REST API the application state needs.
type Backend interface {
	CreateTransaction(ctx context.Context, t core.Transaction) error
	ListTransactions(ctx context.Context, email string) ([]core.Transaction, error)
	UpdateTransaction(ctx context.Context, id string, upd TransactionUpdate) error
	DeleteTransaction(ctx context.Context, id string) error
	RegisterUser(ctx context.Context, name, email string) (string, error)
}

// Profiles persists the current user on the device.
type Profiles interface {
	Load() (*core.User, error)
	Save(u core.User) error
}

// Draft is an unsubmitted transaction as typed by the user.
type Draft struct {
	Kind       string
	Category   string
	Amount     string
	OccurredAt time.Time
}

// App holds the client-side state: the current user and the fetched
// transactions. Derived data is computed on demand from Transactions.
type App struct {
	backend  Backend
	profiles Profiles
	logger   *applog.Logger
	now      func() time.Time

	User         *core.User
	Transactions []core.Transaction
}

func NewApp(backend Backend, profiles Profiles, logger *applog.Logger) *App {
	if logger == nil {
		logger = applog.Discard()
	}
	return &App{
		backend:  backend,
		profiles: profiles,
		logger:   logger.WithComponent(applog.ComponentClient),
		now:      time.Now,
	}
}

// Load restores the stored user and fetches their transactions. With no
// stored user it returns nil and leaves User unset so the caller can ask
// for registration.
func (a *App) Load(ctx context.Context) error {
	u, err := a.profiles.Load()
	if err != nil {
		return err
	}
	if u == nil {
		return nil
	}
	a.User = u
	return a.Fetch(ctx)
}

// Register persists the user locally, registers it with the server and
// fetches its transactions.
func (a *App) Register(ctx context.Context, name, email string) (string, error) {
	u := core.User{Name: strings.TrimSpace(name), Email: strings.TrimSpace(email)}
	if err := u.Validate(); err != nil {
		return "", err
	}
	if err := a.profiles.Save(u); err != nil {
		return "", err
	}
	a.User = &u

	msg, err := a.backend.RegisterUser(ctx, u.Name, u.Email)
	if err != nil {
		a.diagnose(ctx, "Registration failed", applog.OpRegister, err)
		return "", err
	}
	return msg, a.Fetch(ctx)
}

// Fetch replaces the local list with the server's.
func (a *App) Fetch(ctx context.Context) error {
	if a.User == nil {
		return ErrNoUser
	}
	txs, err := a.backend.ListTransactions(ctx, a.User.Email)
	if err != nil {
		a.diagnose(ctx, "Fetching transactions failed", applog.OpList, err)
		return err
	}
	a.Transactions = txs
	return nil
}

// Add validates the draft, submits it and appends it to the local list
// without waiting for a re-fetch. The appended entry has no id.
func (a *App) Add(ctx context.Context, d Draft) (core.Transaction, error) {
	if a.User == nil {
		return core.Transaction{}, ErrNoUser
	}
	amount, err := core.ParseAmount(d.Amount)
	if err != nil {
		return core.Transaction{}, ErrInvalidAmount
	}
	kind, err := core.ParseKind(d.Kind)
	if err != nil {
		return core.Transaction{}, err
	}

	t := core.Transaction{
		Kind:       kind,
		Category:   strings.TrimSpace(d.Category),
		Amount:     amount,
		OccurredAt: d.OccurredAt,
		OwnerEmail: a.User.Email,
	}
	if t.OccurredAt.IsZero() {
		t.OccurredAt = a.now().UTC()
	}

	if err := a.backend.CreateTransaction(ctx, t); err != nil {
		a.diagnose(ctx, "Adding transaction failed", applog.OpCreate, err)
		return core.Transaction{}, err
	}
	a.Transactions = append(a.Transactions, t)
	return t, nil
}

// Update sends upd and refreshes the list.
func (a *App) Update(ctx context.Context, id string, upd TransactionUpdate) error {
	if err := a.backend.UpdateTransaction(ctx, id, upd); err != nil {
		a.diagnose(ctx, "Updating transaction failed", applog.OpUpdate, err)
		return err
	}
	if a.User == nil {
		return nil
	}
	return a.Fetch(ctx)
}

// Delete removes the transaction on the server and from the local list.
func (a *App) Delete(ctx context.Context, id string) error {
	if err := a.backend.DeleteTransaction(ctx, id); err != nil {
		a.diagnose(ctx, "Deleting transaction failed", applog.OpDelete, err)
		return err
	}
	kept := a.Transactions[:0]
	for _, t := range a.Transactions {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	a.Transactions = kept
	return nil
}

// Summary derives totals and the expense breakdown from the local list.
func (a *App) Summary() core.Summary {
	return core.Summarize(a.Transactions)
}

func (a *App) diagnose(ctx context.Context, msg, op string, err error) {
	a.logger.WarnContext(ctx, msg, applog.FieldOperation, op, applog.FieldError, err)
}
