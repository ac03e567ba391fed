package services

import (
	"context"
	"fmt"
	"strings"

	"budgetbuddy/internal/core"
	applog "budgetbuddy/internal/log"
	"budgetbuddy/internal/storage"
)

// RegisterResult tells whether Register created a user.
type RegisterResult int

const (
	AlreadyExists RegisterResult = iota
	Registered
)

// Message is the text the API returns for the result.
func (r RegisterResult) Message() string {
	if r == Registered {
		return "User Registered"
	}
	return "User already exists"
}

type UserService struct {
	store  storage.UserStore
	logger *applog.Logger
}

func NewUserService(store storage.UserStore, logger *applog.Logger) *UserService {
	if logger == nil {
		logger = applog.Discard()
	}
	return &UserService{store: store, logger: logger.WithComponent(applog.ComponentUser)}
}

// Register creates the user unless the email is already known. Concurrent
// registrations of one email create exactly one record.
func (s *UserService) Register(ctx context.Context, name, email string) (RegisterResult, error) {
	u := core.User{Name: strings.TrimSpace(name), Email: strings.TrimSpace(email)}
	if err := u.Validate(); err != nil {
		return AlreadyExists, err
	}

	created, err := s.store.InsertUserIfAbsent(ctx, u)
	if err != nil {
		return AlreadyExists, fmt.Errorf("%w: register user: %w", ErrOperationFailed, err)
	}
	if !created {
		return AlreadyExists, nil
	}
	s.logger.InfoContext(ctx, "User registered", applog.FieldOwnerEmail, u.Email, applog.FieldOperation, applog.OpRegister)
	return Registered, nil
}

// GetByEmail returns nil when no user has the email.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*core.User, error) {
	u, err := s.store.FindUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, fmt.Errorf("%w: find user: %w", ErrOperationFailed, err)
	}
	return u, nil
}
