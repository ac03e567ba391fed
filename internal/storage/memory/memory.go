package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"budgetbuddy/internal/core"
	"budgetbuddy/internal/storage"
)

// Store keeps records in process memory. Slices preserve insertion order.
type Store struct {
	mu    sync.Mutex
	txs   []core.Transaction
	users []core.User
}

var _ storage.Store = (*Store)(nil)

func New() *Store {
	return &Store{}
}

// Seed preloads records, assigning IDs where missing.
func (s *Store) Seed(users []core.User, txs []core.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range users {
		if u.ID == "" {
			u.ID = uuid.NewString()
		}
		s.users = append(s.users, u)
	}
	for _, t := range txs {
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		s.txs = append(s.txs, t)
	}
}

func (s *Store) InsertTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	t.ID = uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txs = append(s.txs, t)
	return t, nil
}

func (s *Store) ListTransactions(_ context.Context, ownerEmail string) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []core.Transaction{}
	for _, t := range s.txs {
		if t.OwnerEmail == ownerEmail {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *Store) GetTransaction(_ context.Context, id string) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		return s.txs[i], nil
	}
	return core.Transaction{}, storage.ErrNotFound
}

func (s *Store) UpdateTransaction(_ context.Context, id string, patch core.TransactionPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		s.txs[i] = patch.Apply(s.txs[i])
	}
	return nil
}

func (s *Store) DeleteTransaction(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		s.txs = append(s.txs[:i], s.txs[i+1:]...)
	}
	return nil
}

func (s *Store) InsertUserIfAbsent(_ context.Context, u core.User) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return false, nil
		}
	}
	u.ID = uuid.NewString()
	s.users = append(s.users, u)
	return true, nil
}

func (s *Store) FindUserByEmail(_ context.Context, email string) (*core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			found := u
			return &found, nil
		}
	}
	return nil, nil
}

func (s *Store) CountUsersByEmail(_ context.Context, email string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, u := range s.users {
		if u.Email == email {
			n++
		}
	}
	return n, nil
}

func (s *Store) Close() error { return nil }

// indexOf must be called with mu held.
func (s *Store) indexOf(id string) int {
	for i, t := range s.txs {
		if t.ID == id {
			return i
		}
	}
	return -1
}
