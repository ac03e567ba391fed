package storage_test

import (
	"path/filepath"
	"testing"

	"budgetbuddy/internal/storage"
	"budgetbuddy/internal/storage/storagetest"
)

func TestSQLiteRepositoryContract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Store {
		repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "budgetbuddy.db"))
		if err != nil {
			t.Fatalf("NewSQLiteRepository: %v", err)
		}
		t.Cleanup(func() { repo.Close() })
		return repo
	})
}

func TestSQLiteRepositoryReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "budgetbuddy.db")
	repo, err := storage.NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	repo.Close()

	repo, err = storage.NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("reopen with migrations already applied: %v", err)
	}
	repo.Close()
}
