package client

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"budgetbuddy/internal/core"
)

func TestProfileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "budgetbuddy", "localstorage.json")
	s := NewProfileStore(path)

	u, err := s.Load()
	if err != nil || u != nil {
		t.Fatalf("Load on missing file = %v, %v", u, err)
	}

	if err := s.Save(core.User{ID: "ignored", Name: "Ada", Email: "ada@example.com"}); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), `"budgetbuddy.user"`) || strings.Contains(string(b), "ignored") {
		t.Errorf("file content = %s", b)
	}

	u, err = NewProfileStore(path).Load()
	if err != nil || u == nil || u.Name != "Ada" || u.Email != "ada@example.com" {
		t.Fatalf("reload = %+v, %v", u, err)
	}

	if err := s.Clear(); err != nil {
		t.Fatal(err)
	}
	if u, _ := s.Load(); u != nil {
		t.Errorf("after Clear = %+v", u)
	}
}

func TestProfileStorePreservesOtherKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "localstorage.json")
	if err := os.WriteFile(path, []byte(`{"theme":"dark"}`), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := NewProfileStore(path).Save(core.User{Name: "Ada", Email: "ada@example.com"}); err != nil {
		t.Fatal(err)
	}
	b, _ := os.ReadFile(path)
	if !strings.Contains(string(b), `"theme": "dark"`) {
		t.Errorf("other keys lost: %s", b)
	}
}

func TestProfileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "localstorage.json")
	if err := os.WriteFile(path, []byte(`{not json`), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := NewProfileStore(path).Load(); err == nil {
		t.Fatal("expected parse error")
	}
}
