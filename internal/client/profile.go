package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"budgetbuddy/internal/core"
)

// ProfileKey is the local storage key holding the registered user.
const ProfileKey = "budgetbuddy.user"

// ProfileStore is a small key/value file on the device. Only the profile
// key is used; other keys found in the file are preserved.
type ProfileStore struct {
	path string
}

// DefaultProfilePath returns <user config dir>/budgetbuddy/localstorage.json.
func DefaultProfilePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "budgetbuddy", "localstorage.json"), nil
}

func NewProfileStore(path string) *ProfileStore {
	return &ProfileStore{path: path}
}

func (s *ProfileStore) Path() string { return s.path }

// Load returns the stored user, or nil when none has been saved.
func (s *ProfileStore) Load() (*core.User, error) {
	entries, err := s.read()
	if err != nil {
		return nil, err
	}
	raw, ok := entries[ProfileKey]
	if !ok {
		return nil, nil
	}
	var u core.User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, fmt.Errorf("decode stored profile: %w", err)
	}
	return &u, nil
}

// Save stores {name, email} under ProfileKey.
func (s *ProfileStore) Save(u core.User) error {
	entries, err := s.read()
	if err != nil {
		return err
	}
	raw, err := json.Marshal(struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}{u.Name, u.Email})
	if err != nil {
		return err
	}
	entries[ProfileKey] = raw
	return s.write(entries)
}

// Clear forgets the stored user.
func (s *ProfileStore) Clear() error {
	entries, err := s.read()
	if err != nil {
		return err
	}
	if _, ok := entries[ProfileKey]; !ok {
		return nil
	}
	delete(entries, ProfileKey)
	return s.write(entries)
}

func (s *ProfileStore) read() (map[string]json.RawMessage, error) {
	entries := make(map[string]json.RawMessage)
	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return entries, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	if len(b) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(b, &entries); err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}
	return entries, nil
}

// write replaces the file atomically.
func (s *ProfileStore) write(entries map[string]json.RawMessage) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create profile dir: %w", err)
	}
	b, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".localstorage-*")
	if err != nil {
		return fmt.Errorf("write profile: %w", err)
	}
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write profile: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write profile: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write profile: %w", err)
	}
	return nil
}
