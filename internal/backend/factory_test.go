package backend

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"budgetbuddy/internal/config"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr string
	}{
		{"memory", Config{Type: MemoryBackend}, ""},
		{"sqlite", Config{Type: SQLiteBackend, SQLiteDBPath: "x.db"}, ""},
		{"sqlite without path", Config{Type: SQLiteBackend}, "SQLite database path is required"},
		{"mongo without uri", Config{Type: MongoBackend, MongoDatabase: "db"}, "MongoDB URI is required"},
		{"mongo without database", Config{Type: MongoBackend, MongoURI: "mongodb://localhost"}, "MongoDB database name is required"},
		{"unknown", Config{Type: "sheets"}, "invalid backend type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
	if _, err := FromAppConfig(&config.Config{DataBackend: "nope"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}
	cfg, err := FromAppConfig(&config.Config{DataBackend: "sqlite", SQLiteDBPath: "a.db"})
	if err != nil || cfg.Type != SQLiteBackend || cfg.SQLiteDBPath != "a.db" {
		t.Fatalf("unexpected config %+v (err=%v)", cfg, err)
	}
}

func TestCreateBackend(t *testing.T) {
	f := NewFactory(nil)
	ctx := context.Background()

	for _, cfg := range []Config{
		{Type: MemoryBackend},
		{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(t.TempDir(), "bb.db")},
	} {
		res, err := f.CreateBackend(ctx, cfg)
		if err != nil {
			t.Fatalf("%s: %v", cfg.Type, err)
		}
		if res.Store == nil {
			t.Fatalf("%s: nil store", cfg.Type)
		}
		if err := res.Cleanup(); err != nil {
			t.Fatalf("%s cleanup: %v", cfg.Type, err)
		}
	}

	if _, err := f.CreateBackend(ctx, Config{Type: "bogus"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}
