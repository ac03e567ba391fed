//go:build integration

package mongo

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"budgetbuddy/internal/storage"
	"budgetbuddy/internal/storage/storagetest"
)

// Run with: MONGO_URI=mongodb://localhost:27017 go test -tags=integration ./internal/storage/mongo
func TestIntegration_MongoStoreContract(t *testing.T) {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI not set, skipping integration test")
	}

	storagetest.Run(t, func(t *testing.T) storage.Store {
		ctx := context.Background()
		dbName := fmt.Sprintf("budgetbuddy_test_%d", time.Now().UnixNano())
		s, err := New(ctx, uri, dbName)
		if err != nil {
			t.Fatalf("connect: %v", err)
		}
		t.Cleanup(func() {
			_ = s.client.Database(dbName).Drop(context.Background())
			_ = s.Close()
		})
		return s
	})
}
