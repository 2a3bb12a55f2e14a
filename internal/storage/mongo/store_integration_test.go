package mongo

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hongminglow/campuslearn-be/internal/storage/storagetest"
)

// TestStoreIntegration runs the storage contract against a live MongoDB.
func TestStoreIntegration(t *testing.T) {
	if os.Getenv("RUN_MONGO_INTEGRATION") != "true" {
		t.Skip("set RUN_MONGO_INTEGRATION=true to run this integration test")
	}
	storagetest.LoadDotEnv()

	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Fatal("MONGO_URI is required")
	}
	database := os.Getenv("MONGO_DATABASE")
	if database == "" {
		database = "campuslearn_test"
	}

	ctx := context.Background()
	store, err := NewStore(ctx, uri, database)
	require.NoError(t, err)
	defer store.Close(ctx)

	storagetest.Run(t, store)
}
