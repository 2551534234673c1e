package testutil

import (
	"testing"

	"github.com/GustavoCaso/spendtrace/internal/config"
	"github.com/GustavoCaso/spendtrace/internal/storage"
	"github.com/GustavoCaso/spendtrace/internal/storage/sqlite"
)

// SetupTestStorage returns a migrated in-memory storage closed at test cleanup.
func SetupTestStorage(t *testing.T) storage.Storage {
	t.Helper()

	stor, err := sqlite.New(config.DBConfig{Source: ":memory:"})
	if err != nil {
		t.Fatalf("Failed to open test storage: %v", err)
	}

	err = stor.ApplyMigrations(t.Context(), TestLogger(t))
	if err != nil {
		t.Fatalf("Failed to apply migrations: %v", err)
	}

	t.Cleanup(func() {
		if err := stor.Close(); err != nil {
			t.Errorf("Failed to close test storage: %v", err)
		}
	})

	return stor
}
