package testutil

import (
	"database/sql"
	"testing"

	"github.com/alexanderramin/tally/internal/db"
	"github.com/alexanderramin/tally/internal/repository"
)

// NewTestDB opens a migrated in-memory SQLite database that is closed when
// the test ends.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.OpenDB(db.MemoryPath)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		database.Close()
	})
	return database
}

// NewTestSQLiteStore is a Store over a fresh NewTestDB.
func NewTestSQLiteStore(t *testing.T) *repository.SQLiteStore {
	t.Helper()
	return repository.NewSQLiteStore(NewTestDB(t))
}
