package repository

import (
	"database/sql"
	"testing"

	"eggtimer/internal/repository/db"
)

// newMemoryDB opens a migrated in-memory database for round-trip tests.
func newMemoryDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := db.InitDB(":memory:")
	if err != nil {
		t.Fatalf("init memory db: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}
