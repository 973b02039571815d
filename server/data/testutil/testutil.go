package testutil

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/honganh1206/openclawd/server/db"
)

func CreateTestDB(t *testing.T, schemas ...string) *sql.DB {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "openclawd_test_*")
	if err != nil {
		t.Fatalf("Failed to create temp directory: %v", err)
	}

	t.Cleanup(func() {
		os.RemoveAll(tempDir)
	})

	testDBPath := filepath.Join(tempDir, "test.db")

	db, err := db.OpenDB(db.DefaultConfig(testDBPath), schemas...)
	if err != nil {
		t.Fatalf("Failed to initialize test database: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}
