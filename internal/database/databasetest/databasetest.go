// Package databasetest provides a migrated SQLite store for tests.
package databasetest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/anuvataru/jewelry-catalog/internal/database"
)

// New returns a freshly migrated SQLite database in t's temp dir.
func New(t testing.TB) *database.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "jewelry.db")
	if err := database.MigrateUp(database.SQLite, path); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	db, err := database.Open(context.Background(), database.SQLite, path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}
