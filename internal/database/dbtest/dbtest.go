// Package dbtest opens throwaway SQLite databases for tests.
package dbtest

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"techcrew/internal/database"
)

// New returns a fresh in-memory database with the schema and default
// categories in place. It is closed when the test ends.
func New(tb testing.TB) *bun.DB {
	tb.Helper()
	db, err := database.OpenSQLite("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}
	tb.Cleanup(func() { db.Close() })

	if err := database.CreateSchema(context.Background(), db); err != nil {
		tb.Fatalf("create schema: %v", err)
	}
	return db
}
