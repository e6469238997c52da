// Package dbtest opens throwaway in-memory SQLite databases with the full
// migration set applied, for repository and service tests.
package dbtest

import (
	"testing"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/fittrack/fittrack/internal/db"
)

// Open returns a migrated in-memory database. A single connection is used
// because every new connection to :memory: would see its own empty database.
func Open(t testing.TB) *sqlx.DB {
	t.Helper()

	conn, err := sqlx.Connect("sqlite", ":memory:?_pragma=foreign_keys(1)")
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	conn.SetMaxOpenConns(1)

	err = db.RunMigrations(conn.DB, "sqlite")
	if err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = conn.Close()
	})

	return conn
}
