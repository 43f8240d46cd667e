// Package testdb provides helpers for tests that run against a real
// PostgreSQL database. Tests using it skip themselves when no database
// URL is configured, so the unit test suite stays runnable without
// external services.
package testdb

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// Environment variables checked for the test database URL, in order.
var urlEnvVars = []string{
	"LERNWELT_TEST_DB_URL",
	"DATABASE_URL",
}

var (
	migrateOnce sync.Once
	migrateErr  error
)

// URL returns the configured test database URL, or the empty string
// when none is set.
func URL() string {
	for _, name := range urlEnvVars {
		if value := os.Getenv(name); value != "" {
			return value
		}
	}
	return ""
}

// Get opens a connection to the test database and ensures migrations
// are applied. Tests are skipped when no database URL is configured.
func Get(t *testing.T) *sql.DB {
	t.Helper()

	dbURL := URL()
	if dbURL == "" {
		t.Skip("no test database configured, set LERNWELT_TEST_DB_URL or DATABASE_URL")
	}

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("failed to close test database: %v", err)
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		t.Fatalf("failed to ping test database: %v", err)
	}

	migrateOnce.Do(func() {
		migrateErr = applyMigrations(db)
	})
	if migrateErr != nil {
		t.Fatalf("failed to apply migrations: %v", migrateErr)
	}

	return db
}

// WithTx runs fn inside a transaction that is rolled back afterwards,
// so tests never leave data behind and can run in parallel.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("failed to begin transaction: %v", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			t.Errorf("failed to roll back transaction: %v", err)
		}
	}()

	fn(t, tx)
}

// applyMigrations runs the goose migrations from the repository's
// migrations directory.
func applyMigrations(db *sql.DB) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.Up(db, migrationsDir())
}

// migrationsDir locates the migrations directory relative to this
// source file, so tests work regardless of the package they run from.
func migrationsDir() string {
	_, thisFile, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(thisFile), "..", "..", "migrations")
}
