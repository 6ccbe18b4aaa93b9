// Package testutil holds helpers for the Postgres integration tests. Every
// helper skips the calling test when TEST_DATABASE_URL is unset, so the unit
// suite runs without a database.
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // "pgx" driver for database/sql
	"github.com/pressly/goose/v3"

	"github.com/pkordes/fleetlog/migrations"
)

// DSNEnv names the variable holding the integration database URL.
const DSNEnv = "TEST_DATABASE_URL"

// RunMigrated is a TestMain body: it brings the test database up to the
// latest migration and then runs the package's tests, returning the exit
// code. Without DSNEnv it only runs the tests, which then skip themselves.
func RunMigrated(m *testing.M) int {
	dsn := os.Getenv(DSNEnv)
	if dsn == "" {
		return m.Run()
	}
	if err := migrateUp(dsn); err != nil {
		fmt.Fprintf(os.Stderr, "testutil: %v\n", err)
		return 1
	}
	return m.Run()
}

func migrateUp(dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer db.Close()

	provider, err := NewMigrationProvider(db)
	if err != nil {
		return err
	}
	if _, err := provider.Up(context.Background()); err != nil {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

// NewMigrationProvider returns a goose provider over the embedded schema.
func NewMigrationProvider(db *sql.DB) (*goose.Provider, error) {
	p, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return nil, fmt.Errorf("goose provider: %w", err)
	}
	return p, nil
}

// NewTx begins a transaction on the test database and rolls it back when the
// test ends, so repo tests never see each other's rows.
func NewTx(t *testing.T) pgx.Tx {
	t.Helper()
	ctx := context.Background()

	pool, err := pgxpool.New(ctx, requireDSN(t))
	if err != nil {
		t.Fatalf("testutil.NewTx: open pool: %v", err)
	}
	t.Cleanup(pool.Close)

	tx, err := pool.Begin(ctx)
	if err != nil {
		t.Fatalf("testutil.NewTx: begin: %v", err)
	}
	t.Cleanup(func() { _ = tx.Rollback(context.Background()) })
	return tx
}

// NewSQLDB opens a database/sql handle on the test database, for goose.
func NewSQLDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("pgx", requireDSN(t))
	if err != nil {
		t.Fatalf("testutil.NewSQLDB: open: %v", err)
	}
	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		t.Fatalf("testutil.NewSQLDB: ping: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func requireDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv(DSNEnv)
	if dsn == "" {
		t.Skip(DSNEnv + " not set; skipping integration test")
	}
	return dsn
}
