package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	// Database drivers registered by side effect.
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/jonwraymond/poolops/ledger"
	"github.com/jonwraymond/poolops/pool"
)

// Compile-time interface checks.
var (
	_ pool.Store    = (*Store)(nil)
	_ ledger.Writer = (*Store)(nil)
	_ ledger.Reader = (*Store)(nil)
)

// Dialect selects per-database SQL for the few statements that differ.
type Dialect int

const (
	// DialectPostgres uses FOR UPDATE SKIP LOCKED claims.
	DialectPostgres Dialect = iota
	// DialectSQLite uses optimistic compare-and-swap claims.
	DialectSQLite
)

func (d Dialect) String() string {
	switch d {
	case DialectPostgres:
		return "postgres"
	case DialectSQLite:
		return "sqlite"
	default:
		return "unknown"
	}
}

// ErrUnsupportedDriver is returned by Open for drivers other than postgres
// and sqlite3.
var ErrUnsupportedDriver = errors.New("store: unsupported driver")

// Store wraps the shared database. It implements pool.Store, ledger.Writer,
// and ledger.Reader.
type Store struct {
	db      *sqlx.DB
	dialect Dialect
}

// Open connects using the given database/sql driver name and DSN.
func Open(driver, dsn string) (*Store, error) {
	var dialect Dialect
	switch driver {
	case "postgres":
		dialect = DialectPostgres
	case "sqlite3":
		dialect = DialectSQLite
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", driver, err)
	}

	return &Store{db: db, dialect: dialect}, nil
}

// OpenPostgres connects to a Postgres database.
func OpenPostgres(dsn string) (*Store, error) {
	return Open("postgres", dsn)
}

// OpenSQLite opens (creating if needed) a SQLite database at path. Foreign
// keys are enabled and writers wait out short lock contention instead of
// failing immediately.
func OpenSQLite(path string) (*Store, error) {
	return Open("sqlite3", fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path))
}

// Dialect returns the store's SQL dialect.
func (s *Store) Dialect() Dialect {
	return s.dialect
}

// DB exposes the underlying handle for host applications that need it.
func (s *Store) DB() *sqlx.DB {
	return s.db
}

// Ping verifies the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate bootstraps the schema with idempotent CREATE IF NOT EXISTS
// statements. Full migration tooling is the host application's concern.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range schemaFor(s.dialect) {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("store: migrate: %w", err)
		}
	}
	return nil
}
