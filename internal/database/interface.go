package database

import (
	"context"
	"fmt"

	"github.com/remedyhq/remedy-agent/internal/config"
)

// Querier is the query surface shared by a live connection and an open
// transaction. All row scanning is driven by `db:` struct tags.
type Querier interface {
	// Select executes a query and scans rows into dest (slice pointer).
	Select(ctx context.Context, dest interface{}, query string, args ...interface{}) error

	// Get executes a query expected to return a single row and scans into dest.
	Get(ctx context.Context, dest interface{}, query string, args ...interface{}) error

	// Exec executes a statement that returns no rows.
	Exec(ctx context.Context, query string, args ...interface{}) error

	// Insert inserts a struct-tagged record into table.
	Insert(ctx context.Context, table string, record interface{}) error
}

// Tx is one pipeline job's transaction scope. The pipeline commits at its
// checkpoints and rolls back entirely on unhandled failure.
type Tx interface {
	Querier

	Commit() error
	Rollback() error
}

// DB is the storage interface used throughout remedy.
// Implementations exist for SQLite (default) and MySQL.
type DB interface {
	Querier

	// Begin opens a new transaction scope.
	Begin(ctx context.Context) (Tx, error)

	// Migrate applies pending schema migrations in order.
	Migrate(ctx context.Context) error

	// Ping verifies the database connection is alive.
	Ping(ctx context.Context) error

	// Close releases the database connection.
	Close() error

	// Driver returns the backend name: "sqlite" or "mysql".
	Driver() string
}

// New returns a DB implementation matching cfg.Driver.
// SQLite is the default when driver is empty or unrecognised.
func New(cfg config.DatabaseConfig) (DB, error) {
	switch cfg.Driver {
	case "mysql":
		return NewMySQL(cfg)
	case "sqlite", "sqlite3", "":
		return NewSQLite(cfg)
	default:
		return nil, fmt.Errorf("unsupported database driver %q (supported: sqlite, mysql)", cfg.Driver)
	}
}
