// Package types contains the core database interface definitions of the SQL layer.
// These interfaces are separate from the main database package to avoid import cycles
// and to make them easily accessible for mocking and testing.
//
//nolint:revive // Package name "types" is intentionally generic to avoid circular imports
package types

import (
	"context"
	"database/sql"
	"errors"
)

// Database vendor identifiers shared across the database packages.
type Vendor = string

const (
	MySQL      Vendor = "mysql"
	SQLite     Vendor = "sqlite"
	PostgreSQL Vendor = "postgresql"
	Oracle     Vendor = "oracle"
)

// Row represents a single result set row with basic scanning behaviour.
type Row interface {
	Scan(dest ...any) error
	Err() error
}

type sqlRowAdapter struct {
	row *sql.Row
}

// NewRowFromSQL wraps the provided *sql.Row in a Row.
// If row is nil, NewRowFromSQL returns nil.
func NewRowFromSQL(row *sql.Row) Row {
	if row == nil {
		return nil
	}
	return &sqlRowAdapter{row: row}
}

func (r *sqlRowAdapter) Scan(dest ...any) error {
	if r == nil || r.row == nil {
		return errors.New("sqlRowAdapter: underlying sql.Row is nil")
	}
	return r.row.Scan(dest...)
}

func (r *sqlRowAdapter) Err() error {
	if r == nil || r.row == nil {
		return errors.New("sqlRowAdapter: underlying sql.Row is nil")
	}
	return r.row.Err()
}

// Statement defines the interface for prepared statements
type Statement interface {
	Query(ctx context.Context, args ...any) (*sql.Rows, error)
	QueryRow(ctx context.Context, args ...any) Row
	Exec(ctx context.Context, args ...any) (sql.Result, error)

	Close() error
}

// Preparer is the only capability the query builder needs from a connection:
// every statement it runs is prepared first and executed with positional bindings.
type Preparer interface {
	Prepare(ctx context.Context, query string) (Statement, error)
}

// Querier executes raw SQL. Migrations run DDL through it directly.
type Querier interface {
	Query(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) Row
	Exec(ctx context.Context, query string, args ...any) (sql.Result, error)

	// DatabaseType returns the vendor identifier, one of the Vendor constants.
	DatabaseType() string
}

// Tx defines the interface for database transactions
type Tx interface {
	Query(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) Row
	Exec(ctx context.Context, query string, args ...any) (sql.Result, error)

	Prepare(ctx context.Context, query string) (Statement, error)

	Commit() error
	Rollback() error
}

// Interface defines the common database operations supported by the SQL layer.
// Applications and migrations depend on it, which keeps them easy to mock.
type Interface interface {
	Querier
	Preparer

	Begin(ctx context.Context) (Tx, error)
	BeginTx(ctx context.Context, opts *sql.TxOptions) (Tx, error)

	Health(ctx context.Context) error
	Stats() (map[string]any, error)

	Close() error
}
