// Package sqlconn implements types.Interface on top of database/sql.
// Every vendor package opens its *sql.DB with its own driver and DSN rules
// and hands it to Open, which configures the pool and verifies connectivity.
package sqlconn

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/bowphp/framework-sub001/config"
	"github.com/bowphp/framework-sub001/database/types"
	"github.com/bowphp/framework-sub001/logger"
)

const (
	connectTimeout = 10 * time.Second
	healthTimeout  = 5 * time.Second
)

// Conn is a pooled connection to one database.
type Conn struct {
	db     *sql.DB
	vendor string
	log    logger.Logger
}

var _ types.Interface = (*Conn)(nil)

// New wraps an already opened db without touching its pool or pinging it.
func New(db *sql.DB, vendor string, log logger.Logger) *Conn {
	if log == nil {
		log = logger.Nop()
	}
	return &Conn{db: db, vendor: vendor, log: log}
}

// PingFunc verifies a freshly opened pool.
type PingFunc func(ctx context.Context, db *sql.DB) error

// Ping is the default PingFunc.
func Ping(ctx context.Context, db *sql.DB) error {
	return db.PingContext(ctx)
}

// Open applies the pool settings of cfg to db and pings it. On ping failure
// db is closed and the error is returned wrapped with the vendor name.
func Open(db *sql.DB, vendor string, pool config.PoolConfig, ping PingFunc, log logger.Logger) (*Conn, error) {
	if log == nil {
		log = logger.Nop()
	}
	Configure(db, pool)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if err := ping(ctx, db); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			log.Error().Err(closeErr).Str("vendor", vendor).Msg("Failed to close database connection after ping failure")
		}
		return nil, fmt.Errorf("failed to ping %s database: %w", vendor, err)
	}

	return New(db, vendor, log), nil
}

// Configure applies pool limits. Zero values leave the database/sql defaults.
func Configure(db *sql.DB, pool config.PoolConfig) {
	if pool.Max.Connections > 0 {
		db.SetMaxOpenConns(int(pool.Max.Connections))
	}
	if pool.Idle.Connections > 0 {
		db.SetMaxIdleConns(int(pool.Idle.Connections))
	}
	if pool.Lifetime.Max > 0 {
		db.SetConnMaxLifetime(pool.Lifetime.Max)
	}
	if pool.Idle.Time > 0 {
		db.SetConnMaxIdleTime(pool.Idle.Time)
	}
}

// DB exposes the underlying pool.
func (c *Conn) DB() *sql.DB { return c.db }

// Query executes a query that returns rows.
func (c *Conn) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return c.db.QueryContext(ctx, query, args...)
}

// QueryRow executes a query that returns at most one row.
func (c *Conn) QueryRow(ctx context.Context, query string, args ...any) types.Row {
	return types.NewRowFromSQL(c.db.QueryRowContext(ctx, query, args...))
}

// Exec executes a statement without returning rows.
func (c *Conn) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return c.db.ExecContext(ctx, query, args...)
}

// Prepare creates a prepared statement.
func (c *Conn) Prepare(ctx context.Context, query string) (types.Statement, error) {
	stmt, err := c.db.PrepareContext(ctx, query)
	if err != nil {
		return nil, err
	}
	return &Statement{Stmt: stmt}, nil
}

// Begin starts a transaction.
func (c *Conn) Begin(ctx context.Context) (types.Tx, error) {
	return c.BeginTx(ctx, nil)
}

// BeginTx starts a transaction with options.
func (c *Conn) BeginTx(ctx context.Context, opts *sql.TxOptions) (types.Tx, error) {
	tx, err := c.db.BeginTx(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &Tx{tx: tx}, nil
}

// Health pings the database with a short timeout.
func (c *Conn) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()
	return c.db.PingContext(ctx)
}

// Stats returns pool statistics keyed the way metrics read them.
func (c *Conn) Stats() (map[string]any, error) {
	stats := c.db.Stats()
	return map[string]any{
		"max_open_connections": stats.MaxOpenConnections,
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"wait_count":           stats.WaitCount,
		"wait_duration":        stats.WaitDuration.String(),
		"max_idle_closed":      stats.MaxIdleClosed,
		"max_idle_time_closed": stats.MaxIdleTimeClosed,
		"max_lifetime_closed":  stats.MaxLifetimeClosed,
	}, nil
}

// Close closes the pool.
func (c *Conn) Close() error {
	c.log.Info().Str("vendor", c.vendor).Msg("Closing database connection")
	return c.db.Close()
}

// DatabaseType returns the vendor identifier.
func (c *Conn) DatabaseType() string { return c.vendor }

// Statement adapts *sql.Stmt to types.Statement.
type Statement struct {
	*sql.Stmt
}

// Query executes the prepared statement as a query.
func (s *Statement) Query(ctx context.Context, args ...any) (*sql.Rows, error) {
	return s.QueryContext(ctx, args...)
}

// QueryRow executes the prepared statement as a single row query.
func (s *Statement) QueryRow(ctx context.Context, args ...any) types.Row {
	return types.NewRowFromSQL(s.QueryRowContext(ctx, args...))
}

// Exec executes the prepared statement without returning rows.
func (s *Statement) Exec(ctx context.Context, args ...any) (sql.Result, error) {
	return s.ExecContext(ctx, args...)
}

// Tx adapts *sql.Tx to types.Tx.
type Tx struct {
	tx *sql.Tx
}

// Query executes a query inside the transaction.
func (t *Tx) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return t.tx.QueryContext(ctx, query, args...)
}

// QueryRow executes a single row query inside the transaction.
func (t *Tx) QueryRow(ctx context.Context, query string, args ...any) types.Row {
	return types.NewRowFromSQL(t.tx.QueryRowContext(ctx, query, args...))
}

// Exec executes a statement inside the transaction.
func (t *Tx) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return t.tx.ExecContext(ctx, query, args...)
}

// Prepare prepares a statement bound to the transaction.
func (t *Tx) Prepare(ctx context.Context, query string) (types.Statement, error) {
	stmt, err := t.tx.PrepareContext(ctx, query)
	if err != nil {
		return nil, err
	}
	return &Statement{Stmt: stmt}, nil
}

// Commit commits the transaction.
func (t *Tx) Commit() error { return t.tx.Commit() }

// Rollback aborts the transaction.
func (t *Tx) Rollback() error { return t.tx.Rollback() }
