package tracking

import (
	"context"
	"database/sql"
	"time"

	"github.com/bowphp/framework-sub001/config"
	"github.com/bowphp/framework-sub001/database/types"
	"github.com/bowphp/framework-sub001/logger"
)

// Connection wraps a types.Interface and tracks every call made through it.
// Health, Stats, Close and DatabaseType pass straight through.
type Connection struct {
	conn types.Interface
	tc   *Context
}

var _ types.Interface = (*Connection)(nil)

// NewConnection wraps conn, taking the vendor from conn.DatabaseType() and
// the tracking settings from cfg.
func NewConnection(conn types.Interface, log logger.Logger, cfg *config.DatabaseConfig) *Connection {
	return &Connection{
		conn: conn,
		tc: &Context{
			Logger:   log,
			Vendor:   conn.DatabaseType(),
			Settings: NewSettings(cfg),
		},
	}
}

// SetServerInfo records the server address, port and database name reported on spans.
func (c *Connection) SetServerInfo(address string, port int, namespace string) {
	c.tc.ServerAddress = address
	c.tc.ServerPort = port
	c.tc.Namespace = namespace
}

// Query executes a query.
func (c *Connection) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := c.conn.Query(ctx, query, args...)
	Track(ctx, c.tc, Operation{Query: query, Args: args, Start: start, Err: err})
	return rows, err
}

// QueryRow executes a single row query. Tracking happens once the row is scanned.
func (c *Connection) QueryRow(ctx context.Context, query string, args ...any) types.Row {
	start := time.Now()
	row := c.conn.QueryRow(ctx, query, args...)
	return wrapRow(row, func(err error) {
		Track(ctx, c.tc, Operation{Query: query, Args: args, Start: start, Err: err})
	})
}

// Exec executes a statement without returning rows.
func (c *Connection) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	result, err := c.conn.Exec(ctx, query, args...)
	Track(ctx, c.tc, Operation{Query: query, Args: args, Start: start, RowsAffected: rowsAffected(result, err), Err: err})
	return result, err
}

// Prepare prepares query and returns a statement whose executions are tracked.
func (c *Connection) Prepare(ctx context.Context, query string) (types.Statement, error) {
	start := time.Now()
	stmt, err := c.conn.Prepare(ctx, query)
	Track(ctx, c.tc, Operation{Query: prefixPrepare + query, Start: start, Err: err})
	if err != nil {
		return nil, err
	}
	return NewStatement(stmt, c.tc, query), nil
}

// Begin starts a tracked transaction.
func (c *Connection) Begin(ctx context.Context) (types.Tx, error) {
	start := time.Now()
	tx, err := c.conn.Begin(ctx)
	Track(ctx, c.tc, Operation{Query: opBegin, Start: start, Err: err})
	if err != nil {
		return nil, err
	}
	return NewTransaction(tx, c.tc), nil
}

// BeginTx starts a tracked transaction with options.
func (c *Connection) BeginTx(ctx context.Context, opts *sql.TxOptions) (types.Tx, error) {
	start := time.Now()
	tx, err := c.conn.BeginTx(ctx, opts)
	Track(ctx, c.tc, Operation{Query: opBeginTx, Start: start, Err: err})
	if err != nil {
		return nil, err
	}
	return NewTransaction(tx, c.tc), nil
}

// Health checks the underlying connection.
func (c *Connection) Health(ctx context.Context) error { return c.conn.Health(ctx) }

// Stats returns pool statistics of the underlying connection.
func (c *Connection) Stats() (map[string]any, error) { return c.conn.Stats() }

// Close closes the underlying connection.
func (c *Connection) Close() error { return c.conn.Close() }

// DatabaseType returns the vendor of the underlying connection.
func (c *Connection) DatabaseType() string { return c.conn.DatabaseType() }
