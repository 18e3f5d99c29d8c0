// Package database is the entry point of the SQL layer. It opens tracked
// connections for every supported vendor and binds query builders and schema
// generators to the dialect of a connection.
package database

import (
	"fmt"
	"slices"

	"github.com/bowphp/framework-sub001/config"
	"github.com/bowphp/framework-sub001/database/internal/sqlconn"
	"github.com/bowphp/framework-sub001/database/internal/tracking"
	"github.com/bowphp/framework-sub001/database/mysql"
	"github.com/bowphp/framework-sub001/database/oracle"
	"github.com/bowphp/framework-sub001/database/postgresql"
	"github.com/bowphp/framework-sub001/database/sqlite"
	"github.com/bowphp/framework-sub001/database/types"
	"github.com/bowphp/framework-sub001/logger"
)

// Interface is the connection contract every vendor implements.
type Interface = types.Interface

// Statement is a prepared statement.
type Statement = types.Statement

// Tx is a database transaction.
type Tx = types.Tx

// Row is a single-row query result.
type Row = types.Row

// Vendor identifiers returned by Interface.DatabaseType.
const (
	MySQL      = types.MySQL
	SQLite     = types.SQLite
	PostgreSQL = types.PostgreSQL
	Oracle     = types.Oracle
)

// Opener opens an untracked connection for one vendor.
type Opener func(*config.DatabaseConfig, logger.Logger) (*sqlconn.Conn, error)

var openers = map[string]Opener{
	MySQL:      mysql.NewConnection,
	SQLite:     sqlite.NewConnection,
	PostgreSQL: postgresql.NewConnection,
	Oracle:     oracle.NewConnection,
}

// SupportedDatabaseTypes lists the accepted values of database.type.
func SupportedDatabaseTypes() []string {
	return []string{MySQL, SQLite, PostgreSQL, Oracle}
}

// ValidateDatabaseType returns an error unless dbType names a supported vendor.
// "pgsql" is accepted as an alias of "postgresql".
func ValidateDatabaseType(dbType string) error {
	if dbType == config.PgSQL || slices.Contains(SupportedDatabaseTypes(), dbType) {
		return nil
	}
	return fmt.Errorf("unsupported database type: %s (supported: %v)", dbType, SupportedDatabaseTypes())
}

// Connection is a tracked connection. Every query, statement and transaction
// run through it is logged, traced and measured, and its pool statistics are
// reported as metrics until it is closed.
type Connection struct {
	*tracking.Connection
	unregister func()
}

// NewConnection opens the database described by cfg with the driver selected
// by cfg.Type and wraps it with tracking.
func NewConnection(cfg *config.DatabaseConfig, log logger.Logger) (*Connection, error) {
	if log == nil {
		log = logger.Nop()
	}
	if err := ValidateDatabaseType(cfg.Type); err != nil {
		return nil, err
	}

	conn, err := openers[cfg.NormalizedType()](cfg, log)
	if err != nil {
		return nil, err
	}

	return Track(conn, cfg, log), nil
}

// Track wraps an already opened connection with tracking. The server
// metadata reported on spans is taken from cfg.
func Track(conn Interface, cfg *config.DatabaseConfig, log logger.Logger) *Connection {
	if log == nil {
		log = logger.Nop()
	}
	if cfg == nil {
		cfg = &config.DatabaseConfig{}
	}

	tracked := tracking.NewConnection(conn, log, cfg)
	tracked.SetServerInfo(cfg.Host, cfg.Port, cfg.Database)

	return &Connection{
		Connection: tracked,
		unregister: tracking.RegisterPoolMetrics(conn, conn.DatabaseType()),
	}
}

// Close stops the pool metrics and closes the connection.
func (c *Connection) Close() error {
	if c.unregister != nil {
		c.unregister()
		c.unregister = nil
	}
	return c.Connection.Close()
}
