// Package sqlite opens SQLite databases through the pure Go modernc.org/sqlite driver.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/bowphp/framework-sub001/config"
	"github.com/bowphp/framework-sub001/database/internal/sqlconn"
	"github.com/bowphp/framework-sub001/database/types"
	"github.com/bowphp/framework-sub001/logger"
)

const (
	memoryName = ":memory:"
	pragmas    = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
)

var (
	openSQLiteDB = func(dsn string) (*sql.DB, error) {
		return sql.Open("sqlite", dsn)
	}
	pingSQLiteDB sqlconn.PingFunc = sqlconn.Ping
)

// IsMemory reports whether cfg points at an in-memory database.
func IsMemory(cfg *config.DatabaseConfig) bool {
	return cfg.ConnectionString == "" && (cfg.Database == "" || cfg.Database == memoryName)
}

// DSN builds a driver DSN from cfg. An empty database name or ":memory:"
// selects a private in-memory database. Foreign keys are always enforced.
func DSN(cfg *config.DatabaseConfig) string {
	if cfg.ConnectionString != "" {
		return cfg.ConnectionString
	}
	if IsMemory(cfg) {
		return "file::memory:?" + pragmas
	}

	path := strings.TrimPrefix(cfg.Database, "file:")
	return "file:" + path + "?" + pragmas
}

// NewConnection opens an SQLite database and verifies it with a ping.
// In-memory databases are pinned to one connection that never expires, so
// every query sees the same data.
func NewConnection(cfg *config.DatabaseConfig, log logger.Logger) (*sqlconn.Conn, error) {
	if log == nil {
		log = logger.Nop()
	}
	db, err := openSQLiteDB(DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	pool := cfg.Pool
	if IsMemory(cfg) {
		pool = config.PoolConfig{
			Max:  config.PoolMaxConfig{Connections: 1},
			Idle: config.PoolIdleConfig{Connections: 1},
		}
	}

	conn, err := sqlconn.Open(db, types.SQLite, pool, pingSQLiteDB, log)
	if err != nil {
		return nil, err
	}

	log.Info().Str("database", cfg.Database).Bool("memory", IsMemory(cfg)).Msg("Opened SQLite database")
	return conn, nil
}
