// Package mysql opens MySQL and MariaDB connections through go-sql-driver/mysql.
package mysql

import (
	"database/sql"
	"fmt"
	"net"
	"strconv"

	driver "github.com/go-sql-driver/mysql"

	"github.com/bowphp/framework-sub001/config"
	"github.com/bowphp/framework-sub001/database/internal/sqlconn"
	"github.com/bowphp/framework-sub001/database/types"
	"github.com/bowphp/framework-sub001/logger"
)

var (
	openMySQLDB = func(dsn string) (*sql.DB, error) {
		return sql.Open("mysql", dsn)
	}
	pingMySQLDB sqlconn.PingFunc = sqlconn.Ping
)

// DSN builds a driver DSN from cfg. ConnectionString wins when set.
// Times are parsed into time.Time and stored as UTC.
func DSN(cfg *config.DatabaseConfig) string {
	if cfg.ConnectionString != "" {
		return cfg.ConnectionString
	}

	dc := driver.NewConfig()
	dc.User = cfg.Username
	dc.Passwd = cfg.Password
	dc.Net = "tcp"
	dc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	dc.DBName = cfg.Database
	dc.ParseTime = true
	dc.MultiStatements = true
	return dc.FormatDSN()
}

// NewConnection opens a pooled MySQL connection and verifies it with a ping.
func NewConnection(cfg *config.DatabaseConfig, log logger.Logger) (*sqlconn.Conn, error) {
	if log == nil {
		log = logger.Nop()
	}
	db, err := openMySQLDB(DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL connection: %w", err)
	}

	conn, err := sqlconn.Open(db, types.MySQL, cfg.Pool, pingMySQLDB, log)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("database", cfg.Database).
		Msg("Connected to MySQL database")

	return conn, nil
}
