// Package oracle opens Oracle connections through the pure Go go-ora driver.
package oracle

import (
	"database/sql"
	"fmt"

	go_ora "github.com/sijms/go-ora/v2"

	"github.com/bowphp/framework-sub001/config"
	"github.com/bowphp/framework-sub001/database/internal/sqlconn"
	"github.com/bowphp/framework-sub001/database/types"
	"github.com/bowphp/framework-sub001/logger"
)

var (
	openOracleDB = func(dsn string) (*sql.DB, error) {
		return sql.Open("oracle", dsn)
	}
	pingOracleDB sqlconn.PingFunc = sqlconn.Ping
)

// DSN builds a go-ora URL from cfg. ConnectionString wins when set, then the
// service name, then the SID, and finally the database name used as service.
func DSN(cfg *config.DatabaseConfig) string {
	if cfg.ConnectionString != "" {
		return cfg.ConnectionString
	}

	service := cfg.Oracle.Service
	switch {
	case service.Name != "":
		return go_ora.BuildUrl(cfg.Host, cfg.Port, service.Name, cfg.Username, cfg.Password, nil)
	case service.SID != "":
		return go_ora.BuildUrl(cfg.Host, cfg.Port, "", cfg.Username, cfg.Password, map[string]string{"SID": service.SID})
	default:
		return go_ora.BuildUrl(cfg.Host, cfg.Port, cfg.Database, cfg.Username, cfg.Password, nil)
	}
}

// NewConnection opens a pooled Oracle connection and verifies it with a ping.
func NewConnection(cfg *config.DatabaseConfig, log logger.Logger) (*sqlconn.Conn, error) {
	if log == nil {
		log = logger.Nop()
	}

	db, err := openOracleDB(DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open Oracle connection: %w", err)
	}

	conn, err := sqlconn.Open(db, types.Oracle, cfg.Pool, pingOracleDB, log)
	if err != nil {
		return nil, err
	}

	ev := log.Info().Str("host", cfg.Host).Int("port", cfg.Port)
	switch {
	case cfg.Oracle.Service.Name != "":
		ev = ev.Str("service_name", cfg.Oracle.Service.Name)
	case cfg.Oracle.Service.SID != "":
		ev = ev.Str("sid", cfg.Oracle.Service.SID)
	default:
		ev = ev.Str("database", cfg.Database)
	}
	ev.Msg("Connected to Oracle database")

	return conn, nil
}
