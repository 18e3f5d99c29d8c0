// Package postgresql opens PostgreSQL connections through the pgx stdlib driver.
package postgresql

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/bowphp/framework-sub001/config"
	"github.com/bowphp/framework-sub001/database/internal/sqlconn"
	"github.com/bowphp/framework-sub001/database/types"
	"github.com/bowphp/framework-sub001/logger"
)

var (
	openPostgresDB = func(cfg *pgx.ConnConfig) *sql.DB {
		return stdlib.OpenDB(*cfg)
	}
	pingPostgresDB sqlconn.PingFunc = sqlconn.Ping
)

// quoteDSN quotes a keyword/value DSN value following libpq rules.
func quoteDSN(value string) string {
	if value == "" {
		return "''"
	}

	plain := true
	for _, r := range value {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') &&
			(r < '0' || r > '9') && r != '.' && r != '_' && r != '-' {
			plain = false
			break
		}
	}
	if plain {
		return value
	}

	escaped := strings.ReplaceAll(value, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, "'", `\'`)
	return "'" + escaped + "'"
}

// DSN builds a keyword/value DSN from cfg. ConnectionString wins when set.
func DSN(cfg *config.DatabaseConfig) string {
	if cfg.ConnectionString != "" {
		return cfg.ConnectionString
	}
	return strings.Join([]string{
		"host=" + quoteDSN(cfg.Host),
		fmt.Sprintf("port=%d", cfg.Port),
		"user=" + quoteDSN(cfg.Username),
		"password=" + quoteDSN(cfg.Password),
		"dbname=" + quoteDSN(cfg.Database),
	}, " ")
}

// NewConnection opens a pooled PostgreSQL connection and verifies it with a ping.
func NewConnection(cfg *config.DatabaseConfig, log logger.Logger) (*sqlconn.Conn, error) {
	if log == nil {
		log = logger.Nop()
	}

	pgxConfig, err := pgx.ParseConfig(DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to parse PostgreSQL config: %w", err)
	}

	conn, err := sqlconn.Open(openPostgresDB(pgxConfig), types.PostgreSQL, cfg.Pool, pingPostgresDB, log)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("host", pgxConfig.Host).
		Int("port", int(pgxConfig.Port)).
		Str("database", pgxConfig.Database).
		Msg("Connected to PostgreSQL database")

	return conn, nil
}
