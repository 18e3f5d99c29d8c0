// Package migration applies versioned schema changes written against the
// schema generator and records them in a history table.
package migration

import (
	"context"
	"errors"
	"strings"

	"github.com/bowphp/framework-sub001/database"
	"github.com/bowphp/framework-sub001/database/dialect"
	"github.com/bowphp/framework-sub001/database/schema"
	"github.com/bowphp/framework-sub001/database/types"
	"github.com/bowphp/framework-sub001/logger"
)

var (
	// ErrDuplicateMigration is returned by Register for a name registered twice.
	ErrDuplicateMigration = errors.New("duplicate migration")
	// ErrUnknownMigration is returned when the history holds a migration that
	// is not registered, so it cannot be rolled back.
	ErrUnknownMigration = errors.New("unknown migration")
)

// Migration is one reversible schema change. Migrations run in name order,
// so names usually start with a timestamp.
type Migration interface {
	Name() string
	Up(ctx context.Context, r *Runner) error
	Down(ctx context.Context, r *Runner) error
}

// StepFunc is the body of an Up or Down step.
type StepFunc func(ctx context.Context, r *Runner) error

type funcMigration struct {
	name     string
	up, down StepFunc
}

// Define builds a Migration from two functions. A nil down makes rollback a
// no-op.
func Define(name string, up, down StepFunc) Migration {
	return &funcMigration{name: name, up: up, down: down}
}

func (m *funcMigration) Name() string { return m.name }

func (m *funcMigration) Up(ctx context.Context, r *Runner) error {
	if m.up == nil {
		return nil
	}
	return m.up(ctx, r)
}

func (m *funcMigration) Down(ctx context.Context, r *Runner) error {
	if m.down == nil {
		return nil
	}
	return m.down(ctx, r)
}

// Runner executes the statements of one migration on a connection. DDL runs
// on the connection directly, not through the query builder.
type Runner struct {
	conn    types.Interface
	dialect dialect.Dialect
	log     logger.Logger
}

// NewRunner binds a Runner to conn and its dialect.
func NewRunner(conn types.Interface, log logger.Logger) *Runner {
	if log == nil {
		log = logger.Nop()
	}
	return &Runner{conn: conn, dialect: database.DialectOf(conn), log: log}
}

// Dialect returns the dialect statements are compiled for.
func (r *Runner) Dialect() dialect.Dialect { return r.dialect }

// Create runs CREATE TABLE IF NOT EXISTS with the columns added by define.
func (r *Runner) Create(ctx context.Context, table string, define func(*schema.Table)) error {
	t := r.schema(table, schema.ModeCreate)
	define(t)
	stmt, err := t.CreateStatement()
	if err != nil {
		return err
	}
	return r.Exec(ctx, stmt)
}

// Alter runs ALTER TABLE with the columns added and dropped by define.
func (r *Runner) Alter(ctx context.Context, table string, define func(*schema.Table)) error {
	t := r.schema(table, schema.ModeAlter)
	define(t)
	stmts, err := t.AlterStatements()
	if err != nil {
		return err
	}
	for _, stmt := range stmts {
		if err := r.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// DropIfExists drops table when it exists.
func (r *Runner) DropIfExists(ctx context.Context, table string) error {
	return r.Exec(ctx, r.schema(table, schema.ModeCreate).DropStatement())
}

// Exec runs a raw statement.
func (r *Runner) Exec(ctx context.Context, query string, args ...any) error {
	// go-ora rejects the statement terminator.
	if r.dialect.Name() == types.Oracle {
		query = strings.TrimSuffix(strings.TrimSpace(query), ";")
	}
	r.log.Debug().Str("statement", query).Msg("Running migration statement")
	_, err := r.conn.Exec(ctx, query, args...)
	return err
}

// Table starts a query builder statement, for data migrations.
func (r *Runner) Table(table string) *database.Builder {
	return database.Table(r.conn, table, database.WithLogger(r.log))
}

func (r *Runner) schema(table string, mode schema.Mode) *schema.Table {
	return schema.New(table, mode, schema.WithDialect(r.dialect), schema.WithLogger(r.log))
}
