package tracking

import (
	"context"
	"database/sql"
	"time"

	"github.com/bowphp/framework-sub001/database/types"
)

// Statement tracks every execution of a prepared statement.
type Statement struct {
	stmt  types.Statement
	query string
	tc    *Context
}

var _ types.Statement = (*Statement)(nil)

// NewStatement wraps stmt so its executions are tracked under query.
func NewStatement(stmt types.Statement, tc *Context, query string) *Statement {
	return &Statement{stmt: stmt, query: query, tc: tc}
}

// Query executes the statement as a query.
func (s *Statement) Query(ctx context.Context, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := s.stmt.Query(ctx, args...)
	s.track(ctx, stmtQueryPrefix, Operation{Args: args, Start: start, Err: err})
	return rows, err
}

// QueryRow executes the statement as a single row query. Tracking happens
// once the row is scanned.
func (s *Statement) QueryRow(ctx context.Context, args ...any) types.Row {
	start := time.Now()
	row := s.stmt.QueryRow(ctx, args...)
	return wrapRow(row, func(err error) {
		s.track(ctx, stmtQueryRowLabel, Operation{Args: args, Start: start, Err: err})
	})
}

// Exec executes the statement without returning rows.
func (s *Statement) Exec(ctx context.Context, args ...any) (sql.Result, error) {
	start := time.Now()
	result, err := s.stmt.Exec(ctx, args...)
	s.track(ctx, stmtExecPrefix, Operation{Args: args, Start: start, RowsAffected: rowsAffected(result, err), Err: err})
	return result, err
}

// Close closes the underlying statement.
func (s *Statement) Close() error {
	return s.stmt.Close()
}

func (s *Statement) track(ctx context.Context, label string, op Operation) {
	op.Query = label
	if s.query != "" {
		op.Query = label + ": " + s.query
	}
	Track(ctx, s.tc, op)
}
