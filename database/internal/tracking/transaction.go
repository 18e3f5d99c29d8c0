package tracking

import (
	"context"
	"database/sql"
	"time"

	"github.com/bowphp/framework-sub001/database/types"
)

// Transaction tracks every operation run inside a transaction.
type Transaction struct {
	tx types.Tx
	tc *Context
}

var _ types.Tx = (*Transaction)(nil)

// NewTransaction wraps tx with tracking.
func NewTransaction(tx types.Tx, tc *Context) *Transaction {
	return &Transaction{tx: tx, tc: tc}
}

// Query executes a query inside the transaction.
func (t *Transaction) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := t.tx.Query(ctx, query, args...)
	Track(ctx, t.tc, Operation{Query: query, Args: args, Start: start, Err: err})
	return rows, err
}

// QueryRow executes a single row query inside the transaction.
func (t *Transaction) QueryRow(ctx context.Context, query string, args ...any) types.Row {
	start := time.Now()
	row := t.tx.QueryRow(ctx, query, args...)
	return wrapRow(row, func(err error) {
		Track(ctx, t.tc, Operation{Query: query, Args: args, Start: start, Err: err})
	})
}

// Exec executes a statement inside the transaction.
func (t *Transaction) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	result, err := t.tx.Exec(ctx, query, args...)
	Track(ctx, t.tc, Operation{Query: query, Args: args, Start: start, RowsAffected: rowsAffected(result, err), Err: err})
	return result, err
}

// Prepare prepares a statement bound to the transaction.
func (t *Transaction) Prepare(ctx context.Context, query string) (types.Statement, error) {
	start := time.Now()
	stmt, err := t.tx.Prepare(ctx, query)
	Track(ctx, t.tc, Operation{Query: prefixTxPrepare + query, Start: start, Err: err})
	if err != nil {
		return nil, err
	}
	return NewStatement(stmt, t.tc, query), nil
}

// Commit commits the transaction.
func (t *Transaction) Commit() error {
	start := time.Now()
	err := t.tx.Commit()
	Track(context.Background(), t.tc, Operation{Query: opCommit, Start: start, Err: err})
	return err
}

// Rollback aborts the transaction.
func (t *Transaction) Rollback() error {
	start := time.Now()
	err := t.tx.Rollback()
	Track(context.Background(), t.tc, Operation{Query: opRollback, Start: start, Err: err})
	return err
}
