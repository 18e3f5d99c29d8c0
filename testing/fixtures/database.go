// Package fixtures builds pre-configured database mocks and SQL results for
// tests of code written against database/types.
package fixtures

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bowphp/framework-sub001/database/types"
	"github.com/bowphp/framework-sub001/testing/mocks"
)

// ErrReadOnly is returned by every write of a NewReadOnlyDatabase mock.
var ErrReadOnly = errors.New("database is read-only")

// NewDatabase returns a healthy mock reporting vendor as its database type.
func NewDatabase(vendor string) *mocks.MockDatabase {
	db := &mocks.MockDatabase{}
	db.ExpectHealthCheck(true).Maybe()
	db.ExpectDatabaseType(vendor).Maybe()
	db.ExpectStats(map[string]any{
		"open_connections": 1,
		"in_use":           0,
		"idle":             1,
	}, nil).Maybe()
	return db
}

// NewFailingDatabase returns a mock whose health check, statements and
// transactions all fail with err, sql.ErrConnDone when err is nil.
func NewFailingDatabase(vendor string, err error) *mocks.MockDatabase {
	if err == nil {
		err = sql.ErrConnDone
	}
	db := &mocks.MockDatabase{}
	db.ExpectHealthCheck(false).Maybe()
	db.ExpectDatabaseType(vendor).Maybe()
	db.On("Prepare", mock.Anything, mock.Anything).Return(nil, err).Maybe()
	db.On("Query", mock.Anything, mock.Anything).Return(nil, err).Maybe()
	db.On("Exec", mock.Anything, mock.Anything).Return(nil, err).Maybe()
	db.On("Begin", mock.Anything).Return(nil, err).Maybe()
	return db
}

// NewReadOnlyDatabase returns a mock whose prepared statement answers one
// read with rows and fails every write with ErrReadOnly.
func NewReadOnlyDatabase(t testing.TB, vendor string, columns []string, rows [][]any) *mocks.MockDatabase {
	db := NewDatabase(vendor)
	db.On("Prepare", mock.Anything, mock.Anything).Return(func() types.Statement {
		stmt := &mocks.MockStatement{}
		stmt.ExpectQuery(NewMockRows(t, columns, rows), nil).Maybe()
		stmt.ExpectExec(nil, ErrReadOnly).Maybe()
		stmt.ExpectClose(nil).Maybe()
		return stmt
	}(), nil).Maybe()
	db.On("Begin", mock.Anything).Return(nil, ErrReadOnly).Maybe()
	return db
}

// NewStatement returns a statement mock whose Exec reports the given result
// and which accepts Close.
func NewStatement(lastInsertID, rowsAffected int64) *mocks.MockStatement {
	stmt := &mocks.MockStatement{}
	stmt.ExpectExec(NewMockResult(lastInsertID, rowsAffected), nil)
	stmt.ExpectClose(nil).Maybe()
	return stmt
}

// NewCountStatement returns a statement mock answering an aggregate with n.
func NewCountStatement(n int64) *mocks.MockStatement {
	stmt := &mocks.MockStatement{}
	stmt.ExpectQueryRow(&mocks.MockRow{Values: []any{n}})
	stmt.ExpectClose(nil).Maybe()
	return stmt
}

// NewMockRows builds *sql.Rows holding rows, backed by sqlmock.
//
//	rows := fixtures.NewMockRows(t,
//	  []string{"id", "email"},
//	  [][]any{{1, "ada@bow.test"}, {2, "alan@bow.test"}},
//	)
func NewMockRows(t testing.TB, columns []string, rows [][]any) *sql.Rows {
	t.Helper()
	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	sqlRows := sqlmock.NewRows(columns)
	for _, row := range rows {
		values := make([]driver.Value, len(row))
		for i, v := range row {
			values[i] = v
		}
		sqlRows.AddRow(values...)
	}
	sqlMock.ExpectQuery(".*").WillReturnRows(sqlRows)

	result, err := db.Query("SELECT")
	require.NoError(t, err)
	return result
}

func NewMockResult(lastInsertID, rowsAffected int64) sql.Result {
	return sqlmock.NewResult(lastInsertID, rowsAffected)
}

// NewErrorResult returns a result whose accessors both fail with err.
func NewErrorResult(err error) sql.Result {
	return sqlmock.NewErrorResult(err)
}

// NewSuccessfulTransaction returns a transaction mock that commits.
func NewSuccessfulTransaction() *mocks.MockTx {
	tx := &mocks.MockTx{}
	tx.ExpectCommit(nil)
	tx.ExpectRollback(sql.ErrTxDone).Maybe()
	return tx
}

// NewFailedTransaction returns a transaction mock whose commit fails and
// whose rollback succeeds.
func NewFailedTransaction(commitErr error) *mocks.MockTx {
	if commitErr == nil {
		commitErr = errors.New("transaction commit failed")
	}
	tx := &mocks.MockTx{}
	tx.ExpectCommit(commitErr)
	tx.ExpectRollback(nil).Maybe()
	return tx
}
