// Package mocks provides testify mocks of the connection contracts in
// database/types, for tests of code that depends on a database without
// opening one.
package mocks

import (
	"context"
	"database/sql"

	"github.com/stretchr/testify/mock"

	"github.com/bowphp/framework-sub001/database/types"
)

// MockDatabase is a testify mock of types.Interface. The query builder only
// prepares statements, so most builder tests set expectations on Prepare
// and hand back a MockStatement.
//
//	db := &mocks.MockDatabase{}
//	stmt := &mocks.MockStatement{}
//	db.ExpectDatabaseType(types.PostgreSQL)
//	db.ExpectPrepare(`DELETE FROM "users" WHERE "id" = $1`, stmt, nil)
//	stmt.ExpectExec(sqlmock.NewResult(0, 1), nil)
//	stmt.ExpectClose(nil)
type MockDatabase struct {
	mock.Mock
}

func (m *MockDatabase) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	arguments := m.Called(append([]any{ctx, query}, args...)...)
	rows, _ := arguments.Get(0).(*sql.Rows)
	return rows, arguments.Error(1)
}

func (m *MockDatabase) QueryRow(ctx context.Context, query string, args ...any) types.Row {
	arguments := m.Called(append([]any{ctx, query}, args...)...)
	row, _ := arguments.Get(0).(types.Row)
	return row
}

func (m *MockDatabase) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	arguments := m.Called(append([]any{ctx, query}, args...)...)
	result, _ := arguments.Get(0).(sql.Result)
	return result, arguments.Error(1)
}

func (m *MockDatabase) Prepare(ctx context.Context, query string) (types.Statement, error) {
	arguments := m.Called(ctx, query)
	stmt, _ := arguments.Get(0).(types.Statement)
	return stmt, arguments.Error(1)
}

func (m *MockDatabase) Begin(ctx context.Context) (types.Tx, error) {
	arguments := m.Called(ctx)
	tx, _ := arguments.Get(0).(types.Tx)
	return tx, arguments.Error(1)
}

func (m *MockDatabase) BeginTx(ctx context.Context, opts *sql.TxOptions) (types.Tx, error) {
	arguments := m.Called(ctx, opts)
	tx, _ := arguments.Get(0).(types.Tx)
	return tx, arguments.Error(1)
}

func (m *MockDatabase) Health(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockDatabase) Stats() (map[string]any, error) {
	arguments := m.Called()
	stats, _ := arguments.Get(0).(map[string]any)
	return stats, arguments.Error(1)
}

func (m *MockDatabase) Close() error {
	return m.Called().Error(0)
}

func (m *MockDatabase) DatabaseType() string {
	return m.Called().String(0)
}

// ExpectHealthCheck makes Health succeed or fail with sql.ErrConnDone.
func (m *MockDatabase) ExpectHealthCheck(healthy bool) *mock.Call {
	if healthy {
		return m.On("Health", mock.Anything).Return(nil)
	}
	return m.On("Health", mock.Anything).Return(sql.ErrConnDone)
}

func (m *MockDatabase) ExpectPrepare(query string, stmt types.Statement, err error) *mock.Call {
	return m.On("Prepare", mock.Anything, query).Return(stmt, err)
}

// ExpectQuery and ExpectExec match calls without bind arguments.
func (m *MockDatabase) ExpectQuery(query string, rows *sql.Rows, err error) *mock.Call {
	return m.On("Query", mock.Anything, query).Return(rows, err)
}

func (m *MockDatabase) ExpectExec(query string, result sql.Result, err error) *mock.Call {
	return m.On("Exec", mock.Anything, query).Return(result, err)
}

func (m *MockDatabase) ExpectTransaction(tx types.Tx, err error) *mock.Call {
	return m.On("Begin", mock.Anything).Return(tx, err)
}

// ExpectDatabaseType fixes the vendor reported by DatabaseType, which selects
// the SQL dialect of builders created on the mock.
func (m *MockDatabase) ExpectDatabaseType(vendor string) *mock.Call {
	return m.On("DatabaseType").Return(vendor)
}

func (m *MockDatabase) ExpectStats(stats map[string]any, err error) *mock.Call {
	return m.On("Stats").Return(stats, err)
}

var _ types.Interface = (*MockDatabase)(nil)
