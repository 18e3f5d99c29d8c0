package mocks

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"

	"github.com/stretchr/testify/mock"

	"github.com/bowphp/framework-sub001/database/types"
)

// MockStatement is a testify mock of types.Statement. Bindings are recorded
// as a single []any argument.
type MockStatement struct {
	mock.Mock
}

func (m *MockStatement) Query(ctx context.Context, args ...any) (*sql.Rows, error) {
	arguments := m.Called(ctx, args)
	rows, _ := arguments.Get(0).(*sql.Rows)
	return rows, arguments.Error(1)
}

func (m *MockStatement) QueryRow(ctx context.Context, args ...any) types.Row {
	arguments := m.Called(ctx, args)
	row, _ := arguments.Get(0).(types.Row)
	return row
}

func (m *MockStatement) Exec(ctx context.Context, args ...any) (sql.Result, error) {
	arguments := m.Called(ctx, args)
	result, _ := arguments.Get(0).(sql.Result)
	return result, arguments.Error(1)
}

func (m *MockStatement) Close() error {
	return m.Called().Error(0)
}

func (m *MockStatement) ExpectQuery(rows *sql.Rows, err error) *mock.Call {
	return m.On("Query", mock.Anything, mock.Anything).Return(rows, err)
}

func (m *MockStatement) ExpectQueryRow(row types.Row) *mock.Call {
	return m.On("QueryRow", mock.Anything, mock.Anything).Return(row)
}

func (m *MockStatement) ExpectExec(result sql.Result, err error) *mock.Call {
	return m.On("Exec", mock.Anything, mock.Anything).Return(result, err)
}

// ExpectExecWith matches the exact positional bindings.
func (m *MockStatement) ExpectExecWith(bindings []any, result sql.Result, err error) *mock.Call {
	return m.On("Exec", mock.Anything, bindings).Return(result, err)
}

func (m *MockStatement) ExpectClose(err error) *mock.Call {
	return m.On("Close").Return(err)
}

// MockRow is a types.Row that scans fixed values.
type MockRow struct {
	Values []any
	Error  error
}

func (r *MockRow) Scan(dest ...any) error {
	if r.Error != nil {
		return r.Error
	}
	if len(dest) != len(r.Values) {
		return fmt.Errorf("mocks: scan expects %d destinations, got %d", len(r.Values), len(dest))
	}
	for i, v := range r.Values {
		if err := assign(dest[i], v); err != nil {
			return err
		}
	}
	return nil
}

func (r *MockRow) Err() error { return r.Error }

var (
	_ types.Statement = (*MockStatement)(nil)
	_ types.Row       = (*MockRow)(nil)
)

func assign(dest, value any) error {
	if scanner, ok := dest.(sql.Scanner); ok {
		return scanner.Scan(value)
	}
	target := reflect.ValueOf(dest)
	if target.Kind() != reflect.Pointer || target.IsNil() {
		return fmt.Errorf("mocks: scan destination %T is not a pointer", dest)
	}
	elem := target.Elem()
	if value == nil {
		elem.SetZero()
		return nil
	}
	src := reflect.ValueOf(value)
	switch {
	case src.Type().AssignableTo(elem.Type()):
		elem.Set(src)
	case src.Type().ConvertibleTo(elem.Type()):
		elem.Set(src.Convert(elem.Type()))
	default:
		return fmt.Errorf("mocks: cannot scan %T into %T", value, dest)
	}
	return nil
}
