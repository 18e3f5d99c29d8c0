package builder

import (
	"bytes"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/bowphp/framework-sub001/database/internal/sqlconn"
	"github.com/bowphp/framework-sub001/database/types"
	"github.com/bowphp/framework-sub001/logger"
)

const (
	tableUsers  = "users"
	tableOrders = "orders"
	tablePosts  = "posts"

	colID     = "id"
	colAge    = "age"
	colName   = "name"
	colStatus = "status"
	colActive = "active"

	statusActive = "active"
)

func newMock(t *testing.T) (*sqlconn.Conn, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return sqlconn.New(db, types.MySQL, nil), mock
}

func bufferLogger() (*bytes.Buffer, logger.Logger) {
	var buf bytes.Buffer
	return &buf, logger.NewWithWriter(&buf, "debug", false, nil)
}
