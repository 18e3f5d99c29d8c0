package fixtures_test

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bowphp/framework-sub001/database"
	"github.com/bowphp/framework-sub001/database/types"
	"github.com/bowphp/framework-sub001/testing/fixtures"
)

func prefixed(prefix string) any {
	return mock.MatchedBy(func(query string) bool { return strings.HasPrefix(query, prefix) })
}

func TestBuilderOnMockDatabase(t *testing.T) {
	ctx := context.Background()
	db := fixtures.NewDatabase(types.PostgreSQL)

	count := fixtures.NewCountStatement(4)
	db.On("Prepare", mock.Anything, prefixed(`SELECT COUNT(*) FROM "users"`)).Return(count, nil).Once()
	del := fixtures.NewStatement(0, 3)
	db.On("Prepare", mock.Anything, prefixed(`DELETE FROM "users"`)).Return(del, nil).Once()

	n, err := database.Table(db, "users").Where("active", true).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	removed, err := database.Table(db, "users").Where("active", false).Delete(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)

	db.AssertExpectations(t)
	count.AssertExpectations(t)
	del.AssertExpectations(t)
}

func TestBuilderInMockTransaction(t *testing.T) {
	ctx := context.Background()
	db := fixtures.NewDatabase(types.MySQL)
	tx := fixtures.NewSuccessfulTransaction()
	stmt := fixtures.NewStatement(42, 1)
	tx.ExpectPrepare("INSERT INTO `users` (`email`) VALUES (?)", stmt, nil)

	id, err := database.TableTx(db, tx, "users").InsertGetID(ctx, map[string]any{"email": "tx@bow.test"})
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	require.NoError(t, tx.Commit())

	tx.AssertExpectations(t)
	stmt.AssertExpectations(t)
}

func TestFailingDatabase(t *testing.T) {
	ctx := context.Background()
	db := fixtures.NewFailingDatabase(types.SQLite, nil)

	assert.ErrorIs(t, db.Health(ctx), sql.ErrConnDone)
	_, err := database.Table(db, "users").Count(ctx)
	assert.ErrorIs(t, err, sql.ErrConnDone)
	_, err = db.Begin(ctx)
	assert.ErrorIs(t, err, sql.ErrConnDone)
}

func TestReadOnlyDatabase(t *testing.T) {
	ctx := context.Background()
	db := fixtures.NewReadOnlyDatabase(t, types.SQLite, []string{"id", "email"}, [][]any{
		{int64(1), "ada@bow.test"},
		{int64(2), "alan@bow.test"},
	})

	rows, err := database.Table(db, "users").Get(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "alan@bow.test", rows[1]["email"])

	_, err = database.Table(db, "users").Insert(ctx, map[string]any{"email": "new@bow.test"})
	assert.ErrorIs(t, err, fixtures.ErrReadOnly)
}

func TestFailedTransactionCommit(t *testing.T) {
	boom := errors.New("boom")
	tx := fixtures.NewFailedTransaction(boom)
	assert.ErrorIs(t, tx.Commit(), boom)
	assert.NoError(t, tx.Rollback())
}

func TestResults(t *testing.T) {
	res := fixtures.NewMockResult(7, 2)
	id, _ := res.LastInsertId()
	affected, _ := res.RowsAffected()
	assert.Equal(t, int64(7), id)
	assert.Equal(t, int64(2), affected)

	_, err := fixtures.NewErrorResult(sql.ErrNoRows).RowsAffected()
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
