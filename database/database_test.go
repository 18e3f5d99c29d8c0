package database

import (
	"context"
	"errors"
	"fmt"
	"testing"

	driver "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sijms/go-ora/v2/network"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bowphp/framework-sub001/config"
	"github.com/bowphp/framework-sub001/database/dialect"
	"github.com/bowphp/framework-sub001/database/internal/mocks"
	"github.com/bowphp/framework-sub001/database/schema"
	"github.com/bowphp/framework-sub001/database/types"
)

func openMemory(t *testing.T) *Connection {
	t.Helper()
	conn, err := NewConnection(&config.DatabaseConfig{Type: SQLite, Database: ":memory:"}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func createAuthors(t *testing.T, conn Interface) {
	t.Helper()
	table := NewSchema(conn, "authors", schema.ModeCreate)
	table.AddIncrements("id").
		AddString("email", schema.ColumnOptions{Unique: true}).
		AddInteger("books", schema.ColumnOptions{Default: 0})
	stmt, err := table.CreateStatement()
	require.NoError(t, err)
	_, err = conn.Exec(context.Background(), stmt)
	require.NoError(t, err)
}

func TestValidateDatabaseType(t *testing.T) {
	for _, vendor := range append(SupportedDatabaseTypes(), config.PgSQL) {
		assert.NoError(t, ValidateDatabaseType(vendor), vendor)
	}
	assert.ErrorContains(t, ValidateDatabaseType("mongodb"), "unsupported database type: mongodb")
}

func TestNewConnectionUnsupported(t *testing.T) {
	conn, err := NewConnection(&config.DatabaseConfig{Type: "mssql"}, nil)
	assert.Nil(t, conn)
	assert.Error(t, err)
}

func TestDialectOf(t *testing.T) {
	tests := map[string]string{
		SQLite:     "sqlite",
		PostgreSQL: "postgresql",
		MySQL:      "mysql",
		Oracle:     "oracle",
		"unknown":  dialect.Default().Name(),
	}
	for vendor, want := range tests {
		t.Run(vendor, func(t *testing.T) {
			assert.Equal(t, want, DialectOf(&stubConn{vendor: vendor}).Name())
		})
	}
}

func TestBuilderOptions(t *testing.T) {
	assert.Len(t, BuilderOptions(nil, nil), 1)

	cfg := &config.DatabaseConfig{Builder: config.BuilderConfig{Strict: true, StickyLimit: true, PrimaryKey: "uuid"}}
	assert.Len(t, BuilderOptions(cfg, nil), 4)

	conn := openMemory(t)
	b := Table(conn, "authors", BuilderOptions(cfg, nil)...)
	_, _, err := b.ToSQL()
	require.NoError(t, err)

	_, err = b.Get(context.Background())
	assert.ErrorIs(t, err, types.ErrStatementConsumed)
}

func TestSQLiteRoundTrip(t *testing.T) {
	conn := openMemory(t)
	ctx := context.Background()
	createAuthors(t, conn)

	for i := 1; i <= 12; i++ {
		_, err := Table(conn, "authors").Insert(ctx, map[string]any{
			"email": fmt.Sprintf("author%02d@bow.test", i),
			"books": i,
		})
		require.NoError(t, err)
	}

	count, err := Table(conn, "authors").Where("books", ">", 6).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(6), count)

	first, err := Table(conn, "authors").Where("email", "author03@bow.test").First(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, first["books"])

	page, err := Table(conn, "authors").OrderBy("id").Paginate(ctx, 5, 3)
	require.NoError(t, err)
	assert.Len(t, page.Data, 2)
	assert.Equal(t, 3, page.Total)
	assert.False(t, page.HasNext())

	sum, err := Table(conn, "authors").Aggregate(ctx, AggregateSum, "books")
	require.NoError(t, err)
	assert.InDelta(t, 78, sum, 0.001)

	updated, err := Table(conn, "authors").Where("books", "<", 3).Update(ctx, map[string]any{"books": 100})
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)

	removed, err := Table(conn, "authors").Remove(ctx, "books", 100)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)
}

func TestSQLiteTransaction(t *testing.T) {
	conn := openMemory(t)
	ctx := context.Background()
	createAuthors(t, conn)

	tx, err := conn.Begin(ctx)
	require.NoError(t, err)
	_, err = TableTx(conn, tx, "authors").Insert(ctx, map[string]any{"email": "tx@bow.test"})
	require.NoError(t, err)
	require.NoError(t, tx.Rollback())

	exists, err := Table(conn, "authors").Where("email", "tx@bow.test").Exists(ctx)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestAlterThroughSchema(t *testing.T) {
	conn := openMemory(t)
	createAuthors(t, conn)

	alter := NewSchema(conn, "authors", schema.ModeAlter)
	alter.AddText("bio", schema.ColumnOptions{Nullable: true})
	stmts, err := alter.AlterStatements()
	require.NoError(t, err)
	for _, stmt := range stmts {
		_, err = conn.Exec(context.Background(), stmt)
		require.NoError(t, err)
	}

	_, err = Table(conn, "authors").Insert(context.Background(), map[string]any{"email": "bio@bow.test", "bio": "hello"})
	assert.NoError(t, err)
}

func TestTrackedConnectionLogs(t *testing.T) {
	log := mocks.NewLogger()
	conn, err := NewConnection(&config.DatabaseConfig{Type: SQLite, Database: ":memory:"}, log)
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Exec(context.Background(), "CREATE TABLE t (id INTEGER)")
	require.NoError(t, err)
	assert.Contains(t, log.Messages("debug"), "Database operation executed")

	require.NoError(t, conn.Close())
	require.NoError(t, conn.Close())
}

func TestSQLiteConstraintClassification(t *testing.T) {
	conn := openMemory(t)
	ctx := context.Background()
	createAuthors(t, conn)

	_, err := conn.Exec(ctx, "CREATE TABLE posts (id INTEGER PRIMARY KEY, author_id INTEGER NOT NULL REFERENCES authors(id))")
	require.NoError(t, err)

	_, err = Table(conn, "authors").Insert(ctx, map[string]any{"email": "dup@bow.test"})
	require.NoError(t, err)
	_, err = Table(conn, "authors").Insert(ctx, map[string]any{"email": "dup@bow.test"})
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
	assert.False(t, IsForeignKeyViolation(err))

	_, err = Table(conn, "posts").Insert(ctx, map[string]any{"author_id": 999})
	require.Error(t, err)
	assert.True(t, IsForeignKeyViolation(err))
	assert.False(t, IsUniqueViolation(err))
}

func TestDriverErrorClassification(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		unique  bool
		foreign bool
	}{
		{"nil", nil, false, false},
		{"plain", errors.New("boom"), false, false},
		{"pg unique", &pgconn.PgError{Code: "23505"}, true, false},
		{"pg foreign key", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23503"}), false, true},
		{"pg other", &pgconn.PgError{Code: "42P01"}, false, false},
		{"mysql duplicate", &driver.MySQLError{Number: 1062}, true, false},
		{"mysql no parent", &driver.MySQLError{Number: 1452}, false, true},
		{"mysql has children", &driver.MySQLError{Number: 1451}, false, true},
		{"oracle unique", &network.OracleError{ErrCode: 1}, true, false},
		{"oracle parent", &network.OracleError{ErrCode: 2291}, false, true},
		{"oracle child", &network.OracleError{ErrCode: 2292}, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.unique, IsUniqueViolation(tt.err))
			assert.Equal(t, tt.foreign, IsForeignKeyViolation(tt.err))
		})
	}
}
