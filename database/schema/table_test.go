package schema

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bowphp/framework-sub001/database/dialect"
	"github.com/bowphp/framework-sub001/database/types"
	"github.com/bowphp/framework-sub001/logger"
)

const (
	postsTable = "posts"
	whenColumn = "when"
)

func TestAddColumnDatetimeDefaultPerDialect(t *testing.T) {
	tests := []struct {
		adapter  string
		expected string
	}{
		{adapter: "sqlite", expected: "`when` TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP"},
		{adapter: "mysql", expected: "`when` DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP"},
		{adapter: "pgsql", expected: `"when" TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP`},
		{adapter: "oracle", expected: "when TIMESTAMP DEFAULT CURRENT_TIMESTAMP NOT NULL"},
	}

	for _, tt := range tests {
		t.Run(tt.adapter, func(t *testing.T) {
			table := New(postsTable, ModeCreate)
			require.NoError(t, table.SetAdapter(tt.adapter))
			require.NoError(t, table.AddColumn(whenColumn, Datetime, ColumnOptions{Default: CurrentTimestamp}))

			got, err := table.Make()
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestIncrementsPerDialect(t *testing.T) {
	tests := []struct {
		dialect  dialect.Dialect
		expected string
	}{
		{dialect: dialect.MySQL(), expected: "`id` INT UNSIGNED NOT NULL PRIMARY KEY AUTO_INCREMENT"},
		{dialect: dialect.SQLite(), expected: "`id` INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT"},
		{dialect: dialect.Postgres(), expected: `"id" SERIAL NOT NULL PRIMARY KEY`},
		{dialect: dialect.Oracle(), expected: "id NUMBER(10) GENERATED BY DEFAULT AS IDENTITY NOT NULL PRIMARY KEY"},
	}

	for _, tt := range tests {
		t.Run(tt.dialect.Name(), func(t *testing.T) {
			table := New(postsTable, ModeCreate, WithDialect(tt.dialect)).AddIncrements("id")
			got, err := table.Make()
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestMakeJoinsColumnsBeforeDrops(t *testing.T) {
	table := New(postsTable, ModeCreate, WithDialect(dialect.MySQL()))
	table.DropColumn("legacy")
	table.AddString("title", ColumnOptions{Size: 80}).
		AddText("body", ColumnOptions{Nullable: true}).
		AddString("slug", ColumnOptions{Unique: true})

	got, err := table.Make()
	require.NoError(t, err)
	assert.Equal(t,
		"`title` VARCHAR(80) NOT NULL, `body` TEXT NULL, `slug` VARCHAR(255) NOT NULL UNIQUE, DROP COLUMN `legacy`",
		got)
}

func TestDropColumnTwiceEmitsTwoFragments(t *testing.T) {
	table := New(postsTable, ModeAlter, WithDialect(dialect.MySQL()))
	table.DropColumn("name").DropColumn("name")

	got, err := table.Make()
	require.NoError(t, err)
	assert.Equal(t, "DROP COLUMN `name`, DROP COLUMN `name`", got)
}

func TestAlterModePrefixes(t *testing.T) {
	table := New(postsTable, ModeAlter, WithDialect(dialect.Postgres()))
	table.AddBoolean("published", ColumnOptions{Default: false}).DropColumn("draft")

	got, err := table.Make()
	require.NoError(t, err)
	assert.Equal(t, `ADD COLUMN "published" BOOLEAN NOT NULL DEFAULT FALSE, DROP COLUMN "draft"`, got)

	oracle := New(postsTable, ModeAlter, WithDialect(dialect.Oracle()))
	oracle.AddInteger("views", ColumnOptions{Default: 0})
	got, err = oracle.Make()
	require.NoError(t, err)
	assert.Equal(t, "ADD views NUMBER(10) DEFAULT 0 NOT NULL", got)
}

func TestAlterStatements(t *testing.T) {
	mysql := New(postsTable, ModeAlter, WithDialect(dialect.MySQL()))
	mysql.AddInteger("views").DropColumn("hits")
	stmts, err := mysql.AlterStatements()
	require.NoError(t, err)
	assert.Equal(t, []string{"ALTER TABLE `posts` ADD COLUMN `views` INT NOT NULL, DROP COLUMN `hits`;"}, stmts)

	sqlite := New(postsTable, ModeAlter, WithDialect(dialect.SQLite()))
	sqlite.AddInteger("views", ColumnOptions{Default: 0}).DropColumn("hits")
	stmts, err = sqlite.AlterStatements()
	require.NoError(t, err)
	assert.Equal(t, []string{
		"ALTER TABLE `posts` ADD COLUMN `views` INTEGER NOT NULL DEFAULT 0;",
		"ALTER TABLE `posts` DROP COLUMN `hits`;",
	}, stmts)

	empty := New(postsTable, ModeAlter, WithDialect(dialect.SQLite()))
	stmts, err = empty.AlterStatements()
	require.NoError(t, err)
	assert.Empty(t, stmts)
}

func TestCreateAndDropStatement(t *testing.T) {
	table := New(postsTable, ModeCreate, WithDialect(dialect.SQLite()))
	table.AddIncrements("id").AddString("title")

	stmt, err := table.CreateStatement()
	require.NoError(t, err)
	assert.Equal(t,
		"CREATE TABLE IF NOT EXISTS `posts` (`id` INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT, `title` VARCHAR(255) NOT NULL);",
		stmt)
	assert.Equal(t, "DROP TABLE IF EXISTS `posts`;", table.DropStatement())
}

func TestAddTimestamps(t *testing.T) {
	table := New(postsTable, ModeCreate, WithDialect(dialect.Postgres())).AddTimestamps()
	got, err := table.Make()
	require.NoError(t, err)
	assert.Equal(t,
		`"created_at" TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP, "updated_at" TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP`,
		got)
	require.Len(t, table.Columns(), 2)
}

func TestUnsupportedTypeFailsAtAddColumn(t *testing.T) {
	table := New(postsTable, ModeCreate, WithDialect(dialect.Oracle()))

	err := table.AddColumn("payload", JSON)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrUnsupportedType)

	var schemaErr *Error
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, "add_column", schemaErr.Op)
	assert.Equal(t, "payload", schemaErr.Column)
	assert.Empty(t, table.Columns())

	err = table.AddColumn("title", String, ColumnOptions{AutoIncrement: true})
	assert.ErrorIs(t, err, types.ErrUnsupportedType)

	err = table.AddColumn(" ", String)
	assert.ErrorIs(t, err, types.ErrMissingValue)
}

func TestChainableHelperRecordsFirstError(t *testing.T) {
	table := New(postsTable, ModeCreate, WithDialect(dialect.Oracle()))
	table.AddJSON("meta").AddTime("at").AddString("title")

	assert.ErrorIs(t, table.Err(), types.ErrUnsupportedType)
	assert.Contains(t, table.Err().Error(), "meta")
	assert.Len(t, table.Columns(), 1)

	_, err := table.Make()
	assert.ErrorIs(t, err, types.ErrUnsupportedType)
	_, err = table.CreateStatement()
	assert.ErrorIs(t, err, types.ErrUnsupportedType)
}

func TestSetAdapterRevalidates(t *testing.T) {
	table := New(postsTable, ModeCreate)
	require.NoError(t, table.SetAdapter("pgsql"))
	require.NoError(t, table.AddJSON("meta").Err())

	err := table.SetAdapter("oracle")
	assert.ErrorIs(t, err, types.ErrUnsupportedType)
	assert.Equal(t, types.PostgreSQL, table.Dialect().Name(), "failed switch keeps the previous dialect")

	err = table.SetAdapter("mssql")
	assert.ErrorIs(t, err, types.ErrUnknownDialect)

	require.NoError(t, table.SetAdapter("sqlite"))
	got, err := table.Make()
	require.NoError(t, err)
	assert.Equal(t, "`meta` TEXT NOT NULL", got)
}

func TestMakeWarnsWithoutAdapter(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, "warn", false, nil)

	table := New(postsTable, ModeCreate, WithLogger(log)).AddString("title")
	got, err := table.Make()
	require.NoError(t, err)
	assert.Equal(t, "`title` VARCHAR(255) NOT NULL", got)
	assert.Contains(t, buf.String(), "No schema adapter set")

	buf.Reset()
	explicit := New(postsTable, ModeCreate, WithLogger(log), WithDialect(dialect.MySQL())).AddString("title")
	_, err = explicit.Make()
	require.NoError(t, err)
	assert.Empty(t, buf.String())
}

func TestDefaultRendering(t *testing.T) {
	stamp := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)

	tests := []struct {
		name     string
		typ      Type
		value    any
		expected string
	}{
		{name: "string_literal", typ: String, value: "draft", expected: "`c` VARCHAR(255) NOT NULL DEFAULT 'draft'"},
		{name: "escaped_quote", typ: String, value: "it's", expected: "`c` VARCHAR(255) NOT NULL DEFAULT 'it''s'"},
		{name: "raw", typ: Int, value: Raw("(1 + 1)"), expected: "`c` INT NOT NULL DEFAULT (1 + 1)"},
		{name: "int", typ: Int, value: 42, expected: "`c` INT NOT NULL DEFAULT 42"},
		{name: "int64", typ: BigInt, value: int64(-7), expected: "`c` BIGINT NOT NULL DEFAULT -7"},
		{name: "float", typ: Double, value: 1.5, expected: "`c` DOUBLE NOT NULL DEFAULT 1.5"},
		{name: "bool", typ: Boolean, value: true, expected: "`c` TINYINT(1) NOT NULL DEFAULT 1"},
		{name: "time", typ: Datetime, value: stamp, expected: "`c` DATETIME NOT NULL DEFAULT '2024-05-01 12:30:00'"},
		{name: "current_date", typ: Date, value: "CURRENT_DATE", expected: "`c` DATE NOT NULL DEFAULT (CURRENT_DATE)"},
		{name: "null", typ: String, value: "NULL", expected: "`c` VARCHAR(255) NULL DEFAULT NULL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := New(postsTable, ModeCreate, WithDialect(dialect.MySQL()))
			opts := ColumnOptions{Default: tt.value, Nullable: tt.name == "null"}
			require.NoError(t, table.AddColumn("c", tt.typ, opts))

			got, err := table.Make()
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	table := New(postsTable, ModeCreate, WithDialect(dialect.MySQL()))
	err := table.AddColumn("c", String, ColumnOptions{Default: []int{1}})
	assert.ErrorIs(t, err, types.ErrInvalidDefault)
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "create", ModeCreate.String())
	assert.Equal(t, "alter", ModeAlter.String())
}
