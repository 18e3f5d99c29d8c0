package dialect

import (
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/bowphp/framework-sub001/database/types"
)

// SQLite stores every temporal value as TEXT and every integer as INTEGER;
// only INTEGER PRIMARY KEY columns may auto increment.
type sqliteDialect struct{}

// SQLite returns the SQLite dialect.
func SQLite() Dialect { return sqliteDialect{} }

func (sqliteDialect) Name() string { return types.SQLite }

func (sqliteDialect) QuoteIdentifier(name string) string {
	return quoteWith(name, enclose('`', '`'))
}

func (d sqliteDialect) MapType(t Type, opts TypeOptions) (string, error) {
	if err := checkAutoIncrement(d, t, opts); err != nil {
		return "", err
	}

	switch t {
	case TypeInt, TypeBigInt, TypeSmallInt, TypeBoolean:
		return "INTEGER", nil
	case TypeString:
		return fmt.Sprintf("VARCHAR(%d)", opts.size()), nil
	case TypeChar:
		return fmt.Sprintf("CHAR(%d)", opts.size()), nil
	case TypeText, TypeDatetime, TypeTimestamp, TypeDate, TypeTime, TypeUUID, TypeJSON:
		return "TEXT", nil
	case TypeFloat, TypeDouble:
		return "REAL", nil
	case TypeDecimal:
		return "NUMERIC", nil
	case TypeBinary:
		return "BLOB", nil
	default:
		return "", unsupported(d, t, "type")
	}
}

func (sqliteDialect) AutoIncrementToken() string { return "PRIMARY KEY AUTOINCREMENT" }

func (sqliteDialect) DefaultExpression(name string) (string, bool) {
	return standardDefault(name)
}

func (sqliteDialect) Placeholder() squirrel.PlaceholderFormat { return squirrel.Question }

func (sqliteDialect) LimitClause(offset, count uint64) string {
	return fmt.Sprintf("LIMIT %d, %d", offset, count)
}

// TruncateStatement uses DELETE FROM, SQLite has no TRUNCATE.
func (d sqliteDialect) TruncateStatement(table string) string {
	return "DELETE FROM " + d.QuoteIdentifier(table)
}

func (sqliteDialect) Bool(v bool) string { return boolLiteral(v) }

func (sqliteDialect) NativeBoolean() bool { return false }

func (sqliteDialect) Returning(string) (string, bool) { return "", false }

func (sqliteDialect) SupportsReturning() bool { return false }

func (sqliteDialect) Layout() Layout {
	return Layout{
		AddColumnPrefix:        "ADD COLUMN ",
		AutoIncrementIsPrimary: true,
		SingleAlterAction:      true,
	}
}
