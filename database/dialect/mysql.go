package dialect

import (
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"

	"github.com/bowphp/framework-sub001/database/types"
)

type mysqlDialect struct{}

// MySQL returns the MySQL/MariaDB dialect.
func MySQL() Dialect { return mysqlDialect{} }

func (mysqlDialect) Name() string { return types.MySQL }

func (mysqlDialect) QuoteIdentifier(name string) string {
	return quoteWith(name, enclose('`', '`'))
}

func (d mysqlDialect) MapType(t Type, opts TypeOptions) (string, error) {
	if err := checkAutoIncrement(d, t, opts); err != nil {
		return "", err
	}

	var native string
	switch t {
	case TypeInt:
		native = "INT"
	case TypeBigInt:
		native = "BIGINT"
	case TypeSmallInt:
		native = "SMALLINT"
	case TypeString:
		native = fmt.Sprintf("VARCHAR(%d)", opts.size())
	case TypeChar:
		native = fmt.Sprintf("CHAR(%d)", opts.size())
	case TypeText:
		native = "TEXT"
	case TypeDatetime:
		native = "DATETIME"
	case TypeTimestamp:
		native = "TIMESTAMP"
	case TypeDate:
		native = "DATE"
	case TypeTime:
		native = "TIME"
	case TypeFloat:
		native = "FLOAT"
	case TypeDouble:
		native = "DOUBLE"
	case TypeDecimal:
		p, s := opts.precision()
		native = fmt.Sprintf("DECIMAL(%d,%d)", p, s)
	case TypeBoolean:
		native = "TINYINT(1)"
	case TypeUUID:
		native = "CHAR(36)"
	case TypeJSON:
		native = "JSON"
	case TypeBinary:
		native = "BLOB"
	default:
		return "", unsupported(d, t, "type")
	}

	if opts.Unsigned && t.isNumeric() {
		native += " UNSIGNED"
	}
	return native, nil
}

func (mysqlDialect) AutoIncrementToken() string { return "AUTO_INCREMENT" }

func (mysqlDialect) DefaultExpression(name string) (string, bool) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "CURRENT_DATE":
		// expression defaults on DATE columns must be parenthesized
		return "(CURRENT_DATE)", true
	case "UUID()", "UUID":
		return "(UUID())", true
	}
	return standardDefault(name)
}

func (mysqlDialect) Placeholder() squirrel.PlaceholderFormat { return squirrel.Question }

func (mysqlDialect) LimitClause(offset, count uint64) string {
	return fmt.Sprintf("LIMIT %d, %d", offset, count)
}

func (d mysqlDialect) TruncateStatement(table string) string {
	return "TRUNCATE TABLE " + d.QuoteIdentifier(table)
}

func (mysqlDialect) Bool(v bool) string { return boolLiteral(v) }

func (mysqlDialect) NativeBoolean() bool { return false }

func (mysqlDialect) Returning(string) (string, bool) { return "", false }

func (mysqlDialect) SupportsReturning() bool { return false }

func (mysqlDialect) Layout() Layout {
	return Layout{AddColumnPrefix: "ADD COLUMN "}
}
