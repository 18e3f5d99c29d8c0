package dialect

import (
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"

	"github.com/bowphp/framework-sub001/database/types"
)

type postgresDialect struct{}

// Postgres returns the PostgreSQL dialect.
func Postgres() Dialect { return postgresDialect{} }

func (postgresDialect) Name() string { return types.PostgreSQL }

func (postgresDialect) QuoteIdentifier(name string) string {
	return quoteWith(name, enclose('"', '"'))
}

// MapType swaps integer types for their SERIAL counterparts on auto increment.
func (d postgresDialect) MapType(t Type, opts TypeOptions) (string, error) {
	if err := checkAutoIncrement(d, t, opts); err != nil {
		return "", err
	}

	switch t {
	case TypeInt:
		if opts.AutoIncrement {
			return "SERIAL", nil
		}
		return "INTEGER", nil
	case TypeBigInt:
		if opts.AutoIncrement {
			return "BIGSERIAL", nil
		}
		return "BIGINT", nil
	case TypeSmallInt:
		if opts.AutoIncrement {
			return "SMALLSERIAL", nil
		}
		return "SMALLINT", nil
	case TypeString:
		return fmt.Sprintf("VARCHAR(%d)", opts.size()), nil
	case TypeChar:
		return fmt.Sprintf("CHAR(%d)", opts.size()), nil
	case TypeText:
		return "TEXT", nil
	case TypeDatetime, TypeTimestamp:
		return "TIMESTAMP", nil
	case TypeDate:
		return "DATE", nil
	case TypeTime:
		return "TIME", nil
	case TypeFloat:
		return "REAL", nil
	case TypeDouble:
		return "DOUBLE PRECISION", nil
	case TypeDecimal:
		p, s := opts.precision()
		return fmt.Sprintf("DECIMAL(%d,%d)", p, s), nil
	case TypeBoolean:
		return "BOOLEAN", nil
	case TypeUUID:
		return "UUID", nil
	case TypeJSON:
		return "JSONB", nil
	case TypeBinary:
		return "BYTEA", nil
	default:
		return "", unsupported(d, t, "type")
	}
}

// AutoIncrementToken is empty: the SERIAL type carries the sequence.
func (postgresDialect) AutoIncrementToken() string { return "" }

func (postgresDialect) DefaultExpression(name string) (string, bool) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "UUID()", "UUID", "GEN_RANDOM_UUID()":
		return "gen_random_uuid()", true
	}
	return standardDefault(name)
}

func (postgresDialect) Placeholder() squirrel.PlaceholderFormat { return squirrel.Dollar }

func (postgresDialect) LimitClause(offset, count uint64) string {
	return fmt.Sprintf("LIMIT %d OFFSET %d", count, offset)
}

func (d postgresDialect) TruncateStatement(table string) string {
	return "TRUNCATE TABLE " + d.QuoteIdentifier(table)
}

func (postgresDialect) Bool(v bool) string {
	if v {
		return "TRUE"
	}
	return "FALSE"
}

func (postgresDialect) NativeBoolean() bool { return true }

func (d postgresDialect) Returning(column string) (string, bool) {
	return "RETURNING " + d.QuoteIdentifier(column), false
}

func (postgresDialect) SupportsReturning() bool { return true }

func (postgresDialect) Layout() Layout {
	return Layout{AddColumnPrefix: "ADD COLUMN "}
}
