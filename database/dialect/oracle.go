package dialect

import (
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"

	"github.com/bowphp/framework-sub001/database/types"
)

type oracleDialect struct{}

// Oracle returns the Oracle dialect (12c and later, for identity columns
// and OFFSET/FETCH pagination).
func Oracle() Dialect { return oracleDialect{} }

func (oracleDialect) Name() string { return types.Oracle }

// QuoteIdentifier leaves plain identifiers unquoted so Oracle keeps folding
// them to upper case. Reserved words are quoted in upper case, identifiers
// with characters outside [A-Za-z0-9_$#] are quoted as written.
func (oracleDialect) QuoteIdentifier(name string) string {
	return quoteWith(name, oracleQuotePart)
}

func oracleQuotePart(part string) string {
	if part == "" || part == "*" {
		return part
	}
	if len(part) >= 2 && part[0] == '"' && part[len(part)-1] == '"' {
		return part
	}
	if IsOracleReservedWord(part) {
		return `"` + strings.ToUpper(part) + `"`
	}
	if oracleNeedsQuoting(part) {
		return `"` + part + `"`
	}
	return part
}

func oracleNeedsQuoting(identifier string) bool {
	first := identifier[0]
	if first >= '0' && first <= '9' {
		return true
	}

	for _, r := range identifier {
		if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '$' || r == '#' {
			continue
		}
		return true
	}

	return false
}

func (d oracleDialect) MapType(t Type, opts TypeOptions) (string, error) {
	if err := checkAutoIncrement(d, t, opts); err != nil {
		return "", err
	}

	switch t {
	case TypeInt:
		return "NUMBER(10)", nil
	case TypeBigInt:
		return "NUMBER(19)", nil
	case TypeSmallInt:
		return "NUMBER(5)", nil
	case TypeString:
		return fmt.Sprintf("VARCHAR2(%d)", opts.size()), nil
	case TypeChar:
		return fmt.Sprintf("CHAR(%d)", opts.size()), nil
	case TypeText:
		return "CLOB", nil
	case TypeDatetime, TypeTimestamp:
		return "TIMESTAMP", nil
	case TypeDate:
		return "DATE", nil
	case TypeFloat:
		return "BINARY_FLOAT", nil
	case TypeDouble:
		return "BINARY_DOUBLE", nil
	case TypeDecimal:
		p, s := opts.precision()
		return fmt.Sprintf("NUMBER(%d,%d)", p, s), nil
	case TypeBoolean:
		return "NUMBER(1)", nil
	case TypeUUID:
		return "VARCHAR2(36)", nil
	case TypeBinary:
		return "BLOB", nil
	default:
		// time and json have no faithful native counterpart
		return "", unsupported(d, t, "type")
	}
}

func (oracleDialect) AutoIncrementToken() string { return "GENERATED BY DEFAULT AS IDENTITY" }

func (oracleDialect) DefaultExpression(name string) (string, bool) {
	return standardDefault(name)
}

func (oracleDialect) Placeholder() squirrel.PlaceholderFormat { return squirrel.Colon }

func (oracleDialect) LimitClause(offset, count uint64) string {
	return fmt.Sprintf("OFFSET %d ROWS FETCH NEXT %d ROWS ONLY", offset, count)
}

func (d oracleDialect) TruncateStatement(table string) string {
	return "TRUNCATE TABLE " + d.QuoteIdentifier(table)
}

func (oracleDialect) Bool(v bool) string { return boolLiteral(v) }

func (oracleDialect) NativeBoolean() bool { return false }

// Returning binds the generated key to an output parameter.
func (d oracleDialect) Returning(column string) (string, bool) {
	return "RETURNING " + d.QuoteIdentifier(column) + " INTO ?", true
}

func (oracleDialect) SupportsReturning() bool { return true }

func (oracleDialect) Layout() Layout {
	return Layout{
		AddColumnPrefix:        "ADD ",
		DefaultBeforeNull:      true,
		AutoIncrementAfterType: true,
		SingleAlterAction:      true,
	}
}
