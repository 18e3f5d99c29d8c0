// Package dialect describes the SQL backends supported by the query builder
// and the schema generator: identifier quoting, native type mapping, default
// expressions, placeholder format and pagination syntax.
package dialect

import (
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"

	"github.com/bowphp/framework-sub001/database/types"
)

// Type is a logical column type, mapped to a native type by each dialect.
type Type string

const (
	TypeInt       Type = "int"
	TypeBigInt    Type = "bigint"
	TypeSmallInt  Type = "smallint"
	TypeString    Type = "string"
	TypeChar      Type = "char"
	TypeText      Type = "text"
	TypeDatetime  Type = "datetime"
	TypeTimestamp Type = "timestamp"
	TypeDate      Type = "date"
	TypeTime      Type = "time"
	TypeFloat     Type = "float"
	TypeDouble    Type = "double"
	TypeDecimal   Type = "decimal"
	TypeBoolean   Type = "boolean"
	TypeUUID      Type = "uuid"
	TypeJSON      Type = "json"
	TypeBinary    Type = "binary"
)

// IsInteger reports whether t can carry an auto increment.
func (t Type) IsInteger() bool {
	return t == TypeInt || t == TypeBigInt || t == TypeSmallInt
}

func (t Type) isNumeric() bool {
	return t.IsInteger() || t == TypeFloat || t == TypeDouble || t == TypeDecimal
}

const (
	DefaultStringSize = 255
	DefaultPrecision  = 8
	DefaultScale      = 2
)

// TypeOptions carries the column options that influence the native type.
type TypeOptions struct {
	Size          uint
	Precision     uint
	Scale         uint
	AutoIncrement bool
	Unsigned      bool
}

func (o TypeOptions) size() uint {
	if o.Size == 0 {
		return DefaultStringSize
	}
	return o.Size
}

func (o TypeOptions) precision() (uint, uint) {
	if o.Precision == 0 {
		return DefaultPrecision, DefaultScale
	}
	return o.Precision, o.Scale
}

// Layout describes how a dialect orders the clauses of a column definition.
type Layout struct {
	// AddColumnPrefix introduces a column inside ALTER TABLE.
	AddColumnPrefix string
	// DefaultBeforeNull places DEFAULT ahead of the NULL constraint.
	DefaultBeforeNull bool
	// AutoIncrementAfterType places the auto increment token right after the type.
	AutoIncrementAfterType bool
	// AutoIncrementIsPrimary means the auto increment token already declares the primary key.
	AutoIncrementIsPrimary bool
	// SingleAlterAction requires one ALTER TABLE statement per column change.
	SingleAlterAction bool
}

// Dialect is the per-backend descriptor consulted by the query builder and
// the schema generator.
type Dialect interface {
	// Name returns the vendor identifier, one of the types vendor constants.
	Name() string
	QuoteIdentifier(name string) string
	// MapType resolves a logical type; unmappable types fail with types.ErrUnsupportedType.
	MapType(t Type, opts TypeOptions) (string, error)
	AutoIncrementToken() string
	// DefaultExpression resolves symbolic defaults such as CURRENT_TIMESTAMP.
	DefaultExpression(name string) (string, bool)
	Placeholder() squirrel.PlaceholderFormat
	LimitClause(offset, count uint64) string
	TruncateStatement(table string) string
	// Bool renders a boolean literal for DDL defaults.
	Bool(v bool) string
	// NativeBoolean reports whether booleans can be bound as-is.
	NativeBoolean() bool
	// Returning renders the clause that hands back the generated key of an
	// insert. outBinding means the key arrives through an output parameter.
	Returning(column string) (clause string, outBinding bool)
	SupportsReturning() bool
	Layout() Layout
}

// ByName returns the dialect registered under name. Postgres answers to
// "pgsql", "postgres" and "postgresql".
func ByName(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case types.MySQL, "mariadb":
		return MySQL(), nil
	case types.SQLite, "sqlite3":
		return SQLite(), nil
	case types.PostgreSQL, "pgsql", "postgres":
		return Postgres(), nil
	case types.Oracle:
		return Oracle(), nil
	default:
		return nil, fmt.Errorf("%w: %q", types.ErrUnknownDialect, name)
	}
}

// Default is the dialect used when none is selected explicitly.
func Default() Dialect {
	return MySQL()
}

func unsupported(d Dialect, t Type, reason string) error {
	return fmt.Errorf("%w: %s %s on %s", types.ErrUnsupportedType, t, reason, d.Name())
}

// checkAutoIncrement rejects auto increment on non-integer types.
func checkAutoIncrement(d Dialect, t Type, opts TypeOptions) error {
	if opts.AutoIncrement && !t.IsInteger() {
		return unsupported(d, t, "with auto increment")
	}
	return nil
}

// quoteWith quotes each dot-separated part of name. Stars, already quoted
// parts and expressions (anything with parentheses or spaces) pass through.
func quoteWith(name string, quote func(part string) string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" || strings.ContainsAny(trimmed, "( ") {
		return trimmed
	}

	parts := strings.Split(trimmed, ".")
	for i, part := range parts {
		parts[i] = quote(part)
	}
	return strings.Join(parts, ".")
}

func enclose(open, closing byte) func(string) string {
	return func(part string) string {
		if part == "*" || part == "" {
			return part
		}
		if len(part) >= 2 && part[0] == open && part[len(part)-1] == closing {
			return part
		}
		escaped := strings.ReplaceAll(part, string(closing), string(closing)+string(closing))
		return string(open) + escaped + string(closing)
	}
}

func standardDefault(name string) (string, bool) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "CURRENT_TIMESTAMP", "NOW()":
		return "CURRENT_TIMESTAMP", true
	case "CURRENT_DATE":
		return "CURRENT_DATE", true
	case "NULL":
		return "NULL", true
	default:
		return "", false
	}
}

func boolLiteral(v bool) string {
	if v {
		return "1"
	}
	return "0"
}
