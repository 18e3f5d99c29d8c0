package schema

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bowphp/framework-sub001/database/dialect"
	"github.com/bowphp/framework-sub001/database/types"
)

// Type is a logical column type.
type Type = dialect.Type

// Logical column types.
const (
	Int       = dialect.TypeInt
	BigInt    = dialect.TypeBigInt
	SmallInt  = dialect.TypeSmallInt
	String    = dialect.TypeString
	Char      = dialect.TypeChar
	Text      = dialect.TypeText
	Datetime  = dialect.TypeDatetime
	Timestamp = dialect.TypeTimestamp
	Date      = dialect.TypeDate
	Time      = dialect.TypeTime
	Float     = dialect.TypeFloat
	Double    = dialect.TypeDouble
	Decimal   = dialect.TypeDecimal
	Boolean   = dialect.TypeBoolean
	UUID      = dialect.TypeUUID
	JSON      = dialect.TypeJSON
	Binary    = dialect.TypeBinary
)

// CurrentTimestamp is the symbolic default resolved per dialect.
const CurrentTimestamp = "CURRENT_TIMESTAMP"

// Raw is a default expression emitted verbatim, without quoting.
type Raw string

// ColumnOptions configures a column. The zero value is a NOT NULL column
// with no default.
type ColumnOptions struct {
	// Size applies to string and char; 0 means 255.
	Size uint
	// Precision and Scale apply to decimal; 0 precision means (8,2).
	Precision uint
	Scale     uint
	// Default is nil for none, a Raw expression, a symbolic name such as
	// CURRENT_TIMESTAMP, or a literal string, number, bool or time.Time.
	Default       any
	Nullable      bool
	Primary       bool
	Unique        bool
	AutoIncrement bool
	Unsigned      bool
}

func (o ColumnOptions) typeOptions() dialect.TypeOptions {
	return dialect.TypeOptions{
		Size:          o.Size,
		Precision:     o.Precision,
		Scale:         o.Scale,
		AutoIncrement: o.AutoIncrement,
		Unsigned:      o.Unsigned,
	}
}

// Column is an immutable column specification.
type Column struct {
	Name    string
	Type    Type
	Options ColumnOptions
}

// definition renders "<name> TYPE [NOT NULL|NULL] [DEFAULT v] [PRIMARY KEY] [UNIQUE] [auto increment]"
// with the clause order adjusted by the dialect layout.
func (c Column) definition(d dialect.Dialect) (string, error) {
	native, err := d.MapType(c.Type, c.Options.typeOptions())
	if err != nil {
		return "", err
	}

	def, err := renderDefault(d, c.Options.Default)
	if err != nil {
		return "", err
	}

	layout := d.Layout()
	parts := []string{d.QuoteIdentifier(c.Name), native}

	autoToken := ""
	if c.Options.AutoIncrement {
		autoToken = d.AutoIncrementToken()
	}
	if layout.AutoIncrementAfterType && autoToken != "" {
		parts = append(parts, autoToken)
		autoToken = ""
	}

	null := "NOT NULL"
	if c.Options.Nullable {
		null = "NULL"
	}

	switch {
	case def == "":
		parts = append(parts, null)
	case layout.DefaultBeforeNull:
		parts = append(parts, "DEFAULT "+def, null)
	default:
		parts = append(parts, null, "DEFAULT "+def)
	}

	if c.Options.Primary && !(autoToken != "" && layout.AutoIncrementIsPrimary) {
		parts = append(parts, "PRIMARY KEY")
	}
	if c.Options.Unique {
		parts = append(parts, "UNIQUE")
	}
	if autoToken != "" {
		parts = append(parts, autoToken)
	}

	return strings.Join(parts, " "), nil
}

func renderDefault(d dialect.Dialect, value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case Raw:
		return string(v), nil
	case string:
		if expr, ok := d.DefaultExpression(v); ok {
			return expr, nil
		}
		return quoteLiteral(v), nil
	case bool:
		return d.Bool(v), nil
	case int:
		return strconv.Itoa(v), nil
	case int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", v), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case time.Time:
		return quoteLiteral(v.UTC().Format(time.DateTime)), nil
	case fmt.Stringer:
		return quoteLiteral(v.String()), nil
	default:
		return "", fmt.Errorf("%w: %T", types.ErrInvalidDefault, value)
	}
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
