package builder

import (
	"database/sql/driver"
	"time"

	"github.com/google/uuid"

	"github.com/bowphp/framework-sub001/database/dialect"
	"github.com/bowphp/framework-sub001/database/types"
)

// Hint is the type hint attached to a bound value.
type Hint int

const (
	HintNull Hint = iota
	HintBool
	HintInt
	HintFloat
	HintString
	HintTime
	HintBytes
	HintOther
)

func (h Hint) String() string {
	switch h {
	case HintNull:
		return "null"
	case HintBool:
		return "bool"
	case HintInt:
		return "int"
	case HintFloat:
		return "float"
	case HintString:
		return "string"
	case HintTime:
		return "time"
	case HintBytes:
		return "bytes"
	default:
		return "other"
	}
}

// Binding is one positional parameter: its 1-based position, the value
// handed to the driver and the hint it was bound with.
type Binding struct {
	Position int
	Value    any
	Hint     Hint
}

// Binder normalizes values for the active dialect before they reach the
// driver. Strings are bound as-is; escaping is the prepared statement's job.
type Binder struct {
	dialect dialect.Dialect
}

// NewBinder returns a Binder for d.
func NewBinder(d dialect.Dialect) *Binder {
	return &Binder{dialect: d}
}

// Bind assigns positions and normalized values to args.
func (bd *Binder) Bind(args []any) []Binding {
	out := make([]Binding, len(args))
	for i, arg := range args {
		value, hint := bd.normalize(arg)
		out[i] = Binding{Position: i + 1, Value: value, Hint: hint}
	}
	return out
}

// Values returns the normalized values of args in order.
func (bd *Binder) Values(args []any) []any {
	bindings := bd.Bind(args)
	out := make([]any, len(bindings))
	for i, b := range bindings {
		out[i] = b.Value
	}
	return out
}

func (bd *Binder) normalize(v any) (any, Hint) {
	switch x := v.(type) {
	case nil:
		return nil, HintNull
	case bool:
		if bd.dialect.NativeBoolean() {
			return x, HintBool
		}
		if x {
			return int64(1), HintBool
		}
		return int64(0), HintBool
	case int:
		return int64(x), HintInt
	case int8:
		return int64(x), HintInt
	case int16:
		return int64(x), HintInt
	case int32:
		return int64(x), HintInt
	case int64:
		return x, HintInt
	case uint:
		return uint64(x), HintInt
	case uint8:
		return int64(x), HintInt
	case uint16:
		return int64(x), HintInt
	case uint32:
		return int64(x), HintInt
	case uint64:
		return x, HintInt
	case float32:
		return float64(x), HintFloat
	case float64:
		return x, HintFloat
	case string:
		return x, HintString
	case []byte:
		return x, HintBytes
	case time.Time:
		return bd.normalizeTime(x), HintTime
	case uuid.UUID:
		if bd.dialect.Name() == types.PostgreSQL {
			return x, HintString
		}
		return x.String(), HintString
	case driver.Valuer:
		return x, HintOther
	default:
		return x, HintOther
	}
}

// normalizeTime stores SQLite timestamps as UTC text in the same layout as
// CURRENT_TIMESTAMP so both compare as strings.
func (bd *Binder) normalizeTime(t time.Time) any {
	if bd.dialect.Name() == types.SQLite {
		return t.UTC().Format(time.DateTime)
	}
	return t
}
