package builder

import (
	"reflect"
	"strings"

	"github.com/Masterminds/squirrel"

	"github.com/bowphp/framework-sub001/database/types"
)

const (
	connectorAnd = "AND"
	connectorOr  = "OR"
)

type predicateKind int

const (
	kindCompare predicateKind = iota
	kindNull
	kindNotNull
	kindBetween
	kindNotBetween
	kindIn
	kindNotIn
)

// predicate is one node of a WHERE or HAVING chain. connector joins it to
// the previous node and is ignored on the first one.
type predicate struct {
	kind      predicateKind
	column    string
	operator  string
	values    []any
	connector string
}

var comparisonOperators = map[string]struct{}{
	"=": {}, ">": {}, "<": {}, ">=": {}, "<=": {}, "<>": {}, "!=": {}, "LIKE": {}, "NOT LIKE": {},
}

func normalizeKeyword(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), " "))
}

func asOperator(v any) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	op := normalizeKeyword(s)
	_, known := comparisonOperators[op]
	return op, known
}

func parseConnector(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", types.ErrInvalidConnector
	}
	switch normalizeKeyword(s) {
	case connectorAnd:
		return connectorAnd, nil
	case connectorOr:
		return connectorOr, nil
	default:
		return "", types.ErrInvalidConnector
	}
}

func optionalConnector(connector []string) (string, error) {
	if len(connector) == 0 {
		return connectorAnd, nil
	}
	return parseConnector(connector[0])
}

// parseComparison resolves the argument forms (value), (value, connector),
// (operator, value) and (operator, value, connector). The operator slot only
// counts as an operator when it holds a recognised comparison token;
// otherwise it is the value and "=" is used. In the three argument form that
// leaves args[1] unused, which is reported through dropped.
func parseComparison(args []any) (op string, value any, connector string, dropped bool, err error) {
	op, connector = "=", connectorAnd

	switch len(args) {
	case 0:
		return "", nil, "", false, types.ErrMissingValue
	case 1:
		value = args[0]
	case 2:
		if known, ok := asOperator(args[0]); ok {
			op, value = known, args[1]
			break
		}
		value = args[0]
		if connector, err = parseConnector(args[1]); err != nil {
			return "", nil, "", false, err
		}
	case 3:
		if known, ok := asOperator(args[0]); ok {
			op, value = known, args[1]
		} else {
			value, dropped = args[0], true
		}
		if connector, err = parseConnector(args[2]); err != nil {
			return "", nil, "", false, err
		}
	default:
		return "", nil, "", false, types.ErrInvalidArgument
	}

	if isNil(value) {
		return "", nil, "", false, types.ErrMissingValue
	}
	return op, value, connector, dropped, nil
}

// isNil reports untyped nil and nil pointers, maps, slices, channels,
// functions and interfaces.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}

func (b *Builder) comparison(op, column string, args []any) (string, any, string, error) {
	operator, value, connector, dropped, err := parseComparison(args)
	if err != nil {
		return "", nil, "", b.fail(op, column, err)
	}
	if dropped {
		b.log.Warn().
			Str("table", b.table).
			Str("column", column).
			Str("operation", op).
			Interface("ignored", args[1]).
			Msg("Unrecognised comparison operator used as the value, second argument ignored")
	}
	return operator, value, connector, nil
}

// toSlice spreads any slice or array into []any. []byte is a scalar.
func toSlice(v any) ([]any, bool) {
	if v == nil {
		return nil, false
	}
	if _, ok := v.([]byte); ok {
		return nil, false
	}
	if values, ok := v.([]any); ok {
		return values, true
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

func (b *Builder) addWhere(p predicate) error {
	if p.connector == "" {
		p.connector = connectorAnd
	}
	b.wheres = append(b.wheres, p)
	return nil
}

// Where appends a comparison. args is (value), (value, connector),
// (operator, value) or (operator, value, connector); the operator defaults
// to "=" and the connector to "and".
//
//	b.Where("age", ">", 18).Where("status", "active", "or")
func (b *Builder) Where(column string, args ...any) *Builder {
	return b.mutate(func() error {
		op, value, connector, err := b.comparison("where", column, args)
		if err != nil {
			return err
		}
		return b.addWhere(predicate{
			kind: kindCompare, column: column, operator: op, values: []any{value}, connector: connector,
		})
	})
}

// OrWhere appends a comparison joined with OR. It fails when no predicate
// precedes it.
func (b *Builder) OrWhere(column string, args ...any) *Builder {
	return b.mutate(func() error {
		if len(b.wheres) == 0 {
			return b.fail("or_where", column, types.ErrNoPrecedingWhere)
		}
		op, value, _, err := b.comparison("or_where", column, args)
		if err != nil {
			return err
		}
		return b.addWhere(predicate{
			kind: kindCompare, column: column, operator: op, values: []any{value}, connector: connectorOr,
		})
	})
}

// WhereNull appends column IS NULL.
func (b *Builder) WhereNull(column string, connector ...string) *Builder {
	return b.whereNullity("where_null", kindNull, column, connector)
}

// WhereNotNull appends column IS NOT NULL.
func (b *Builder) WhereNotNull(column string, connector ...string) *Builder {
	return b.whereNullity("where_not_null", kindNotNull, column, connector)
}

func (b *Builder) whereNullity(op string, kind predicateKind, column string, connector []string) *Builder {
	return b.mutate(func() error {
		conn, err := optionalConnector(connector)
		if err != nil {
			return b.fail(op, column, err)
		}
		return b.addWhere(predicate{kind: kind, column: column, connector: conn})
	})
}

// WhereBetween appends column BETWEEN low AND high. bounds must be a slice
// of exactly two values.
func (b *Builder) WhereBetween(column string, bounds any, connector ...string) *Builder {
	return b.whereRange("where_between", kindBetween, column, bounds, connector)
}

// WhereNotBetween appends column NOT BETWEEN low AND high.
func (b *Builder) WhereNotBetween(column string, bounds any, connector ...string) *Builder {
	return b.whereRange("where_not_between", kindNotBetween, column, bounds, connector)
}

func (b *Builder) whereRange(op string, kind predicateKind, column string, bounds any, connector []string) *Builder {
	return b.mutate(func() error {
		values, ok := toSlice(bounds)
		if !ok || len(values) != 2 {
			return b.fail(op, column, types.ErrInvalidRange)
		}
		if isNil(values[0]) || isNil(values[1]) {
			return b.fail(op, column, types.ErrMissingValue)
		}
		conn, err := optionalConnector(connector)
		if err != nil {
			return b.fail(op, column, err)
		}
		return b.addWhere(predicate{kind: kind, column: column, values: values, connector: conn})
	})
}

// WhereIn appends column IN (...), binding one placeholder per element.
func (b *Builder) WhereIn(column string, values any, connector ...string) *Builder {
	return b.whereList("where_in", kindIn, column, values, connector)
}

// WhereNotIn appends column NOT IN (...).
func (b *Builder) WhereNotIn(column string, values any, connector ...string) *Builder {
	return b.whereList("where_not_in", kindNotIn, column, values, connector)
}

func (b *Builder) whereList(op string, kind predicateKind, column string, values any, connector []string) *Builder {
	return b.mutate(func() error {
		list, ok := toSlice(values)
		if !ok {
			return b.fail(op, column, types.ErrInvalidArgument)
		}
		if len(list) == 0 {
			return b.fail(op, column, types.ErrEmptyRange)
		}
		conn, err := optionalConnector(connector)
		if err != nil {
			return b.fail(op, column, err)
		}
		return b.addWhere(predicate{kind: kind, column: column, values: list, connector: conn})
	})
}

// Having appends a HAVING comparison with the same argument forms as Where.
// It is accepted without GroupBy.
func (b *Builder) Having(column string, args ...any) *Builder {
	return b.mutate(func() error {
		op, value, connector, err := b.comparison("having", column, args)
		if err != nil {
			return err
		}
		b.havings = append(b.havings, predicate{
			kind: kindCompare, column: column, operator: op, values: []any{value}, connector: connector,
		})
		return nil
	})
}

func (p predicate) render(quote func(string) string) (string, []any) {
	col := quote(p.column)

	switch p.kind {
	case kindNull:
		return col + " IS NULL", nil
	case kindNotNull:
		return col + " IS NOT NULL", nil
	case kindBetween:
		return col + " BETWEEN ? AND ?", p.values
	case kindNotBetween:
		return col + " NOT BETWEEN ? AND ?", p.values
	case kindIn, kindNotIn:
		keyword := " IN ("
		if p.kind == kindNotIn {
			keyword = " NOT IN ("
		}
		return col + keyword + squirrel.Placeholders(len(p.values)) + ")", p.values
	default:
		return col + " " + p.operator + " ?", p.values
	}
}

// renderPredicates joins a chain left to right with its connectors, without
// adding parentheses. An empty chain yields nil.
func renderPredicates(chain []predicate, quote func(string) string) squirrel.Sqlizer {
	if len(chain) == 0 {
		return nil
	}

	var sb strings.Builder
	args := make([]any, 0, len(chain))
	for i, p := range chain {
		if i > 0 {
			sb.WriteString(" " + p.connector + " ")
		}
		sql, values := p.render(quote)
		sb.WriteString(sql)
		args = append(args, values...)
	}
	return squirrel.Expr(sb.String(), args...)
}
