package builder

import (
	"strings"

	"github.com/bowphp/framework-sub001/database/types"
)

type joinKind string

const (
	joinInner joinKind = "INNER JOIN"
	joinLeft  joinKind = "LEFT JOIN"
	joinRight joinKind = "RIGHT JOIN"
)

type joinCondition struct {
	first     string
	operator  string
	second    string
	connector string
}

type joinClause struct {
	kind  joinKind
	table string
	on    []joinCondition
}

// JoinClause collects the ON conditions of one join. It is handed to the
// callbacks passed to Join, LeftJoin and RightJoin.
type JoinClause struct {
	join *joinClause
	err  error
}

// On adds "first op second", AND-ed with earlier conditions. args is
// (second) or (operator, second); the operator defaults to "=".
func (j *JoinClause) On(first string, args ...string) *JoinClause {
	return j.add(first, connectorAnd, args)
}

// OrOn adds a condition OR-ed with earlier ones.
func (j *JoinClause) OrOn(first string, args ...string) *JoinClause {
	return j.add(first, connectorOr, args)
}

func (j *JoinClause) add(first, connector string, args []string) *JoinClause {
	if j.err != nil {
		return j
	}
	cond, err := parseJoinCondition(first, connector, args)
	if err != nil {
		j.err = err
		return j
	}
	j.join.on = append(j.join.on, cond)
	return j
}

func parseJoinCondition(first, connector string, args []string) (joinCondition, error) {
	switch len(args) {
	case 1:
		return joinCondition{first: first, operator: "=", second: args[0], connector: connector}, nil
	case 2:
		op, ok := asOperator(args[0])
		if !ok {
			return joinCondition{}, types.ErrInvalidOperator
		}
		return joinCondition{first: first, operator: op, second: args[1], connector: connector}, nil
	case 0:
		return joinCondition{}, types.ErrMissingValue
	default:
		return joinCondition{}, types.ErrInvalidArgument
	}
}

// Join appends an INNER JOIN.
//
//	b.Join("posts", func(j *builder.JoinClause) { j.On("users.id", "posts.user_id") })
func (b *Builder) Join(table string, on ...func(*JoinClause)) *Builder {
	return b.join("join", joinInner, table, on)
}

// LeftJoin appends a LEFT JOIN.
func (b *Builder) LeftJoin(table string, on ...func(*JoinClause)) *Builder {
	return b.join("left_join", joinLeft, table, on)
}

// RightJoin appends a RIGHT JOIN.
func (b *Builder) RightJoin(table string, on ...func(*JoinClause)) *Builder {
	return b.join("right_join", joinRight, table, on)
}

// join fails when the previous join is still open (no ON condition) and is
// of a different kind.
func (b *Builder) join(op string, kind joinKind, table string, on []func(*JoinClause)) *Builder {
	return b.mutate(func() error {
		if n := len(b.joins); n > 0 {
			prev := b.joins[n-1]
			if len(prev.on) == 0 && prev.kind != kind {
				return b.fail(op, table, types.ErrConflictingJoin)
			}
		}

		jc := &joinClause{kind: kind, table: table}
		clause := &JoinClause{join: jc}
		for _, fn := range on {
			fn(clause)
		}
		if clause.err != nil {
			return b.fail(op, table, clause.err)
		}
		b.joins = append(b.joins, jc)
		return nil
	})
}

// On attaches a condition to the most recent join.
func (b *Builder) On(first string, args ...string) *Builder {
	return b.onJoin("on", first, connectorAnd, args)
}

// OrOn attaches an OR-ed condition to the most recent join.
func (b *Builder) OrOn(first string, args ...string) *Builder {
	return b.onJoin("or_on", first, connectorOr, args)
}

func (b *Builder) onJoin(op, first, connector string, args []string) *Builder {
	return b.mutate(func() error {
		if len(b.joins) == 0 {
			return b.fail(op, first, types.ErrNoOpenJoin)
		}
		cond, err := parseJoinCondition(first, connector, args)
		if err != nil {
			return b.fail(op, first, err)
		}
		last := b.joins[len(b.joins)-1]
		last.on = append(last.on, cond)
		return nil
	})
}

func (j *joinClause) render(quote func(string) string) string {
	var sb strings.Builder
	sb.WriteString(string(j.kind))
	sb.WriteString(" ")
	sb.WriteString(quote(j.table))

	for i, c := range j.on {
		if i == 0 {
			sb.WriteString(" ON ")
		} else {
			sb.WriteString(" " + c.connector + " ")
		}
		sb.WriteString(quote(c.first) + " " + c.operator + " " + quote(c.second))
	}
	return sb.String()
}
