package builder

import (
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
)

// ToSQL compiles the accumulated clauses into one SELECT and its ordered
// bindings, then clears every clause. Clauses are emitted in the fixed order
// SELECT, JOIN, WHERE, ORDER BY, LIMIT, GROUP BY, HAVING whatever the call
// order was.
func (b *Builder) ToSQL() (string, []any, error) {
	if b.err != nil {
		return "", nil, b.err
	}
	return b.compileSelect(b.projection(), true)
}

func (b *Builder) statements() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(b.dialect.Placeholder())
}

func (b *Builder) projection() []string {
	if len(b.columns) == 0 {
		return []string{"*"}
	}
	out := make([]string, len(b.columns))
	for i, c := range b.columns {
		out[i] = b.quote(c)
	}
	return out
}

// compileSelect renders the statement and clears the clauses. Aggregates pass
// paginated=false, which drops ORDER BY and LIMIT.
func (b *Builder) compileSelect(columns []string, paginated bool) (string, []any, error) {
	defer b.compiled()

	sb := b.statements().Select(columns...).From(b.quotedTable())
	for _, j := range b.joins {
		sb = sb.JoinClause(j.render(b.quote))
	}
	if where := renderPredicates(b.wheres, b.quote); where != nil {
		sb = sb.Where(where)
	}

	if paginated {
		if b.order != nil {
			sb = sb.OrderBy(b.quote(b.order.column) + " " + b.order.direction)
		}
		if b.limit.hasCount {
			sb = sb.Suffix(b.dialect.LimitClause(b.limit.offset, b.limit.count))
		}
	}

	if group, args := b.groupClause(); group != "" {
		sb = sb.Suffix(group, args...)
	}

	sql, args, err := sb.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("failed to build select on %s: %w", b.table, err)
	}
	return sql, args, nil
}

func (b *Builder) groupClause() (string, []any) {
	var parts []string
	var args []any

	if b.groupBy != "" {
		parts = append(parts, "GROUP BY "+b.quote(b.groupBy))
	}
	if having := renderPredicates(b.havings, b.quote); having != nil {
		if b.groupBy == "" {
			b.log.Debug().Str("table", b.table).Msg("HAVING compiled without GROUP BY")
		}
		sql, havingArgs, _ := having.ToSql()
		parts = append(parts, "HAVING "+sql)
		args = havingArgs
	}
	return strings.Join(parts, " "), args
}

// whereClause renders the pending WHERE chain for UPDATE and DELETE.
func (b *Builder) whereClause() squirrel.Sqlizer {
	return renderPredicates(b.wheres, b.quote)
}

func (b *Builder) compiled() {
	b.clearClauses()
	b.state = StateCompiled
}
