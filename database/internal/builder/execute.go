package builder

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/Masterminds/squirrel"

	"github.com/bowphp/framework-sub001/database/types"
)

// Driver errors are returned unchanged; only contract violations and
// statement assembly failures are produced here.

func (b *Builder) prepare(ctx context.Context, query string) (types.Statement, error) {
	return b.conn.Prepare(ctx, query)
}

func (b *Builder) query(ctx context.Context, query string, args []any) (Rows, error) {
	stmt, err := b.prepare(ctx, query)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	rows, err := stmt.Query(ctx, b.binder.Values(args)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRows(rows)
}

func (b *Builder) queryRow(ctx context.Context, query string, args []any, dest ...any) error {
	stmt, err := b.prepare(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	return stmt.QueryRow(ctx, b.binder.Values(args)...).Scan(dest...)
}

func (b *Builder) execute(ctx context.Context, query string, args []any) (sql.Result, error) {
	stmt, err := b.prepare(ctx, query)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	return stmt.Exec(ctx, b.binder.Values(args)...)
}

func (b *Builder) affected(ctx context.Context, s squirrel.Sqlizer, op string) (int64, error) {
	query, args, err := s.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build %s on %s: %w", op, b.table, err)
	}
	res, err := b.execute(ctx, query, args)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Get runs the SELECT and returns every row. An empty result is an empty,
// non-nil Rows.
func (b *Builder) Get(ctx context.Context, columns ...string) (Rows, error) {
	if err := b.begin("get"); err != nil {
		return nil, err
	}
	defer b.finish()

	if len(columns) > 0 && !(len(columns) == 1 && columns[0] == "*") {
		b.columns = append([]string(nil), columns...)
	}
	return b.get(ctx)
}

func (b *Builder) get(ctx context.Context) (Rows, error) {
	query, args, err := b.compileSelect(b.projection(), true)
	if err != nil {
		return nil, err
	}
	return b.query(ctx, query, args)
}

// First runs the SELECT limited to one row. It returns nil when nothing
// matches.
func (b *Builder) First(ctx context.Context) (Row, error) {
	if err := b.begin("first"); err != nil {
		return nil, err
	}
	defer b.finish()

	b.limit.count = 1
	b.limit.hasCount = true

	rows, err := b.get(ctx)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

// Count runs SELECT COUNT(column), COUNT(*) without a column. WHERE, JOIN,
// GROUP BY and HAVING apply and are cleared; ORDER BY and LIMIT are dropped.
func (b *Builder) Count(ctx context.Context, column ...string) (int64, error) {
	if err := b.begin("count"); err != nil {
		return 0, err
	}
	defer b.finish()

	return b.count(ctx, column...)
}

func (b *Builder) count(ctx context.Context, column ...string) (int64, error) {
	target := "*"
	if len(column) > 0 && column[0] != "" && column[0] != "*" {
		target = b.quote(column[0])
	}

	query, args, err := b.compileSelect([]string{"COUNT(" + target + ")"}, false)
	if err != nil {
		return 0, err
	}

	var n sql.NullInt64
	if err := b.queryRow(ctx, query, args, &n); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return n.Int64, nil
}

// Insert inserts one row. Values that are themselves map[string]any are
// extracted as bulk rows and inserted first, one statement each; the
// remaining entries form one final row. The affected counts are summed.
func (b *Builder) Insert(ctx context.Context, values map[string]any) (int64, error) {
	if err := b.begin("insert"); err != nil {
		return 0, err
	}
	defer b.finish()
	b.compiled()

	if len(values) == 0 {
		return 0, b.fail("insert", "", types.ErrMissingValue)
	}

	var bulk []map[string]any
	single := make(map[string]any, len(values))
	for _, key := range sortedKeys(values) {
		if nested, ok := values[key].(map[string]any); ok {
			bulk = append(bulk, nested)
			continue
		}
		single[key] = values[key]
	}
	if len(single) > 0 {
		bulk = append(bulk, single)
	}
	return b.insertRows(ctx, bulk)
}

// InsertMany inserts each row as its own statement and sums the affected
// counts.
func (b *Builder) InsertMany(ctx context.Context, rows []map[string]any) (int64, error) {
	if err := b.begin("insert_many"); err != nil {
		return 0, err
	}
	defer b.finish()
	b.compiled()

	if len(rows) == 0 {
		return 0, b.fail("insert_many", "", types.ErrMissingValue)
	}
	return b.insertRows(ctx, rows)
}

func (b *Builder) insertRows(ctx context.Context, rows []map[string]any) (int64, error) {
	var total int64
	for _, row := range rows {
		ins, err := b.insertStatement(row)
		if err != nil {
			return total, err
		}
		n, err := b.affected(ctx, ins, "insert")
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (b *Builder) insertStatement(row map[string]any) (squirrel.InsertBuilder, error) {
	if len(row) == 0 {
		return squirrel.InsertBuilder{}, b.fail("insert", "", types.ErrMissingValue)
	}

	keys := sortedKeys(row)
	columns := make([]string, len(keys))
	values := make([]any, len(keys))
	for i, k := range keys {
		columns[i] = b.quote(k)
		values[i] = row[k]
	}
	return b.statements().Insert(b.quotedTable()).Columns(columns...).Values(values...), nil
}

// InsertGetID inserts one row and returns the generated primary key:
// LastInsertId on MySQL and SQLite, RETURNING on Postgres and Oracle.
func (b *Builder) InsertGetID(ctx context.Context, values map[string]any) (int64, error) {
	if err := b.begin("insert_get_id"); err != nil {
		return 0, err
	}
	defer b.finish()
	b.compiled()

	ins, err := b.insertStatement(values)
	if err != nil {
		return 0, err
	}

	if !b.dialect.SupportsReturning() {
		query, args, err := ins.ToSql()
		if err != nil {
			return 0, fmt.Errorf("failed to build insert on %s: %w", b.table, err)
		}
		res, err := b.execute(ctx, query, args)
		if err != nil {
			return 0, err
		}
		return res.LastInsertId()
	}

	var id int64
	clause, outBinding := b.dialect.Returning(b.primaryKey)
	if outBinding {
		ins = ins.Suffix(clause, sql.Out{Dest: &id})
		query, args, err := ins.ToSql()
		if err != nil {
			return 0, fmt.Errorf("failed to build insert on %s: %w", b.table, err)
		}
		if _, err := b.execute(ctx, query, args); err != nil {
			return 0, err
		}
		return id, nil
	}

	query, args, err := ins.Suffix(clause).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build insert on %s: %w", b.table, err)
	}
	if err := b.queryRow(ctx, query, args, &id); err != nil {
		return 0, err
	}
	return id, nil
}

// Update sets values on every row matching the pending WHERE chain. Without
// a WHERE chain every row in the table is updated.
func (b *Builder) Update(ctx context.Context, values map[string]any) (int64, error) {
	if err := b.begin("update"); err != nil {
		return 0, err
	}
	defer b.finish()

	if len(values) == 0 {
		b.compiled()
		return 0, b.fail("update", "", types.ErrMissingValue)
	}

	upd := b.statements().Update(b.quotedTable())
	for _, k := range sortedKeys(values) {
		upd = upd.Set(b.quote(k), values[k])
	}
	if where := b.whereClause(); where != nil {
		upd = upd.Where(where)
	}
	b.compiled()

	return b.affected(ctx, upd, "update")
}

// Increment adds step (default 1) to column on every matching row.
func (b *Builder) Increment(ctx context.Context, column string, step ...int64) (int64, error) {
	return b.shift(ctx, "increment", column, "+", step)
}

// Decrement subtracts step (default 1) from column on every matching row.
func (b *Builder) Decrement(ctx context.Context, column string, step ...int64) (int64, error) {
	return b.shift(ctx, "decrement", column, "-", step)
}

func (b *Builder) shift(ctx context.Context, op, column, sign string, step []int64) (int64, error) {
	if err := b.begin(op); err != nil {
		return 0, err
	}
	defer b.finish()

	by := int64(1)
	if len(step) > 0 {
		by = step[0]
	}

	col := b.quote(column)
	upd := b.statements().Update(b.quotedTable()).Set(col, squirrel.Expr(col+" "+sign+" ?", by))
	if where := b.whereClause(); where != nil {
		upd = upd.Where(where)
	}
	b.compiled()

	return b.affected(ctx, upd, op)
}

// Delete removes every row matching the pending WHERE chain. Without a
// WHERE chain the table is emptied.
func (b *Builder) Delete(ctx context.Context) (int64, error) {
	if err := b.begin("delete"); err != nil {
		return 0, err
	}
	defer b.finish()

	del := b.statements().Delete(b.quotedTable())
	if where := b.whereClause(); where != nil {
		del = del.Where(where)
	}
	b.compiled()

	return b.affected(ctx, del, "delete")
}

// Remove replaces the WHERE chain with a single comparison and deletes.
func (b *Builder) Remove(ctx context.Context, column string, args ...any) (int64, error) {
	if b.err != nil {
		return 0, b.err
	}
	b.wheres = nil
	if err := b.Where(column, args...).Err(); err != nil {
		return 0, err
	}
	return b.Delete(ctx)
}

// Truncate empties the table with the dialect's truncate statement.
func (b *Builder) Truncate(ctx context.Context) (bool, error) {
	return b.passthrough(ctx, "truncate", b.dialect.TruncateStatement(b.table))
}

// Drop drops the table.
func (b *Builder) Drop(ctx context.Context) (bool, error) {
	return b.passthrough(ctx, "drop", "DROP TABLE "+b.quotedTable())
}

func (b *Builder) passthrough(ctx context.Context, op, query string) (bool, error) {
	if err := b.begin(op); err != nil {
		return false, err
	}
	defer b.finish()
	b.compiled()

	if _, err := b.execute(ctx, query, nil); err != nil {
		return false, err
	}
	return true, nil
}

// Exists reports whether a row matches. No argument checks the pending
// WHERE chain, one argument is a primary key value, two are column and value.
func (b *Builder) Exists(ctx context.Context, args ...any) (bool, error) {
	switch len(args) {
	case 0:
	case 1:
		b.Where(b.primaryKey, args[0])
	case 2:
		column, ok := args[0].(string)
		if !ok {
			return false, b.fail("exists", "", types.ErrInvalidArgument)
		}
		b.Where(column, args[1])
	default:
		return false, b.fail("exists", "", types.ErrInvalidArgument)
	}

	n, err := b.Count(ctx)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
