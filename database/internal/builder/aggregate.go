package builder

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bowphp/framework-sub001/database/types"
)

// Aggregate is a single-column aggregate function.
type Aggregate int

const (
	AggregateMax Aggregate = iota + 1
	AggregateMin
	AggregateAvg
	AggregateSum
)

func (a Aggregate) String() string {
	switch a {
	case AggregateMax:
		return "MAX"
	case AggregateMin:
		return "MIN"
	case AggregateAvg:
		return "AVG"
	case AggregateSum:
		return "SUM"
	default:
		return fmt.Sprintf("Aggregate(%d)", int(a))
	}
}

func (a Aggregate) valid() bool {
	return a >= AggregateMax && a <= AggregateSum
}

// Max returns MAX(column) over the matching rows.
func (b *Builder) Max(ctx context.Context, column string) (float64, error) {
	return b.Aggregate(ctx, AggregateMax, column)
}

// Min returns MIN(column) over the matching rows.
func (b *Builder) Min(ctx context.Context, column string) (float64, error) {
	return b.Aggregate(ctx, AggregateMin, column)
}

// Avg returns AVG(column) over the matching rows.
func (b *Builder) Avg(ctx context.Context, column string) (float64, error) {
	return b.Aggregate(ctx, AggregateAvg, column)
}

// Sum returns SUM(column) over the matching rows.
func (b *Builder) Sum(ctx context.Context, column string) (float64, error) {
	return b.Aggregate(ctx, AggregateSum, column)
}

// Aggregate runs fn(column) with the pending WHERE, JOIN, GROUP BY and
// HAVING clauses, then clears them. A NULL result, such as MAX over no rows,
// is 0.
func (b *Builder) Aggregate(ctx context.Context, fn Aggregate, column string) (float64, error) {
	op := "aggregate"
	if fn.valid() {
		op = fn.String()
	}
	if err := b.begin(op); err != nil {
		return 0, err
	}
	defer b.finish()

	if !fn.valid() {
		b.compiled()
		return 0, b.fail(op, column, fmt.Errorf("%w: unknown aggregate %s", types.ErrInvalidArgument, fn))
	}

	query, args, err := b.compileSelect([]string{fn.String() + "(" + b.quote(column) + ")"}, false)
	if err != nil {
		return 0, err
	}

	var v sql.NullFloat64
	if err := b.queryRow(ctx, query, args, &v); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return v.Float64, nil
}
