// Package builder implements the fluent SQL query builder: clause
// accumulation, compilation into a single parameterized statement, execution
// through a prepared statement, and pagination.
//
// A Builder is owned by one caller and compiles one statement per terminal
// call. Compiling clears every clause, so reusing a builder after a terminal
// call starts from an unfiltered SELECT * FROM table.
package builder

import (
	"github.com/bowphp/framework-sub001/database/dialect"
	"github.com/bowphp/framework-sub001/database/types"
	"github.com/bowphp/framework-sub001/logger"
)

// DefaultPrimaryKey is the column Exists matches when given a single value.
const DefaultPrimaryKey = "id"

// State is the lifecycle position of a Builder.
type State int

const (
	// StateAccumulating means clauses are being collected.
	StateAccumulating State = iota
	// StateCompiled means the clauses were rendered into SQL and cleared.
	StateCompiled
	// StateConsumed means a terminal call finished with this statement.
	StateConsumed
)

func (s State) String() string {
	switch s {
	case StateCompiled:
		return "compiled"
	case StateConsumed:
		return "consumed"
	default:
		return "accumulating"
	}
}

// Executor is the connection capability the builder needs. types.Interface
// and types.Tx both satisfy it.
type Executor = types.Preparer

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger used for lifecycle warnings.
func WithLogger(log logger.Logger) Option {
	return func(b *Builder) {
		if log != nil {
			b.log = log
		}
	}
}

// WithPrimaryKey sets the column Exists uses for a single-value lookup.
func WithPrimaryKey(column string) Option {
	return func(b *Builder) {
		if column != "" {
			b.primaryKey = column
		}
	}
}

// WithStrict makes terminal calls on a consumed builder fail with
// types.ErrStatementConsumed instead of running against the cleared state.
func WithStrict() Option {
	return func(b *Builder) { b.strict = true }
}

// WithStickyLimit restores the legacy Jump/Take coupling: Jump is ignored
// once a limit exists and Take keeps any captured offset.
func WithStickyLimit() Option {
	return func(b *Builder) { b.sticky = true }
}

type limitSpec struct {
	offset    uint64
	count     uint64
	hasOffset bool
	hasCount  bool
}

type orderSpec struct {
	column    string
	direction string
}

// Builder accumulates the clauses of one statement against one table.
// It is not safe for concurrent use.
type Builder struct {
	conn       Executor
	dialect    dialect.Dialect
	binder     *Binder
	log        logger.Logger
	table      string
	primaryKey string
	strict     bool
	sticky     bool

	columns []string
	wheres  []predicate
	joins   []*joinClause
	groupBy string
	havings []predicate
	order   *orderSpec
	limit   limitSpec

	state State
	err   error
}

// New creates a Builder for table. A nil dialect selects the default one.
func New(conn Executor, d dialect.Dialect, table string, opts ...Option) *Builder {
	if d == nil {
		d = dialect.Default()
	}

	b := &Builder{
		conn:       conn,
		dialect:    d,
		binder:     NewBinder(d),
		log:        logger.Nop(),
		table:      table,
		primaryKey: DefaultPrimaryKey,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Table returns the table the builder targets.
func (b *Builder) Table() string { return b.table }

// Dialect returns the dialect the builder compiles for.
func (b *Builder) Dialect() dialect.Dialect { return b.dialect }

// State reports the lifecycle position.
func (b *Builder) State() State { return b.state }

// Err returns the first contract violation recorded by a clause call.
func (b *Builder) Err() error { return b.err }

// Reset clears every clause, the recorded error and the lifecycle state.
func (b *Builder) Reset() *Builder {
	b.clearClauses()
	b.err = nil
	b.state = StateAccumulating
	return b
}

func (b *Builder) clearClauses() {
	b.columns = nil
	b.wheres = nil
	b.joins = nil
	b.groupBy = ""
	b.havings = nil
	b.order = nil
	b.limit = limitSpec{}
}

// mutate guards every clause call: it is a no-op once an error is recorded
// and moves a compiled or consumed builder back to accumulating.
func (b *Builder) mutate(fn func() error) *Builder {
	if b.err != nil {
		return b
	}
	b.state = StateAccumulating
	if err := fn(); err != nil {
		b.err = err
	}
	return b
}

// begin is called by every terminal operation before compiling.
func (b *Builder) begin(op string) error {
	if b.err != nil {
		return b.err
	}
	if b.state == StateAccumulating {
		return nil
	}
	if b.strict {
		return &Error{Op: op, Table: b.table, Err: types.ErrStatementConsumed}
	}
	b.log.Warn().
		Str("table", b.table).
		Str("operation", op).
		Str("state", b.state.String()).
		Msg("Query builder reused after its statement was consumed, running without clauses")
	return nil
}

func (b *Builder) finish() {
	b.state = StateConsumed
}

func (b *Builder) quote(column string) string {
	return b.dialect.QuoteIdentifier(column)
}

func (b *Builder) quotedTable() string {
	return b.quote(b.table)
}

// Select sets the projection. No columns, or a single "*", selects every
// column. The last call wins.
func (b *Builder) Select(columns ...string) *Builder {
	return b.mutate(func() error {
		if len(columns) == 0 || (len(columns) == 1 && columns[0] == "*") {
			b.columns = nil
			return nil
		}
		b.columns = append([]string(nil), columns...)
		return nil
	})
}

// GroupBy sets the GROUP BY column.
func (b *Builder) GroupBy(column string) *Builder {
	return b.mutate(func() error {
		b.groupBy = column
		return nil
	})
}

// OrderBy sets the ORDER BY column. Directions other than ASC and DESC
// fall back to ASC. The last call wins.
func (b *Builder) OrderBy(column string, direction ...string) *Builder {
	return b.mutate(func() error {
		dir := "ASC"
		if len(direction) > 0 && normalizeKeyword(direction[0]) == "DESC" {
			dir = "DESC"
		}
		b.order = &orderSpec{column: column, direction: dir}
		return nil
	})
}

// Jump sets the row offset.
func (b *Builder) Jump(offset uint64) *Builder {
	return b.mutate(func() error {
		if b.sticky && (b.limit.hasOffset || b.limit.hasCount) {
			return nil
		}
		b.limit.offset = offset
		b.limit.hasOffset = true
		return nil
	})
}

// Take sets the row count. Without a prior Jump the offset is 0.
func (b *Builder) Take(count uint64) *Builder {
	return b.mutate(func() error {
		if b.limit.hasCount && !b.sticky {
			b.log.Warn().
				Str("table", b.table).
				Uint64("previous", b.limit.count).
				Uint64("count", count).
				Msg("Take called twice, replacing the row count")
		}
		b.limit.count = count
		b.limit.hasCount = true
		return nil
	})
}

// snapshot captures the filter state Paginate restores after fetching a page.
type snapshot struct {
	wheres []predicate
	joins  []*joinClause
}

func (b *Builder) snapshot() snapshot {
	return snapshot{
		wheres: append([]predicate(nil), b.wheres...),
		joins:  append([]*joinClause(nil), b.joins...),
	}
}

func (b *Builder) restore(s snapshot) {
	b.wheres = s.wheres
	b.joins = s.joins
}
