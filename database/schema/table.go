// Package schema compiles column definitions into dialect-correct DDL for
// CREATE TABLE and ALTER TABLE statements.
//
//	t := schema.New("posts", schema.ModeCreate, schema.WithDialect(dialect.SQLite()))
//	t.AddIncrements("id").AddString("title").AddTimestamps()
//	stmt, err := t.CreateStatement()
//
// A column whose type has no native mapping in the active dialect is rejected
// when it is added, not when the statement is compiled.
package schema

import (
	"strings"

	"github.com/bowphp/framework-sub001/database/dialect"
	"github.com/bowphp/framework-sub001/database/types"
	"github.com/bowphp/framework-sub001/logger"
)

// Mode selects how the compiled fragment is embedded.
type Mode int

const (
	// ModeCreate emits bare column definitions for CREATE TABLE.
	ModeCreate Mode = iota
	// ModeAlter prefixes column definitions with the dialect's ADD keyword.
	ModeAlter
)

func (m Mode) String() string {
	if m == ModeAlter {
		return "alter"
	}
	return "create"
}

// Option configures a Table.
type Option func(*Table)

// WithDialect sets the active dialect at construction.
func WithDialect(d dialect.Dialect) Option {
	return func(t *Table) {
		if d != nil {
			t.dialect = d
			t.explicit = true
		}
	}
}

// WithLogger sets the logger used for dialect fallback warnings.
func WithLogger(log logger.Logger) Option {
	return func(t *Table) {
		if log != nil {
			t.log = log
		}
	}
}

// Table accumulates column specifications and drop markers for one table.
// It is not safe for concurrent use.
type Table struct {
	name     string
	mode     Mode
	dialect  dialect.Dialect
	explicit bool
	log      logger.Logger

	columns []Column
	drops   []string
	err     error
}

// New creates a Table. Without WithDialect or SetAdapter the default dialect
// is used and Make logs a warning.
func New(table string, mode Mode, opts ...Option) *Table {
	t := &Table{
		name:    table,
		mode:    mode,
		dialect: dialect.Default(),
		log:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Name returns the table name.
func (t *Table) Name() string { return t.name }

// Mode returns the compile mode.
func (t *Table) Mode() Mode { return t.mode }

// Dialect returns the active dialect.
func (t *Table) Dialect() dialect.Dialect { return t.dialect }

// Columns returns a copy of the accumulated columns.
func (t *Table) Columns() []Column {
	out := make([]Column, len(t.columns))
	copy(out, t.columns)
	return out
}

// SetAdapter switches the active dialect by name and re-validates every
// column already added. On failure the previous dialect stays active.
func (t *Table) SetAdapter(name string) error {
	d, err := dialect.ByName(name)
	if err != nil {
		return &Error{Op: "set_adapter", Table: t.name, Err: err}
	}

	for _, c := range t.columns {
		if _, err := c.definition(d); err != nil {
			return &Error{Op: "set_adapter", Table: t.name, Column: c.Name, Err: err}
		}
	}

	t.dialect = d
	t.explicit = true
	return nil
}

// AddColumn appends a column after checking that its type and default
// compile under the active dialect.
func (t *Table) AddColumn(name string, typ Type, opts ...ColumnOptions) error {
	var o ColumnOptions
	if len(opts) > 0 {
		o = opts[0]
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return &Error{Op: "add_column", Table: t.name, Err: types.ErrMissingValue}
	}

	c := Column{Name: name, Type: typ, Options: o}
	if _, err := c.definition(t.dialect); err != nil {
		return &Error{Op: "add_column", Table: t.name, Column: name, Err: err}
	}

	t.columns = append(t.columns, c)
	return nil
}

// DropColumn appends a drop marker. Dropping the same name twice emits two
// DROP COLUMN fragments.
func (t *Table) DropColumn(name string) *Table {
	t.drops = append(t.drops, name)
	return t
}

// Err returns the first error recorded by a chainable helper.
func (t *Table) Err() error {
	return t.err
}

// add backs the chainable helpers: the first failure is kept and later calls
// still run so every valid column is collected.
func (t *Table) add(name string, typ Type, o ColumnOptions) *Table {
	if err := t.AddColumn(name, typ, o); err != nil && t.err == nil {
		t.err = err
	}
	return t
}

// Make compiles the column definitions followed by the drop fragments,
// joined with ", ".
func (t *Table) Make() (string, error) {
	fragments, err := t.fragments()
	if err != nil {
		return "", err
	}
	return strings.Join(fragments, ", "), nil
}

func (t *Table) fragments() ([]string, error) {
	if t.err != nil {
		return nil, t.err
	}
	if !t.explicit {
		t.log.Warn().
			Str("table", t.name).
			Str("dialect", t.dialect.Name()).
			Msg("No schema adapter set, falling back to the default dialect")
	}

	prefix := ""
	if t.mode == ModeAlter {
		prefix = t.dialect.Layout().AddColumnPrefix
	}

	fragments := make([]string, 0, len(t.columns)+len(t.drops))
	for _, c := range t.columns {
		def, err := c.definition(t.dialect)
		if err != nil {
			return nil, &Error{Op: "make", Table: t.name, Column: c.Name, Err: err}
		}
		fragments = append(fragments, prefix+def)
	}
	for _, name := range t.drops {
		fragments = append(fragments, "DROP COLUMN "+t.dialect.QuoteIdentifier(name))
	}
	return fragments, nil
}

// CreateStatement renders CREATE TABLE IF NOT EXISTS <table> (<fragment>);
// On Oracle the IF NOT EXISTS form requires 23ai or later.
func (t *Table) CreateStatement() (string, error) {
	fragment, err := t.Make()
	if err != nil {
		return "", err
	}
	return "CREATE TABLE IF NOT EXISTS " + t.dialect.QuoteIdentifier(t.name) + " (" + fragment + ");", nil
}

// AlterStatements renders ALTER TABLE <table> <fragment>; as one statement,
// or one statement per fragment on dialects that accept a single action per
// ALTER TABLE. No fragments yields no statements.
func (t *Table) AlterStatements() ([]string, error) {
	fragments, err := t.fragments()
	if err != nil {
		return nil, err
	}
	if len(fragments) == 0 {
		return nil, nil
	}

	head := "ALTER TABLE " + t.dialect.QuoteIdentifier(t.name) + " "
	if !t.dialect.Layout().SingleAlterAction {
		return []string{head + strings.Join(fragments, ", ") + ";"}, nil
	}

	stmts := make([]string, 0, len(fragments))
	for _, f := range fragments {
		stmts = append(stmts, head+f+";")
	}
	return stmts, nil
}

// DropStatement renders DROP TABLE IF EXISTS <table>;
func (t *Table) DropStatement() string {
	return "DROP TABLE IF EXISTS " + t.dialect.QuoteIdentifier(t.name) + ";"
}
