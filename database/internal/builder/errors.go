package builder

import "fmt"

// Error reports a query builder contract violation. Err is one of the
// sentinels in the types package and can be matched with errors.Is.
type Error struct {
	Op     string
	Table  string
	Column string
	Err    error
}

func (e *Error) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("query builder %s on %s: %v", e.Op, e.Table, e.Err)
	}
	return fmt.Sprintf("query builder %s on %s.%s: %v", e.Op, e.Table, e.Column, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (b *Builder) fail(op, column string, err error) error {
	return &Error{Op: op, Table: b.table, Column: column, Err: err}
}
