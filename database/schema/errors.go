package schema

import "fmt"

// Error reports a schema contract violation. Err is one of the sentinels in
// the types package (types.ErrUnsupportedType, types.ErrInvalidDefault,
// types.ErrMissingValue) and can be matched with errors.Is.
type Error struct {
	Op     string
	Table  string
	Column string
	Err    error
}

func (e *Error) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("schema %s %s: %v", e.Op, e.Table, e.Err)
	}
	return fmt.Sprintf("schema %s %s.%s: %v", e.Op, e.Table, e.Column, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
