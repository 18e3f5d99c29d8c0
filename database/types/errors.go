//revive:disable-next-line:var-naming // Package name "types" avoids circular imports.
package types

import "errors"

// Sentinel errors for query builder and schema contract violations.
// Builders wrap them with the failing operation and column; match with errors.Is.
var (
	// ErrMissingValue is returned when a predicate has no value to bind.
	ErrMissingValue = errors.New("missing value")

	// ErrInvalidConnector is returned when a connector is neither "and" nor "or".
	ErrInvalidConnector = errors.New("invalid connector")

	// ErrInvalidOperator is returned when a join condition operator is not recognised.
	ErrInvalidOperator = errors.New("invalid operator")

	// ErrInvalidArgument is returned when a variadic argument list has the wrong shape.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNoPrecedingWhere is returned by OrWhere when no predicate exists yet.
	ErrNoPrecedingWhere = errors.New("no preceding where clause")

	// ErrInvalidRange is returned when a BETWEEN range does not have exactly two bounds
	// or a page size is not positive.
	ErrInvalidRange = errors.New("invalid range")

	// ErrEmptyRange is returned when an IN list is empty.
	ErrEmptyRange = errors.New("empty range")

	// ErrConflictingJoin is returned when a join of a different kind follows a join without ON.
	ErrConflictingJoin = errors.New("conflicting join")

	// ErrNoOpenJoin is returned when On is called before any join.
	ErrNoOpenJoin = errors.New("no open join")

	// ErrStatementConsumed is returned in strict mode when a consumed builder is executed again.
	ErrStatementConsumed = errors.New("statement already consumed")

	// ErrUnsupportedType is returned when a column type has no native mapping in the dialect.
	ErrUnsupportedType = errors.New("unsupported column type")

	// ErrInvalidDefault is returned when a column default cannot be rendered as a literal.
	ErrInvalidDefault = errors.New("invalid column default")

	// ErrUnknownDialect is returned for an unrecognised dialect name.
	ErrUnknownDialect = errors.New("unknown dialect")
)
