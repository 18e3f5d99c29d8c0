package tracking

import (
	"sync"

	"github.com/bowphp/framework-sub001/database/types"
)

// trackedRow defers tracking of a single-row query until the caller reads it,
// since database/sql reports QueryRow failures only on Scan.
type trackedRow struct {
	row    types.Row
	finish func(error)
	once   sync.Once
}

// wrapRow returns row unchanged when either argument is nil.
func wrapRow(row types.Row, finish func(error)) types.Row {
	if row == nil || finish == nil {
		return row
	}
	return &trackedRow{row: row, finish: finish}
}

func (tr *trackedRow) Scan(dest ...any) error {
	err := tr.row.Scan(dest...)
	tr.done(err)
	return err
}

func (tr *trackedRow) Err() error {
	err := tr.row.Err()
	if err != nil {
		tr.done(err)
	}
	return err
}

func (tr *trackedRow) done(err error) {
	tr.once.Do(func() { tr.finish(err) })
}
