package builder

import (
	"database/sql"
	"fmt"
)

// Row is one result row keyed by column name. []byte values are converted to
// string.
type Row map[string]any

// Rows is an ordered result set.
type Rows []Row

// Chunk partitions rows into groups of size; the last group may be shorter.
// A size of zero or less returns a single group.
func (r Rows) Chunk(size int) []Rows {
	if size <= 0 || len(r) <= size {
		return []Rows{r}
	}
	chunks := make([]Rows, 0, (len(r)+size-1)/size)
	for start := 0; start < len(r); start += size {
		end := min(start+size, len(r))
		chunks = append(chunks, r[start:end])
	}
	return chunks
}

// Pluck returns the values of column in row order.
func (r Rows) Pluck(column string) []any {
	out := make([]any, len(r))
	for i, row := range r {
		out[i] = row[column]
	}
	return out
}

func scanRows(rows *sql.Rows) (Rows, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read result columns: %w", err)
	}

	out := Rows{}
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, err
		}

		row := make(Row, len(columns))
		for i, col := range columns {
			if raw, ok := values[i].([]byte); ok {
				row[col] = string(raw)
				continue
			}
			row[col] = values[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
