package schema

// Chainable column helpers. A failure is recorded on the table and returned
// by Err and Make; the optional ColumnOptions argument overrides the
// defaults each helper sets.

func first(opts []ColumnOptions) ColumnOptions {
	if len(opts) > 0 {
		return opts[0]
	}
	return ColumnOptions{}
}

// AddIncrements adds an unsigned auto increment integer primary key.
func (t *Table) AddIncrements(name string) *Table {
	return t.add(name, Int, ColumnOptions{AutoIncrement: true, Primary: true, Unsigned: true})
}

// AddBigIncrements adds an unsigned auto increment bigint primary key.
func (t *Table) AddBigIncrements(name string) *Table {
	return t.add(name, BigInt, ColumnOptions{AutoIncrement: true, Primary: true, Unsigned: true})
}

func (t *Table) AddInteger(name string, opts ...ColumnOptions) *Table {
	return t.add(name, Int, first(opts))
}

func (t *Table) AddBigInteger(name string, opts ...ColumnOptions) *Table {
	return t.add(name, BigInt, first(opts))
}

func (t *Table) AddSmallInteger(name string, opts ...ColumnOptions) *Table {
	return t.add(name, SmallInt, first(opts))
}

// AddString adds a VARCHAR column; a zero Size means 255.
func (t *Table) AddString(name string, opts ...ColumnOptions) *Table {
	return t.add(name, String, first(opts))
}

func (t *Table) AddChar(name string, opts ...ColumnOptions) *Table {
	return t.add(name, Char, first(opts))
}

func (t *Table) AddText(name string, opts ...ColumnOptions) *Table {
	return t.add(name, Text, first(opts))
}

func (t *Table) AddBoolean(name string, opts ...ColumnOptions) *Table {
	return t.add(name, Boolean, first(opts))
}

func (t *Table) AddFloat(name string, opts ...ColumnOptions) *Table {
	return t.add(name, Float, first(opts))
}

func (t *Table) AddDouble(name string, opts ...ColumnOptions) *Table {
	return t.add(name, Double, first(opts))
}

// AddDecimal adds a fixed point column; a zero Precision means (8,2).
func (t *Table) AddDecimal(name string, opts ...ColumnOptions) *Table {
	return t.add(name, Decimal, first(opts))
}

func (t *Table) AddDate(name string, opts ...ColumnOptions) *Table {
	return t.add(name, Date, first(opts))
}

func (t *Table) AddTime(name string, opts ...ColumnOptions) *Table {
	return t.add(name, Time, first(opts))
}

func (t *Table) AddDatetime(name string, opts ...ColumnOptions) *Table {
	return t.add(name, Datetime, first(opts))
}

func (t *Table) AddTimestamp(name string, opts ...ColumnOptions) *Table {
	return t.add(name, Timestamp, first(opts))
}

func (t *Table) AddUUID(name string, opts ...ColumnOptions) *Table {
	return t.add(name, UUID, first(opts))
}

func (t *Table) AddJSON(name string, opts ...ColumnOptions) *Table {
	return t.add(name, JSON, first(opts))
}

func (t *Table) AddBinary(name string, opts ...ColumnOptions) *Table {
	return t.add(name, Binary, first(opts))
}

// AddTimestamps adds created_at and updated_at datetime columns defaulting
// to the current timestamp.
func (t *Table) AddTimestamps() *Table {
	o := ColumnOptions{Default: CurrentTimestamp}
	return t.add("created_at", Datetime, o).add("updated_at", Datetime, o)
}
