package component

import "fmt"

// Row is one record of a Table, positionally aligned with the column list.
type Row []any

// Table is the columnar payload flowing between steps.
type Table struct {
	Columns []string
	Rows    []Row
}

// NewTable creates a table with the given column list and no rows.
func NewTable(columns ...string) *Table {
	return &Table{Columns: columns}
}

// NumRows returns the row count.
func (t *Table) NumRows() int { return len(t.Rows) }

// ColumnNames returns the column list.
func (t *Table) ColumnNames() []string { return t.Columns }

// ColumnIndex returns the position of name, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Append adds a row. The row length must match the column list.
func (t *Table) Append(row Row) error {
	if len(row) != len(t.Columns) {
		return fmt.Errorf("row has %d values, table has %d columns", len(row), len(t.Columns))
	}
	t.Rows = append(t.Rows, row)
	return nil
}

// Project returns a new table restricted to the named columns, in the given
// order. Unknown columns are an error.
func (t *Table) Project(columns ...string) (*Table, error) {
	idx := make([]int, len(columns))
	for i, c := range columns {
		j := t.ColumnIndex(c)
		if j < 0 {
			return nil, fmt.Errorf("unknown column %q", c)
		}
		idx[i] = j
	}
	out := NewTable(columns...)
	for _, row := range t.Rows {
		next := make(Row, len(idx))
		for i, j := range idx {
			next[i] = row[j]
		}
		out.Rows = append(out.Rows, next)
	}
	return out, nil
}

// Packet is the value handed from one step to the next within a pipeline
// invocation. Metadata carries step-scoped annotations (producer id, row
// counts); the core never interprets it.
type Packet struct {
	Data     *Table
	Metadata map[string]any
}

// NewPacket wraps a table with empty metadata.
func NewPacket(data *Table) *Packet {
	return &Packet{Data: data, Metadata: map[string]any{}}
}
