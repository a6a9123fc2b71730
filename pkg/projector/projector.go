// Package projector maps flattened records onto a fixed, ordered column schema.
package projector

import (
	"github.com/dtnitsch/har2csv/pkg/flatten"
	"github.com/dtnitsch/har2csv/pkg/jsonvalue"
)

// Schema is an immutable ordered list of output columns.
type Schema struct {
	columns []string
}

// NewSchema copies columns into a new Schema.
func NewSchema(columns []string) Schema {
	return Schema{columns: append([]string(nil), columns...)}
}

// Columns returns a copy of the column names, in order.
func (s Schema) Columns() []string {
	return append([]string(nil), s.columns...)
}

func (s Schema) Len() int { return len(s.columns) }

// Cell is one projected value. Absent cells carry no value.
type Cell struct {
	Column string
	Value  jsonvalue.Value
	Absent bool
}

// Text renders the cell for CSV output. Absent and null cells are empty.
func (c Cell) Text() string {
	if c.Absent {
		return ""
	}
	return c.Value.Text()
}

// Row holds exactly one cell per schema column, in schema order.
type Row []Cell

// Texts renders every cell of the row.
func (r Row) Texts() []string {
	out := make([]string, len(r))
	for i, c := range r {
		out[i] = c.Text()
	}
	return out
}

// Project restricts rec to the schema. Keys missing from rec become absent cells.
func (s Schema) Project(rec *flatten.Record) Row {
	row := make(Row, len(s.columns))
	for i, col := range s.columns {
		v, ok := rec.Get(col)
		row[i] = Cell{Column: col, Value: v, Absent: !ok}
	}
	return row
}
