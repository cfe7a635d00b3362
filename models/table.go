package models

import (
	"time"
)

// DefaultDateLayout is how parsed dates are rendered when a table is written.
const DefaultDateLayout = "2006-01-02"

// CellKind tells which value a Cell carries.
type CellKind int

const (
	KindMissing CellKind = iota
	KindText
	KindDate
)

// Cell is a single table value: missing, raw text, or a parsed calendar date.
type Cell struct {
	Kind CellKind
	Text string
	Date time.Time
}

// Missing returns a missing cell.
func Missing() Cell { return Cell{Kind: KindMissing} }

// Text returns a text cell.
func Text(s string) Cell { return Cell{Kind: KindText, Text: s} }

// Date returns a date cell truncated to the calendar day.
func Date(t time.Time) Cell {
	y, m, d := t.Date()
	return Cell{Kind: KindDate, Date: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func (c Cell) IsMissing() bool { return c.Kind == KindMissing }

// Format renders the cell for output. Missing cells render as "".
func (c Cell) Format(dateLayout string) string {
	switch c.Kind {
	case KindText:
		return c.Text
	case KindDate:
		return c.Date.Format(dateLayout)
	default:
		return ""
	}
}

func (c Cell) String() string { return c.Format(DefaultDateLayout) }

// Equal reports whether two cells hold the same kind and value.
func (c Cell) Equal(o Cell) bool {
	if c.Kind != o.Kind {
		return false
	}
	switch c.Kind {
	case KindText:
		return c.Text == o.Text
	case KindDate:
		return c.Date.Equal(o.Date)
	}
	return true
}

// Table is an in-memory tabular dataset. Every row has len(Columns) cells.
type Table struct {
	Columns []string
	Rows    [][]Cell
}

// NewTable creates an empty table with the given columns.
func NewTable(columns []string) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{Columns: cols, Rows: make([][]Cell, 0)}
}

// Index returns the position of the named column, or -1.
func (t *Table) Index(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	out := NewTable(t.Columns)
	out.Rows = make([][]Cell, len(t.Rows))
	for i, row := range t.Rows {
		out.Rows[i] = append([]Cell(nil), row...)
	}
	return out
}

// Column returns every cell of the named column in row order.
func (t *Table) Column(name string) ([]Cell, bool) {
	idx := t.Index(name)
	if idx < 0 {
		return nil, false
	}
	cells := make([]Cell, len(t.Rows))
	for i, row := range t.Rows {
		cells[i] = row[idx]
	}
	return cells, true
}
