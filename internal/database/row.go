package database

// Row is one decoded record. It is immutable and holds no backend state, so
// it can be decoded repeatedly and from several goroutines.
type Row struct {
	columns []string
	cells   []Cell
}

// NewRow pairs column names with their cells. Extra cells or names without a
// cell are dropped.
func NewRow(columns []string, cells []Cell) Row {
	n := min(len(columns), len(cells))
	return Row{
		columns: append([]string(nil), columns[:n]...),
		cells:   append([]Cell(nil), cells[:n]...),
	}
}

// Columns returns the column names in result order.
func (r Row) Columns() []string {
	return append([]string(nil), r.columns...)
}

// Len returns the number of columns.
func (r Row) Len() int { return len(r.columns) }

// Cell looks up a column by exact, case-sensitive name. With duplicate names
// the first one wins.
func (r Row) Cell(column string) (Cell, bool) {
	for i, name := range r.columns {
		if name == column {
			return r.cells[i], true
		}
	}
	return Cell{}, false
}

// Strings renders every cell for display.
func (r Row) Strings() []string {
	out := make([]string, len(r.cells))
	for i, c := range r.cells {
		out[i] = c.String()
	}
	return out
}
