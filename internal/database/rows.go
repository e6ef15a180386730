package database

import "iter"

// RowSequence is the fully materialized result of one statement. Walking it
// never touches the backend.
type RowSequence struct {
	columns []string
	rows    []Row
}

// NewRowSequence wraps rows that are already in memory. columns describes
// the result shape and is kept even when there are no rows.
func NewRowSequence(columns []string, rows []Row) RowSequence {
	return RowSequence{columns: columns, rows: rows}
}

// Columns returns the result column names.
func (s RowSequence) Columns() []string {
	return append([]string(nil), s.columns...)
}

// Len returns the number of rows.
func (s RowSequence) Len() int { return len(s.rows) }

// Collect returns every row, independent of any iterator. It never fails and
// returns an empty, non-nil slice for an empty result.
func (s RowSequence) Collect() []Row {
	return append(make([]Row, 0, len(s.rows)), s.rows...)
}

// First returns the first row, if any.
func (s RowSequence) First() (Row, bool) {
	if len(s.rows) == 0 {
		return Row{}, false
	}
	return s.rows[0], true
}

// Iterator returns a new cursor positioned before the first row.
func (s RowSequence) Iterator() *RowIterator {
	return &RowIterator{rows: s.rows}
}

// All yields rows with their position, for use with range.
func (s RowSequence) All() iter.Seq2[int, Row] {
	return func(yield func(int, Row) bool) {
		for i, r := range s.rows {
			if !yield(i, r) {
				return
			}
		}
	}
}

// RowIterator is a single-pass cursor over a RowSequence. It is not safe for
// concurrent use; take one iterator per goroutine.
type RowIterator struct {
	rows []Row
	pos  int
}

// Next returns the next row, or false once the sequence is exhausted.
func (it *RowIterator) Next() (Row, bool) {
	if it.pos >= len(it.rows) {
		return Row{}, false
	}
	r := it.rows[it.pos]
	it.pos++
	return r, true
}
