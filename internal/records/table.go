package records

import "fmt"

// Table is an ordered list of records. Row indexes are zero based.
type Table struct {
	rows []Record
}

// NewTable creates a table holding rows.
func NewTable(rows ...Record) *Table {
	t := &Table{}
	t.rows = append(t.rows, rows...)
	return t
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Append adds a record at the end and returns its row index.
func (t *Table) Append(r Record) int {
	t.rows = append(t.rows, r)
	return len(t.rows) - 1
}

// Row returns a copy of the record at row.
func (t *Table) Row(row int) (Record, error) {
	if err := t.checkRow(row); err != nil {
		return Record{}, err
	}
	return t.rows[row], nil
}

// Rows returns a copy of all records.
func (t *Table) Rows() []Record {
	out := make([]Record, len(t.rows))
	copy(out, t.rows)
	return out
}

// Cell returns the value at row and column.
func (t *Table) Cell(row int, column string) (string, error) {
	if err := t.checkRow(row); err != nil {
		return "", err
	}
	return t.rows[row].Get(column)
}

// Set edits a single cell.
func (t *Table) Set(row int, column, value string) error {
	if err := t.checkRow(row); err != nil {
		return err
	}
	return t.rows[row].Set(column, value)
}

// Delete removes row, shifting later rows up.
func (t *Table) Delete(row int) error {
	if err := t.checkRow(row); err != nil {
		return err
	}
	t.rows = append(t.rows[:row], t.rows[row+1:]...)
	return nil
}

// Clear removes every row.
func (t *Table) Clear() {
	t.rows = nil
}

// IncompleteRows returns the indexes of rows with at least one empty column.
func (t *Table) IncompleteRows() []int {
	var out []int
	for i, r := range t.rows {
		if !r.Complete() {
			out = append(out, i)
		}
	}
	return out
}

func (t *Table) checkRow(row int) error {
	if row < 0 || row >= len(t.rows) {
		return fmt.Errorf("%w: %d (rows: %d)", ErrRowOutOfRange, row, len(t.rows))
	}
	return nil
}
