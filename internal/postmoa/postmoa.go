// Package postmoa reads and writes the xlsx workbooks uploaded to Postmoa
// (우편모아) and the internal worksheet of extracted records.
package postmoa

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/a3tai/notice-postmoa/internal/layout"
	"github.com/a3tai/notice-postmoa/internal/records"
)

// SheetName is the worksheet Postmoa reads.
const SheetName = "Sheet1"

// TimestampLayout prefixes every exported file name.
const TimestampLayout = "2006-01-02 150405"

var ErrMissingColumn = errors.New("worksheet is missing a column")

// FileName returns "<timestamp>_<suffix><ext>".
func FileName(at time.Time, suffix, ext string) string {
	return at.Format(TimestampLayout) + "_" + suffix + ext
}

// WriteSheet writes sheet as a single-worksheet workbook at path. Every cell
// is stored as a string.
func WriteSheet(path string, sheet *layout.Sheet) error {
	if sheet == nil {
		return errors.New("sheet cannot be nil")
	}
	return writeRows(path, sheet.Columns, sheet.Rows)
}

// SaveTable writes the internal record table with its own column names.
func SaveTable(path string, t *records.Table) error {
	rows := make([][]string, 0, t.Len())
	for _, r := range t.Rows() {
		rows = append(rows, r.Values())
	}
	return writeRows(path, records.Columns(), rows)
}

// LoadTable reads a worksheet written by SaveTable. Columns are matched by
// header name; blank rows are skipped.
func LoadTable(path string) (*records.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open worksheet %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("worksheet %s has no sheets", path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read worksheet %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s has no header row", ErrMissingColumn, path)
	}

	index := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		index[strings.TrimSpace(h)] = i
	}
	for _, c := range records.Columns() {
		if _, ok := index[c]; !ok {
			return nil, fmt.Errorf("%w: %q in %s", ErrMissingColumn, c, path)
		}
	}

	table := records.NewTable()
	for _, row := range rows[1:] {
		var r records.Record
		blank := true
		for _, c := range records.Columns() {
			i := index[c]
			if i >= len(row) {
				continue
			}
			v := strings.TrimSpace(row[i])
			if v != "" {
				blank = false
			}
			if err := r.Set(c, v); err != nil {
				return nil, err
			}
		}
		if !blank {
			table.Append(r)
		}
	}
	return table, nil
}

func writeRows(path string, header []string, rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeRow(f, 1, header); err != nil {
		return err
	}
	for i, row := range rows {
		if err := writeRow(f, i+2, row); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

func writeRow(f *excelize.File, n int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		return err
	}
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
		return fmt.Errorf("write row %d: %w", n, err)
	}
	return nil
}
