// Package records holds the internal table of recipients extracted from
// notice PDFs. Column names are the Korean headers shown to the operator and
// referenced by layout templates.
package records

import (
	"errors"
	"fmt"
)

// Column names of the internal record table, in display order.
const (
	ColumnName          = "이름"
	ColumnZipCode       = "우편번호"
	ColumnAddress       = "주소"
	ColumnTitle         = "제목"
	ColumnVehicleNumber = "차량번호"
	ColumnDueDate       = "비고"
)

var (
	ErrUnknownColumn = errors.New("unknown column")
	ErrRowOutOfRange = errors.New("row out of range")
)

// Columns returns the record columns in display order.
func Columns() []string {
	return []string{
		ColumnName,
		ColumnZipCode,
		ColumnAddress,
		ColumnTitle,
		ColumnVehicleNumber,
		ColumnDueDate,
	}
}

// IsColumn reports whether name is one of the record columns.
func IsColumn(name string) bool {
	for _, c := range Columns() {
		if c == name {
			return true
		}
	}
	return false
}

// Record is one recipient extracted from a notice.
type Record struct {
	Name          string `json:"name"`
	ZipCode       string `json:"zip_code"`
	Address       string `json:"address"`
	Title         string `json:"title"`
	VehicleNumber string `json:"vehicle_number"`
	DueDate       string `json:"due_date"`

	// Source is the file the record was extracted from. Not a column.
	Source string `json:"source,omitempty"`
}

// Get returns the value stored under column.
func (r Record) Get(column string) (string, error) {
	switch column {
	case ColumnName:
		return r.Name, nil
	case ColumnZipCode:
		return r.ZipCode, nil
	case ColumnAddress:
		return r.Address, nil
	case ColumnTitle:
		return r.Title, nil
	case ColumnVehicleNumber:
		return r.VehicleNumber, nil
	case ColumnDueDate:
		return r.DueDate, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownColumn, column)
}

// Set stores value under column.
func (r *Record) Set(column, value string) error {
	switch column {
	case ColumnName:
		r.Name = value
	case ColumnZipCode:
		r.ZipCode = value
	case ColumnAddress:
		r.Address = value
	case ColumnTitle:
		r.Title = value
	case ColumnVehicleNumber:
		r.VehicleNumber = value
	case ColumnDueDate:
		r.DueDate = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownColumn, column)
	}
	return nil
}

// Values returns the column values in display order.
func (r Record) Values() []string {
	return []string{r.Name, r.ZipCode, r.Address, r.Title, r.VehicleNumber, r.DueDate}
}

// Missing lists the columns that are empty.
func (r Record) Missing() []string {
	var missing []string
	for i, v := range r.Values() {
		if v == "" {
			missing = append(missing, Columns()[i])
		}
	}
	return missing
}

// Complete reports whether every column has a value.
func (r Record) Complete() bool {
	return len(r.Missing()) == 0
}
