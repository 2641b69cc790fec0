package sheet

import "context"

// Row is the raw content of one spreadsheet row.
type Row struct {
	// Index is the 1-based spreadsheet row number.
	Index int

	// Cells holds the values of columns A..F as displayed in the sheet.
	// Trailing empty cells are omitted by the source, so len(Cells) may be
	// anything from 0 to 6.
	Cells []string

	// Err is non-nil if this row alone could not be fetched.
	Err error
}

// Reader fetches the rows first..last (inclusive, 1-based).
//
// A non-nil error means the data source itself could not be reached; per-row
// failures are reported through Row.Err instead.
type Reader interface {
	ReadRows(ctx context.Context, first, last int) ([]Row, error)
}
