package sheet

import (
	"context"
	"fmt"
)

// Memory is a Reader over an in-memory table. Rows[0] is spreadsheet row 1,
// which for a form-backed sheet is the header.
type Memory struct {
	Rows [][]string

	// Err, when set, fails every ReadRows call as if the source were down.
	Err error

	// RowErrs fails individual rows, keyed by 1-based row number.
	RowErrs map[int]error
}

// ReadRows implements Reader.
func (m *Memory) ReadRows(_ context.Context, first, last int) ([]Row, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if first < 1 || last < first {
		return nil, fmt.Errorf("sheet: invalid row range %d..%d", first, last)
	}
	out := make([]Row, 0, last-first+1)
	for i := first; i <= last; i++ {
		row := Row{Index: i}
		if err, ok := m.RowErrs[i]; ok {
			row.Err = err
		} else if i <= len(m.Rows) {
			row.Cells = append([]string(nil), m.Rows[i-1]...)
		}
		out = append(out, row)
	}
	return out, nil
}
