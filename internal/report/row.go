package report

import (
	"fmt"
	"time"

	"github.com/weeklyreport/weeklyreport/internal/sheet"
)

const (
	// TimestampLayout parses column A ("MM/DD/YYYY HH:MM:SS"). Every field
	// except the year may be one or two digits, as Google Forms writes them.
	TimestampLayout = "1/2/2006 15:4:5"

	// DisplayLayout renders accepted timestamps.
	DisplayLayout = "2006-01-02 15:04:05"

	// NoContent stands in for the report body when the row has no column D.
	NoContent = "No content"
)

// Column positions within a row.
const (
	colTimestamp = 0
	colName      = 2
	colContent   = 3
)

// Reasons a row contributes nothing.
const (
	ReasonFetch         = "fetch"
	ReasonEmpty         = "empty"
	ReasonTimestamp     = "timestamp"
	ReasonUnknownMember = "unknown_member"
	ReasonOutsideWindow = "outside_window"
)

// RowError explains why a row was discarded.
type RowError struct {
	Row    int
	Reason string
	Err    error
}

func (e *RowError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("row %d: %s: %v", e.Row, e.Reason, e.Err)
	}
	return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
}

func (e *RowError) Unwrap() error { return e.Err }

// Entry is a well-formed row attributed to a roster member.
type Entry struct {
	Row     int
	Member  string
	Time    time.Time
	Content string
}

// ParseRow validates one raw row. Timestamps carry no zone and are read in loc.
func ParseRow(row sheet.Row, roster *Roster, loc *time.Location) (Entry, error) {
	if row.Err != nil {
		return Entry{}, &RowError{Row: row.Index, Reason: ReasonFetch, Err: row.Err}
	}
	cells := row.Cells
	if len(cells) == 0 || cells[colTimestamp] == "" {
		return Entry{}, &RowError{Row: row.Index, Reason: ReasonEmpty}
	}

	t, err := time.ParseInLocation(TimestampLayout, cells[colTimestamp], loc)
	if err != nil {
		return Entry{}, &RowError{Row: row.Index, Reason: ReasonTimestamp, Err: err}
	}

	var name string
	if len(cells) > colName {
		name = cells[colName]
	}
	if !roster.Contains(name) {
		return Entry{}, &RowError{
			Row:    row.Index,
			Reason: ReasonUnknownMember,
			Err:    fmt.Errorf("%q is not on the roster", name),
		}
	}

	content := NoContent
	if len(cells) > colContent {
		content = cells[colContent]
	}

	return Entry{Row: row.Index, Member: name, Time: t, Content: content}, nil
}
