package report

import (
	"errors"
	"strconv"
	"time"

	"github.com/weeklyreport/weeklyreport/internal/sheet"
)

// Window is the maximum age a row may have and still count for the current
// cycle: six days plus a twelve hour grace period (561600s). The bound is
// strict.
const Window = 6*24*time.Hour + 12*time.Hour

// Record is the derived status of one member.
type Record struct {
	Submitted bool

	// Timestamp, Content, Age and DaysAgo are set only when Submitted.
	Timestamp time.Time
	Content   string
	Age       time.Duration
	DaysAgo   float64 // Age in days, rounded to one decimal
}

// DisplayTime renders Timestamp with DisplayLayout, or "" if not submitted.
func (r Record) DisplayTime() string {
	if !r.Submitted {
		return ""
	}
	return r.Timestamp.Format(DisplayLayout)
}

// Stats summarises a Snapshot.
type Stats struct {
	Total      int
	Submitted  int
	Percentage float64 // rounded to one decimal; 0 for an empty roster
}

// Snapshot maps every roster member to its Record for one read of the sheet.
type Snapshot struct {
	roster  *Roster
	records map[string]Record
	TakenAt time.Time
}

// Record returns the member's status. ok is false if name is not on the roster.
func (s *Snapshot) Record(name string) (rec Record, ok bool) {
	rec, ok = s.records[name]
	return rec, ok
}

// Missing returns the members who have not submitted, in roster order.
func (s *Snapshot) Missing() []string {
	out := make([]string, 0)
	for _, n := range s.roster.names {
		if !s.records[n].Submitted {
			out = append(out, n)
		}
	}
	return out
}

// Stats counts submissions.
func (s *Snapshot) Stats() Stats {
	st := Stats{Total: s.roster.Len()}
	for _, n := range s.roster.names {
		if s.records[n].Submitted {
			st.Submitted++
		}
	}
	if st.Total > 0 {
		st.Percentage = round1(float64(st.Submitted) / float64(st.Total) * 100)
	}
	return st
}

// Fold builds a Snapshot from rows in scan order. skip, if non-nil, is called
// for every row that contributes nothing.
func Fold(rows []sheet.Row, roster *Roster, now time.Time, loc *time.Location, skip func(*RowError)) *Snapshot {
	snap := &Snapshot{
		roster:  roster,
		records: make(map[string]Record, roster.Len()),
		TakenAt: now,
	}
	for _, n := range roster.names {
		snap.records[n] = Record{}
	}

	for _, row := range rows {
		e, err := ParseRow(row, roster, loc)
		if err != nil {
			var re *RowError
			if skip != nil && errors.As(err, &re) {
				skip(re)
			}
			continue
		}

		age := now.Sub(e.Time)
		if age >= Window {
			if skip != nil {
				skip(&RowError{Row: row.Index, Reason: ReasonOutsideWindow})
			}
			continue
		}

		snap.records[e.Member] = Record{
			Submitted: true,
			Timestamp: e.Time,
			Content:   e.Content,
			Age:       age,
			DaysAgo:   round1(age.Seconds() / 86400),
		}
	}
	return snap
}

// round1 rounds the exact value of x to one decimal, ties to even.
func round1(x float64) float64 {
	v, _ := strconv.ParseFloat(strconv.FormatFloat(x, 'f', 1, 64), 64)
	return v
}
