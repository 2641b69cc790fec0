package report

import "fmt"

// Roster is the fixed, ordered list of members expected to submit reports.
// It is immutable once built.
type Roster struct {
	names []string
	index map[string]int
}

// NewRoster builds a Roster. Names are matched exactly; empty and duplicate
// names are rejected.
func NewRoster(names []string) (*Roster, error) {
	r := &Roster{
		names: make([]string, 0, len(names)),
		index: make(map[string]int, len(names)),
	}
	for i, n := range names {
		if n == "" {
			return nil, fmt.Errorf("report: roster[%d]: empty name", i)
		}
		if _, dup := r.index[n]; dup {
			return nil, fmt.Errorf("report: roster[%d]: duplicate name %q", i, n)
		}
		r.index[n] = len(r.names)
		r.names = append(r.names, n)
	}
	return r, nil
}

// Names returns the members in roster order.
func (r *Roster) Names() []string {
	return append([]string(nil), r.names...)
}

// Contains reports whether name is on the roster.
func (r *Roster) Contains(name string) bool {
	_, ok := r.index[name]
	return ok
}

// Len returns the number of members.
func (r *Roster) Len() int { return len(r.names) }
