package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/weeklyreport/weeklyreport/internal/sheet"
)

// Default scan range: the header is row 1, submissions sit in rows 2..14.
const (
	DefaultFirstRow = 2
	DefaultLastRow  = 14
)

// ErrSourceUnavailable wraps every failure to read the sheet as a whole.
var ErrSourceUnavailable = errors.New("report: data source unavailable")

// Lookup is the result of a single-member query.
type Lookup struct {
	Name   string
	Found  bool // false if Name is not on the roster
	Record Record
}

// Engine answers submission queries. It holds no per-query state; every
// method that needs status reads the sheet again.
type Engine struct {
	roster *Roster
	reader sheet.Reader
	first  int
	last   int
	loc    *time.Location
	now    func() time.Time
	skip   func(*RowError)
}

// Option configures an Engine.
type Option func(*Engine)

// WithScan sets the inclusive 1-based row range read on every query.
func WithScan(first, last int) Option {
	return func(e *Engine) { e.first, e.last = first, last }
}

// WithLocation sets the zone sheet timestamps are interpreted in.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) { e.loc = loc }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithSkipHook registers fn to be called for every discarded row.
func WithSkipHook(fn func(*RowError)) Option {
	return func(e *Engine) { e.skip = fn }
}

// New returns an Engine reading roster submissions through r.
func New(roster *Roster, r sheet.Reader, opts ...Option) *Engine {
	e := &Engine{
		roster: roster,
		reader: r,
		first:  DefaultFirstRow,
		last:   DefaultLastRow,
		loc:    time.Local,
		now:    time.Now,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Snapshot reads the sheet and derives every member's status.
func (e *Engine) Snapshot(ctx context.Context) (*Snapshot, error) {
	rows, err := e.reader.ReadRows(ctx, e.first, e.last)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	return Fold(rows, e.roster, e.now().In(e.loc), e.loc, e.skipRow), nil
}

// Missing returns the members without a submission in the window, in roster order.
func (e *Engine) Missing(ctx context.Context) ([]string, error) {
	snap, err := e.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Missing(), nil
}

// Lookup returns one member's status.
func (e *Engine) Lookup(ctx context.Context, name string) (Lookup, error) {
	snap, err := e.Snapshot(ctx)
	if err != nil {
		return Lookup{}, err
	}
	rec, ok := snap.Record(name)
	return Lookup{Name: name, Found: ok, Record: rec}, nil
}

// Stats returns submission counts.
func (e *Engine) Stats(ctx context.Context) (Stats, error) {
	snap, err := e.Snapshot(ctx)
	if err != nil {
		return Stats{}, err
	}
	return snap.Stats(), nil
}

// Members returns the roster. It does not read the sheet.
func (e *Engine) Members() []string {
	return e.roster.Names()
}

func (e *Engine) skipRow(re *RowError) {
	slog.Debug("report: row skipped", "row", re.Row, "reason", re.Reason, "err", re.Err)
	if e.skip != nil {
		e.skip(re)
	}
}
