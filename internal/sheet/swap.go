package sheet

import (
	"context"
	"sync"
)

// Swap is a Reader that delegates to a replaceable Reader. It lets the
// credentials watcher install a freshly dialled Client while queries are in
// flight; a query keeps the Reader it started with.
type Swap struct {
	mu  sync.RWMutex
	cur Reader
}

// NewSwap returns a Swap delegating to r.
func NewSwap(r Reader) *Swap {
	return &Swap{cur: r}
}

// Store replaces the current Reader.
func (s *Swap) Store(r Reader) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur = r
}

// Load returns the current Reader.
func (s *Swap) Load() Reader {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

// ReadRows implements Reader.
func (s *Swap) ReadRows(ctx context.Context, first, last int) ([]Row, error) {
	return s.Load().ReadRows(ctx, first, last)
}

// Unavailable is a Reader that fails every ReadRows with Err. It stands in for
// a Client that could not be dialled, until the credentials watcher stores a
// working one.
type Unavailable struct {
	Err error
}

// ReadRows implements Reader.
func (u Unavailable) ReadRows(context.Context, int, int) ([]Row, error) {
	return nil, u.Err
}
