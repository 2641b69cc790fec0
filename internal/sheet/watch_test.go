package sheet

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
)

// leakOpts ignores idle keep-alive connections left by the httptest-based
// client tests in this package.
var leakOpts = []goleak.Option{
	goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
	goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
	goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
}

// startWatch runs fn in a goroutine and returns a stop function that cancels
// it and waits for a nil return.
func startWatch(t *testing.T, fn func(ctx context.Context) error) (stop func()) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- fn(ctx) }()
	return func() {
		t.Helper()
		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("Watch returned %v, want nil", err)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("Watch did not return after cancel")
		}
	}
}

// touchUntil calls touch every 50ms until cond reports true. The watcher
// registers asynchronously, so a single write may land before it is ready.
func touchUntil(t *testing.T, touch func(), cond func() bool) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for !cond() {
		select {
		case <-tick.C:
			touch()
		case <-deadline:
			t.Fatal("condition not met within 5s")
		}
	}
}

// signal records one notification without blocking the watch loop.
func signal(ch chan<- struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

func notified(ch <-chan struct{}) func() bool {
	return func() bool {
		select {
		case <-ch:
			return true
		default:
			return false
		}
	}
}

func TestWatch_CallsOnChange(t *testing.T) {
	defer goleak.VerifyNone(t, leakOpts...)

	p := filepath.Join(t.TempDir(), "service_account.json")
	if err := os.WriteFile(p, []byte(`{}`), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	changed := make(chan struct{}, 16)
	stop := startWatch(t, func(ctx context.Context) error {
		return Watch(ctx, p, func() { signal(changed) })
	})
	touchUntil(t, func() {
		_ = os.WriteFile(p, []byte(`{"rotated":true}`), 0o600)
	}, notified(changed))
	stop()
}

func TestWatch_RenameOver(t *testing.T) {
	defer goleak.VerifyNone(t, leakOpts...)

	dir := t.TempDir()
	p := filepath.Join(dir, "service_account.json")
	if err := os.WriteFile(p, []byte(`{}`), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	changed := make(chan struct{}, 16)
	stop := startWatch(t, func(ctx context.Context) error {
		return Watch(ctx, p, func() { signal(changed) })
	})

	// Atomic save: write a sibling and rename it onto the watched name.
	n := 0
	touchUntil(t, func() {
		n++
		tmp := filepath.Join(dir, fmt.Sprintf(".service_account.%d.tmp", n))
		if err := os.WriteFile(tmp, []byte(`{"rotated":true}`), 0o600); err != nil {
			t.Errorf("write tmp: %v", err)
			return
		}
		if err := os.Rename(tmp, p); err != nil {
			t.Errorf("rename: %v", err)
		}
	}, notified(changed))
	stop()
}

func TestWatch_IgnoresSiblings(t *testing.T) {
	defer goleak.VerifyNone(t, leakOpts...)

	dir := t.TempDir()
	p := filepath.Join(dir, "service_account.json")

	changed := make(chan struct{}, 16)
	stop := startWatch(t, func(ctx context.Context) error {
		return Watch(ctx, p, func() { signal(changed) })
	})

	// Give the watcher time to register, then write only unrelated files.
	time.Sleep(200 * time.Millisecond)
	for i := 0; i < 3; i++ {
		_ = os.WriteFile(filepath.Join(dir, fmt.Sprintf("other-%d.json", i)), []byte(`{}`), 0o600)
	}
	time.Sleep(200 * time.Millisecond)
	if notified(changed)() {
		t.Error("onChange called for a sibling file")
	}

	// The watched file appearing later is still picked up.
	touchUntil(t, func() {
		_ = os.WriteFile(p, []byte(`{}`), 0o600)
	}, notified(changed))
	stop()
}

func TestWatch_MissingDirectory(t *testing.T) {
	defer goleak.VerifyNone(t, leakOpts...)

	p := filepath.Join(t.TempDir(), "absent", "service_account.json")
	if err := Watch(context.Background(), p, func() {}); err == nil {
		t.Fatal("expected error for a missing directory, got nil")
	}
}

func TestWatchCredentials_Redial(t *testing.T) {
	defer goleak.VerifyNone(t, leakOpts...)

	p := filepath.Join(t.TempDir(), "service_account.json")
	initial := Unavailable{Err: errors.New("no credentials yet")}
	fresh := &Memory{}
	sw := NewSwap(initial)

	var fail atomic.Bool
	fail.Store(true)
	dialled := make(chan struct{}, 64)
	dial := func(_ context.Context, opts Options) (Reader, error) {
		defer signal(dialled)
		if opts.CredentialsFile != p {
			t.Errorf("dial CredentialsFile: got %q, want %q", opts.CredentialsFile, p)
		}
		if fail.Load() {
			return nil, errors.New("invalid key")
		}
		return fresh, nil
	}

	stop := startWatch(t, func(ctx context.Context) error {
		return watchCredentials(ctx, sw, Options{CredentialsFile: p}, dial)
	})

	write := func() { _ = os.WriteFile(p, []byte(`{}`), 0o600) }

	// A failed dial keeps the previous reader.
	touchUntil(t, write, notified(dialled))
	if got := sw.Load(); got != Reader(initial) {
		t.Errorf("after failed dial: got %#v, want the initial reader", got)
	}

	// A successful dial installs the new reader.
	fail.Store(false)
	touchUntil(t, write, func() bool { return sw.Load() == Reader(fresh) })
	stop()
}

func TestUnavailable(t *testing.T) {
	want := errors.New("credentials missing")
	rows, err := Unavailable{Err: want}.ReadRows(context.Background(), 1, 3)
	if !errors.Is(err, want) {
		t.Errorf("err: got %v, want %v", err, want)
	}
	if rows != nil {
		t.Errorf("rows: got %v, want nil", rows)
	}
}
