package sheet

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch monitors path and calls onChange each time the file is written or
// created, including when another file is renamed over it. The parent
// directory is watched rather than the file, so a replaced inode or a file
// that does not exist yet is still seen. It runs until ctx is cancelled.
func Watch(ctx context.Context, path string, onChange func()) error {
	path = filepath.Clean(path)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return err
	}

	slog.Info("sheet: watching credentials", "path", path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			// A rename onto path arrives as Create.
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			onChange()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("sheet: watcher error", "err", err)
		}
	}
}

type dialFunc func(ctx context.Context, opts Options) (Reader, error)

func dialReader(ctx context.Context, opts Options) (Reader, error) {
	c, err := Dial(ctx, opts)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// WatchCredentials re-dials the Sheets client whenever opts.CredentialsFile
// changes and installs it into sw. If dialling fails the previous client stays
// active.
func WatchCredentials(ctx context.Context, sw *Swap, opts Options) error {
	return watchCredentials(ctx, sw, opts, dialReader)
}

func watchCredentials(ctx context.Context, sw *Swap, opts Options, dial dialFunc) error {
	return Watch(ctx, opts.CredentialsFile, func() {
		r, err := dial(ctx, opts)
		if err != nil {
			slog.Error("sheet: reload credentials failed, keeping previous client",
				"path", opts.CredentialsFile, "err", err)
			return
		}
		sw.Store(r)
		slog.Info("sheet: credentials reloaded", "path", opts.CredentialsFile)
	})
}
