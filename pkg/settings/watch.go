package settings

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reports delays written to the settings file at path by other
// processes. fn is called from the watcher goroutine each time the stored
// value differs from the previous one seen. Watch blocks until ctx is done.
func Watch(ctx context.Context, path string, fn func(uint32), logger *slog.Logger) error {
	if fn == nil {
		return errors.New("watch callback must not be nil")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure settings dir: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create settings watcher: %w", err)
	}
	defer watcher.Close()

	// The directory is watched because SaveDelay replaces the file by rename.
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %q: %w", dir, err)
	}

	store := NewFileStore(path)
	last, loadErr := store.LoadDelay()
	known := loadErr == nil
	target := filepath.Clean(path)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			value, err := store.LoadDelay()
			if err != nil {
				if !errors.Is(err, ErrNotFound) {
					logger.Debug("settings reload skipped", "path", path, "error", err)
				}
				continue
			}
			if known && value == last {
				continue
			}
			last, known = value, true
			logger.Info("settings changed on disk", "path", path, "delay_ms", value)
			fn(value)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("settings watcher error", "error", err)
		}
	}
}
