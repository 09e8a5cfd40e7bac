package settings

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func TestFileStoreMissingReportsNotFound(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), FileName))
	if _, err := store.LoadDelay(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", FileName)
	store := NewFileStore(path)

	if err := store.SaveDelay(25); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := store.LoadDelay()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != 25 {
		t.Fatalf("expected 25, got %d", got)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read settings: %v", err)
	}
	if !strings.Contains(string(data), "debounce_delay_ms: 25") {
		t.Fatalf("unexpected settings document: %q", data)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected temp files to be cleaned up, found %d entries", len(entries))
	}
}

func TestFileStoreRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte("debounce_delay_ms: [nope"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := NewFileStore(path).LoadDelay()
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestFileStoreMissingKeyIsNotFound(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte("other: 1\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := NewFileStore(path).LoadDelay(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDefaultPathIsVendorScoped(t *testing.T) {
	orig := userConfigDir
	userConfigDir = func() (string, error) { return "/home/test/.config", nil }
	defer func() { userConfigDir = orig }()

	path, err := DefaultPath()
	if err != nil {
		t.Fatalf("default path: %v", err)
	}
	want := filepath.Join("/home/test/.config", Vendor, Application, FileName)
	if path != want {
		t.Fatalf("expected %q, got %q", want, path)
	}
}

func TestOpenBackends(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)

	store, err := Open(BackendFile, path)
	if err != nil {
		t.Fatalf("open file backend: %v", err)
	}
	if store.Describe() != "file:"+path {
		t.Fatalf("unexpected description %q", store.Describe())
	}

	if _, err := Open("etcd", path); err == nil {
		t.Fatalf("expected error for unknown backend")
	}

	if runtime.GOOS != "windows" {
		if _, err := Open(BackendRegistry, ""); !errors.Is(err, ErrUnsupportedBackend) {
			t.Fatalf("expected ErrUnsupportedBackend, got %v", err)
		}
		auto, err := Open(BackendAuto, path)
		if err != nil {
			t.Fatalf("open auto backend: %v", err)
		}
		if _, ok := auto.(*FileStore); !ok {
			t.Fatalf("expected auto backend to select file store, got %T", auto)
		}
	}
}

func TestWatchReportsExternalChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	store := NewFileStore(path)
	if err := store.SaveDelay(10); err != nil {
		t.Fatalf("seed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	seen := make(chan uint32, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(v uint32) { seen <- v }, nil)
	}()

	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	next := uint32(50)
	for {
		select {
		case v := <-seen:
			if v < 50 {
				t.Fatalf("expected a rewritten delay, got %d", v)
			}
			cancel()
			if err := <-done; !errors.Is(err, context.Canceled) {
				t.Fatalf("expected cancellation, got %v", err)
			}
			return
		case <-tick.C:
			if err := store.SaveDelay(next); err != nil {
				t.Fatalf("save: %v", err)
			}
			next++
		case <-deadline:
			t.Fatalf("watcher did not report change")
		}
	}
}
