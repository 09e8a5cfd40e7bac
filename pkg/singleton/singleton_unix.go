//go:build !windows

package singleton

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sys/unix"
)

// runtimeDir is swapped in tests.
var runtimeDir = func() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return dir
	}
	return os.TempDir()
}

// Lock is an exclusive advisory lock on a per-user lock file.
type Lock struct {
	file *os.File
	once sync.Once
}

// Path returns the lock file used for name.
func Path(name string) string {
	base := name
	if idx := strings.LastIndexAny(base, `\/`); idx >= 0 {
		base = base[idx+1:]
	}
	if base == "" {
		base = "debounce"
	}
	return filepath.Join(runtimeDir(), base+".lock")
}

// Describe names the lock primitive used for name.
func Describe(name string) string {
	return "lock file " + Path(name)
}

// Acquire takes the lock without waiting.
func Acquire(name string) (*Lock, error) {
	path := Path(name)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if err := unix.Flock(int(file.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		file.Close()
		if errors.Is(err, unix.EWOULDBLOCK) {
			return nil, ErrAlreadyRunning
		}
		return nil, fmt.Errorf("%w: %v", ErrWaitFailed, err)
	}

	_ = file.Truncate(0)
	_, _ = fmt.Fprintf(file, "%d\n", os.Getpid())
	return &Lock{file: file}, nil
}

// Release unlocks and closes the lock file.
func (l *Lock) Release() error {
	if l == nil {
		return nil
	}
	var err error
	l.once.Do(func() {
		if unlockErr := unix.Flock(int(l.file.Fd()), unix.LOCK_UN); unlockErr != nil {
			err = unlockErr
		}
		if closeErr := l.file.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	})
	return err
}
