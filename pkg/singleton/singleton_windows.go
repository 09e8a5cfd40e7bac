//go:build windows

package singleton

import (
	"fmt"
	"sync"

	"golang.org/x/sys/windows"
)

// Lock is a named mutex held by this process.
type Lock struct {
	handle windows.Handle
	once   sync.Once
}

// Describe names the lock primitive used for name.
func Describe(name string) string {
	return "named mutex " + name
}

// Acquire opens the named session mutex and takes ownership without waiting.
func Acquire(name string) (*Lock, error) {
	namePtr, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	handle, err := windows.CreateMutex(nil, false, namePtr)
	if handle == 0 {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	event, err := windows.WaitForSingleObject(handle, 0)
	switch event {
	case windows.WAIT_OBJECT_0, windows.WAIT_ABANDONED:
		return &Lock{handle: handle}, nil
	case uint32(windows.WAIT_TIMEOUT):
		windows.CloseHandle(handle)
		return nil, ErrAlreadyRunning
	default:
		windows.CloseHandle(handle)
		return nil, fmt.Errorf("%w: %v", ErrWaitFailed, err)
	}
}

// Release gives up ownership of the mutex.
func (l *Lock) Release() error {
	if l == nil {
		return nil
	}
	var err error
	l.once.Do(func() {
		if relErr := windows.ReleaseMutex(l.handle); relErr != nil {
			err = relErr
		}
		if closeErr := windows.CloseHandle(l.handle); closeErr != nil && err == nil {
			err = closeErr
		}
	})
	return err
}
