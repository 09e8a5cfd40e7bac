package settings

import "errors"

var (
	// ErrNotFound indicates no delay has been persisted yet.
	ErrNotFound = errors.New("debounce delay not persisted")
	// ErrUnsupportedBackend indicates the requested backend is unavailable on this platform.
	ErrUnsupportedBackend = errors.New("settings backend not supported on this platform")
)
