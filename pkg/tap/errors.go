package tap

import "errors"

var (
	// ErrHookUnsupported indicates the platform has no global mouse hook backend.
	ErrHookUnsupported = errors.New("global mouse hook not supported on this platform")
	// ErrHookInstalled indicates a hook is already active in this process.
	ErrHookInstalled = errors.New("mouse hook already installed")
)
