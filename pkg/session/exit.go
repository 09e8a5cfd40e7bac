package session

import (
	"errors"
	"fmt"
)

// Process exit statuses. A normal quit exits with the quit payload instead.
const (
	ExitDuplicateInstance = 1
	ExitMutexUnavailable  = -1
	ExitMutexWaitFailed   = -2
	ExitHookFailed        = -3
	ExitLoopAbnormal      = -4
	ExitSurfaceFailed     = -5
)

var (
	// ErrLoopAbnormal indicates the event loop ended without a quit request.
	ErrLoopAbnormal = errors.New("event loop exited abnormally")
	// ErrInterrupted indicates the session was stopped by its context.
	ErrInterrupted = errors.New("session interrupted")
)

// ExitError carries a process exit status out of a session.
type ExitError struct {
	Code int
	Err  error
}

// Error returns the status and cause.
func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return fmt.Sprintf("exit status %d: %v", e.Code, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ExitError) Unwrap() error {
	return e.Err
}

func exitErr(code int, err error) *ExitError {
	return &ExitError{Code: code, Err: err}
}
