// Package singleton prevents a second instance from running in the same user
// session.
package singleton

import "errors"

// DefaultName identifies the lock shared by all instances of the program.
const DefaultName = `Local\uk.umbral.debounce`

var (
	// ErrAlreadyRunning indicates another instance holds the lock.
	ErrAlreadyRunning = errors.New("another instance is already running")
	// ErrUnavailable indicates the lock primitive could not be created.
	ErrUnavailable = errors.New("instance lock unavailable")
	// ErrWaitFailed indicates the lock state could not be determined.
	ErrWaitFailed = errors.New("could not determine instance lock state")
)
