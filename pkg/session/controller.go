package session

import (
	"context"
	"sync"
)

// Loop is the single event loop a session runs on.
type Loop interface {
	// Run blocks until Quit is called, the loop fails, or ctx is done.
	Run(ctx context.Context) (int, error)
	// Quit asks the loop to return code. Safe from any goroutine.
	Quit(code int)
}

// Controller is the portable Loop: it waits for a quit request or failure
// signalled from other goroutines.
type Controller struct {
	mu       sync.Mutex
	quitting bool
	code     int
	failErr  error
	signal   chan struct{}
}

// NewController constructs a controller in the running state.
func NewController() *Controller {
	return &Controller{signal: make(chan struct{}, 1)}
}

// Quit requests the loop to stop with code. Only the first request counts.
func (c *Controller) Quit(code int) {
	c.mu.Lock()
	if !c.quitting {
		c.quitting = true
		c.code = code
	}
	c.mu.Unlock()
	c.notify()
}

// Fail stops the loop abnormally with err.
func (c *Controller) Fail(err error) {
	c.mu.Lock()
	if !c.quitting {
		c.quitting = true
		c.failErr = err
		if c.failErr == nil {
			c.failErr = ErrLoopAbnormal
		}
	}
	c.mu.Unlock()
	c.notify()
}

// Run blocks until the controller is quitting or ctx is done. A cancelled
// context is reported as ErrInterrupted.
func (c *Controller) Run(ctx context.Context) (int, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	for {
		c.mu.Lock()
		quitting := c.quitting
		code := c.code
		failErr := c.failErr
		c.mu.Unlock()

		if quitting {
			return code, failErr
		}

		select {
		case <-ctx.Done():
			return 0, ErrInterrupted
		case <-c.signal:
		}
	}
}

// State reports the textual state for diagnostics.
func (c *Controller) State() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.failErr != nil:
		return "failed"
	case c.quitting:
		return "quitting"
	default:
		return "running"
	}
}

func (c *Controller) notify() {
	select {
	case c.signal <- struct{}{}:
	default:
	}
}
