package session

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestControllerQuitReturnsFirstCode(t *testing.T) {
	c := NewController()
	if c.State() != "running" {
		t.Fatalf("expected running, got %s", c.State())
	}
	c.Quit(3)
	c.Quit(9)

	code, err := c.Run(context.Background())
	if code != 3 || err != nil {
		t.Fatalf("expected first quit code 3, got %d %v", code, err)
	}
	if c.State() != "quitting" {
		t.Fatalf("expected quitting, got %s", c.State())
	}
}

func TestControllerFailDefaultsToAbnormal(t *testing.T) {
	c := NewController()
	c.Fail(nil)
	if _, err := c.Run(context.Background()); !errors.Is(err, ErrLoopAbnormal) {
		t.Fatalf("expected ErrLoopAbnormal, got %v", err)
	}
	if c.State() != "failed" {
		t.Fatalf("expected failed, got %s", c.State())
	}
}

func TestControllerQuitFromAnotherGoroutine(t *testing.T) {
	c := NewController()
	go func() {
		time.Sleep(10 * time.Millisecond)
		c.Quit(0)
	}()
	code, err := c.Run(context.Background())
	if code != 0 || err != nil {
		t.Fatalf("unexpected result %d %v", code, err)
	}
}

func TestControllerContextCancel(t *testing.T) {
	c := NewController()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.Run(ctx); !errors.Is(err, ErrInterrupted) {
		t.Fatalf("expected ErrInterrupted, got %v", err)
	}
}

func TestExitErrorUnwraps(t *testing.T) {
	cause := errors.New("boom")
	err := error(exitErr(ExitHookFailed, cause))
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to unwrap")
	}
	var exit *ExitError
	if !errors.As(err, &exit) || exit.Code != ExitHookFailed {
		t.Fatalf("expected exit error with hook status, got %v", err)
	}
	if exit.Error() != "exit status -3: boom" {
		t.Fatalf("unexpected message %q", exit.Error())
	}
}
