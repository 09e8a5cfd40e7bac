// Package session performs the ordered startup of the debouncer, runs its
// event loop, and maps failures to process exit statuses.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/offlinefirst/debounce/pkg/config"
	"github.com/offlinefirst/debounce/pkg/control"
	"github.com/offlinefirst/debounce/pkg/debounce"
	"github.com/offlinefirst/debounce/pkg/dialog"
	"github.com/offlinefirst/debounce/pkg/priority"
	"github.com/offlinefirst/debounce/pkg/settings"
	"github.com/offlinefirst/debounce/pkg/singleton"
	"github.com/offlinefirst/debounce/pkg/tap"
)

// Dialog titles and messages shown during startup.
const (
	titleDuplicate   = "Duplicate Instance"
	messageDuplicate = "An existing instance of Debounce is already running"
	titleMutexCreate = "Could not create mutex"
	titleMutexWait   = "Could not wait for mutex"
	messageMutex     = "Could not determine if another instance of Debounce is already running."
	titlePriority    = "Failed to set Priority"
	messagePriority  = "Debounce failed to set process priority to high. You may experience additional input delay."
	titleHook        = "Hook failed"
	messageHook      = "Debounce failed to register hook."
	titleSurface     = "Tray failed"
	messageSurface   = "Debounce failed to create its notification icon."
)

// Releaser frees a held resource.
type Releaser interface {
	Release() error
}

// Uninstaller removes an installed hook.
type Uninstaller interface {
	Uninstall() error
}

// UI is a running control surface such as the notification icon.
type UI interface {
	Close() error
}

// UIOptions are handed to the UI factory.
type UIOptions struct {
	Surface  *control.Surface
	Notifier dialog.Notifier
	Logger   *slog.Logger
}

// Options configures a session. Nil function fields select the platform
// implementation.
type Options struct {
	Config   config.Config
	Logger   *slog.Logger
	Notifier dialog.Notifier
	Store    settings.Store
	LockName string

	AcquireLock   func(name string) (Releaser, error)
	RaisePriority func() error
	InstallHook   func(t *tap.Tap) (Uninstaller, error)
	NewLoop       func() Loop
	NewUI         func(opts UIOptions) (UI, error)
	WatchSettings func(ctx context.Context, path string, fn func(uint32), logger *slog.Logger) error
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if o.Notifier == nil {
		o.Notifier = dialog.Default()
	}
	if o.LockName == "" {
		o.LockName = singleton.DefaultName
	}
	if o.AcquireLock == nil {
		o.AcquireLock = func(name string) (Releaser, error) {
			lock, err := singleton.Acquire(name)
			if err != nil {
				return nil, err
			}
			return lock, nil
		}
	}
	if o.RaisePriority == nil {
		o.RaisePriority = priority.Raise
	}
	if o.InstallHook == nil {
		o.InstallHook = func(t *tap.Tap) (Uninstaller, error) {
			hook, err := tap.Install(t)
			if err != nil {
				return nil, err
			}
			return hook, nil
		}
	}
	if o.NewLoop == nil {
		o.NewLoop = newPlatformLoop
	}
	if o.NewUI == nil {
		o.NewUI = newPlatformUI
	}
	if o.WatchSettings == nil {
		o.WatchSettings = settings.Watch
	}
	return o
}

// Run starts the debouncer and blocks until it is closed or ctx is done. The
// returned status is the process exit code; err is an *ExitError whenever the
// status does not come from a quit request.
func Run(ctx context.Context, opts Options) (int, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	// The lock, hook, tray window, and message loop are owned by one OS thread.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	opts = opts.withDefaults()
	logger := opts.Logger.With("session", uuid.NewString())
	notifier := opts.Notifier

	policy, err := debounce.ParsePolicy(opts.Config.Debounce.Policy)
	if err != nil {
		logger.Warn("unknown policy, using default", "policy", opts.Config.Debounce.Policy, "error", err)
		policy = debounce.DefaultPolicy
	}

	lock, err := opts.AcquireLock(opts.LockName)
	if err != nil {
		switch {
		case errors.Is(err, singleton.ErrAlreadyRunning):
			logger.Warn("another instance is running", "lock", opts.LockName)
			notifier.Notify(dialog.SeverityWarning, titleDuplicate, messageDuplicate)
			return ExitDuplicateInstance, exitErr(ExitDuplicateInstance, err)
		case errors.Is(err, singleton.ErrWaitFailed):
			logger.Error("instance lock wait failed", "lock", opts.LockName, "error", err)
			notifier.Notify(dialog.SeverityError, titleMutexWait, messageMutex)
			return ExitMutexWaitFailed, exitErr(ExitMutexWaitFailed, err)
		default:
			logger.Error("instance lock unavailable", "lock", opts.LockName, "error", err)
			notifier.Notify(dialog.SeverityError, titleMutexCreate, messageMutex)
			return ExitMutexUnavailable, exitErr(ExitMutexUnavailable, err)
		}
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logger.Warn("release instance lock", "error", err)
		}
	}()

	threshold := control.Restore(opts.Store, logger)
	engine := debounce.New(debounce.Options{Threshold: threshold, Policy: policy})
	t := tap.New(engine, tap.Options{NotifyBuffer: opts.Config.Tap.NotifyBuffer})

	loop := opts.NewLoop()
	surface, err := control.New(control.Options{
		Engine:  engine,
		Store:   opts.Store,
		Logger:  logger,
		OnClose: func() { loop.Quit(0) },
	})
	if err != nil {
		return ExitSurfaceFailed, exitErr(ExitSurfaceFailed, err)
	}

	ui, err := opts.NewUI(UIOptions{Surface: surface, Notifier: notifier, Logger: logger})
	if err != nil {
		logger.Error("create control surface", "error", err)
		notifier.Notify(dialog.SeverityError, titleSurface, messageSurface)
		return ExitSurfaceFailed, exitErr(ExitSurfaceFailed, err)
	}
	if ui != nil {
		defer func() {
			if err := ui.Close(); err != nil {
				logger.Warn("close control surface", "error", err)
			}
		}()
	}

	if err := opts.RaisePriority(); err != nil {
		logger.Warn("priority not raised", "error", err)
		notifier.Notify(dialog.SeverityWarning, titlePriority, messagePriority)
	}

	hook, err := opts.InstallHook(t)
	if err != nil {
		logger.Error("install input hook", "error", err)
		notifier.Notify(dialog.SeverityError, titleHook, messageHook)
		return ExitHookFailed, exitErr(ExitHookFailed, err)
	}
	defer func() {
		if err := hook.Uninstall(); err != nil {
			logger.Warn("uninstall input hook", "error", err)
		}
	}()

	workCtx, cancel := context.WithCancel(ctx)
	var workers errgroup.Group
	defer func() {
		cancel()
		_ = workers.Wait()
	}()

	if decisions := t.Decisions(); decisions != nil {
		workers.Go(func() error {
			logDecisions(workCtx, decisions, logger)
			return nil
		})
	}

	if fs, ok := opts.Store.(*settings.FileStore); ok && opts.Config.Settings.Watch {
		workers.Go(func() error {
			err := opts.WatchSettings(workCtx, fs.Path(), func(ms uint32) {
				if ms == 0 {
					return
				}
				engine.SetThreshold(ms)
			}, logger)
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("settings watcher stopped", "error", err)
			}
			return nil
		})
	}

	logger.Info("debouncer running",
		"delay_ms", engine.Threshold(),
		"policy", engine.Policy().Name(),
		"store", describe(opts.Store),
	)

	code, loopErr := loop.Run(ctx)

	stats := engine.Stats()
	logger.Info("debouncer stopped",
		"code", code,
		"passed_left", stats.Passed[debounce.Left],
		"passed_right", stats.Passed[debounce.Right],
		"suppressed_left", stats.Suppressed[debounce.Left],
		"suppressed_right", stats.Suppressed[debounce.Right],
		"dropped_notifications", t.Dropped(),
	)

	switch {
	case loopErr == nil:
		return code, nil
	case errors.Is(loopErr, ErrInterrupted):
		logger.Info("session interrupted")
		return 0, nil
	case errors.Is(loopErr, ErrLoopAbnormal):
		return ExitLoopAbnormal, exitErr(ExitLoopAbnormal, loopErr)
	default:
		return ExitLoopAbnormal, exitErr(ExitLoopAbnormal, fmt.Errorf("%w: %v", ErrLoopAbnormal, loopErr))
	}
}

func logDecisions(ctx context.Context, decisions <-chan tap.Decision, logger *slog.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case d := <-decisions:
			if d.Verdict != debounce.Suppress {
				continue
			}
			logger.Debug("bounce suppressed",
				"button", d.Event.Channel.String(),
				"kind", d.Event.Kind.String(),
				"time", d.Event.Timestamp,
			)
		}
	}
}

func describe(store settings.Store) string {
	if store == nil {
		return "none"
	}
	return store.Describe()
}
