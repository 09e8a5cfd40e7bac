package session

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/offlinefirst/debounce/pkg/config"
	"github.com/offlinefirst/debounce/pkg/control"
	"github.com/offlinefirst/debounce/pkg/debounce"
	"github.com/offlinefirst/debounce/pkg/dialog"
	"github.com/offlinefirst/debounce/pkg/settings"
	"github.com/offlinefirst/debounce/pkg/singleton"
	"github.com/offlinefirst/debounce/pkg/tap"
)

type notice struct {
	severity dialog.Severity
	title    string
}

type recorder struct {
	mu      sync.Mutex
	notices []notice
	steps   []string
}

func (r *recorder) Notify(severity dialog.Severity, title, _ string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, notice{severity: severity, title: title})
}

func (r *recorder) step(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.steps = append(r.steps, name)
}

func (r *recorder) titles() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.notices))
	for _, n := range r.notices {
		out = append(out, n.title)
	}
	return out
}

type releaseFunc func() error

func (f releaseFunc) Release() error { return f() }

type uninstallFunc func() error

func (f uninstallFunc) Uninstall() error { return f() }

type closeFunc func() error

func (f closeFunc) Close() error { return f() }

// harness wires fakes for every platform seam. The loop is a Controller that
// the test drives through the captured surface or directly.
type harness struct {
	rec        *recorder
	controller *Controller
	surface    *control.Surface
	tap        *tap.Tap
	ready      chan struct{}
	opts       Options
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		rec:        &recorder{},
		controller: NewController(),
		ready:      make(chan struct{}),
	}
	h.opts = Options{
		Config:   config.Default(),
		Notifier: h.rec,
		AcquireLock: func(string) (Releaser, error) {
			h.rec.step("lock")
			return releaseFunc(func() error { h.rec.step("unlock"); return nil }), nil
		},
		NewLoop: func() Loop { return h.controller },
		NewUI: func(opts UIOptions) (UI, error) {
			h.rec.step("ui")
			h.surface = opts.Surface
			return closeFunc(func() error { h.rec.step("ui-close"); return nil }), nil
		},
		RaisePriority: func() error {
			h.rec.step("priority")
			return nil
		},
		InstallHook: func(tp *tap.Tap) (Uninstaller, error) {
			h.rec.step("hook")
			h.tap = tp
			close(h.ready)
			return uninstallFunc(func() error { h.rec.step("unhook"); return nil }), nil
		},
		WatchSettings: func(ctx context.Context, _ string, _ func(uint32), _ *slog.Logger) error {
			<-ctx.Done()
			return ctx.Err()
		},
	}
	return h
}

type result struct {
	code int
	err  error
}

func (h *harness) start() <-chan result {
	out := make(chan result, 1)
	go func() {
		code, err := Run(context.Background(), h.opts)
		out <- result{code: code, err: err}
	}()
	return out
}

func (h *harness) waitReady(t *testing.T) {
	t.Helper()
	select {
	case <-h.ready:
	case <-time.After(2 * time.Second):
		t.Fatalf("session did not reach the hook")
	}
}

func wait(t *testing.T, ch <-chan result) result {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(2 * time.Second):
		t.Fatalf("session did not return")
		return result{}
	}
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	var exit *ExitError
	if !errors.As(err, &exit) {
		t.Fatalf("expected *ExitError, got %v", err)
	}
	return exit.Code
}

func TestCloseQuitsWithZero(t *testing.T) {
	h := newHarness(t)
	done := h.start()
	h.waitReady(t)

	if _, err := h.surface.Select(control.CloseID); err != nil {
		t.Fatalf("select close: %v", err)
	}
	r := wait(t, done)
	if r.code != 0 || r.err != nil {
		t.Fatalf("expected clean exit, got %d %v", r.code, r.err)
	}

	want := []string{"lock", "ui", "priority", "hook", "unhook", "ui-close", "unlock"}
	if len(h.rec.steps) != len(want) {
		t.Fatalf("unexpected steps %v", h.rec.steps)
	}
	for i := range want {
		if h.rec.steps[i] != want[i] {
			t.Fatalf("step %d: expected %s, got %v", i, want[i], h.rec.steps)
		}
	}
	if len(h.rec.titles()) != 0 {
		t.Fatalf("expected no dialogs, got %v", h.rec.titles())
	}
}

func TestQuitPayloadIsExitStatus(t *testing.T) {
	h := newHarness(t)
	done := h.start()
	h.waitReady(t)

	h.controller.Quit(7)
	r := wait(t, done)
	if r.code != 7 || r.err != nil {
		t.Fatalf("expected payload 7, got %d %v", r.code, r.err)
	}
}

func TestLockFailuresMapToStatuses(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		code     int
		severity dialog.Severity
		title    string
	}{
		{"duplicate", singleton.ErrAlreadyRunning, ExitDuplicateInstance, dialog.SeverityWarning, titleDuplicate},
		{"create", singleton.ErrUnavailable, ExitMutexUnavailable, dialog.SeverityError, titleMutexCreate},
		{"wait", singleton.ErrWaitFailed, ExitMutexWaitFailed, dialog.SeverityError, titleMutexWait},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t)
			h.opts.AcquireLock = func(string) (Releaser, error) { return nil, tc.err }

			code, err := Run(context.Background(), h.opts)
			if code != tc.code || exitCode(t, err) != tc.code {
				t.Fatalf("expected status %d, got %d %v", tc.code, code, err)
			}
			if !errors.Is(err, tc.err) {
				t.Fatalf("expected cause %v, got %v", tc.err, err)
			}
			if len(h.rec.notices) != 1 || h.rec.notices[0].severity != tc.severity || h.rec.notices[0].title != tc.title {
				t.Fatalf("unexpected dialogs %+v", h.rec.notices)
			}
			if len(h.rec.steps) != 0 {
				t.Fatalf("nothing should start after a lock failure, got %v", h.rec.steps)
			}
		})
	}
}

func TestHookFailureExits(t *testing.T) {
	h := newHarness(t)
	h.opts.InstallHook = func(*tap.Tap) (Uninstaller, error) { return nil, tap.ErrHookUnsupported }

	code, err := Run(context.Background(), h.opts)
	if code != ExitHookFailed || exitCode(t, err) != ExitHookFailed {
		t.Fatalf("expected hook failure status, got %d %v", code, err)
	}
	if got := h.rec.titles(); len(got) != 1 || got[0] != titleHook {
		t.Fatalf("expected hook dialog, got %v", got)
	}
	// The surface and the lock are still torn down.
	last := h.rec.steps[len(h.rec.steps)-2:]
	if last[0] != "ui-close" || last[1] != "unlock" {
		t.Fatalf("unexpected teardown %v", h.rec.steps)
	}
}

func TestSurfaceFailureExits(t *testing.T) {
	h := newHarness(t)
	h.opts.NewUI = func(UIOptions) (UI, error) { return nil, errors.New("no shell") }

	code, err := Run(context.Background(), h.opts)
	if code != ExitSurfaceFailed || exitCode(t, err) != ExitSurfaceFailed {
		t.Fatalf("expected surface failure status, got %d %v", code, err)
	}
	for _, s := range h.rec.steps {
		if s == "hook" {
			t.Fatalf("hook must not be armed without a surface")
		}
	}
}

func TestPriorityFailureOnlyWarns(t *testing.T) {
	h := newHarness(t)
	h.opts.RaisePriority = func() error { return errors.New("access denied") }
	done := h.start()
	h.waitReady(t)

	h.controller.Quit(0)
	r := wait(t, done)
	if r.code != 0 || r.err != nil {
		t.Fatalf("expected clean exit, got %d %v", r.code, r.err)
	}
	if len(h.rec.notices) != 1 || h.rec.notices[0].severity != dialog.SeverityWarning || h.rec.notices[0].title != titlePriority {
		t.Fatalf("expected one priority warning, got %+v", h.rec.notices)
	}
}

func TestAbnormalLoopExit(t *testing.T) {
	h := newHarness(t)
	done := h.start()
	h.waitReady(t)

	h.controller.Fail(errors.New("queue broken"))
	r := wait(t, done)
	if r.code != ExitLoopAbnormal || exitCode(t, r.err) != ExitLoopAbnormal {
		t.Fatalf("expected abnormal loop status, got %d %v", r.code, r.err)
	}
	if !errors.Is(r.err, ErrLoopAbnormal) {
		t.Fatalf("expected ErrLoopAbnormal, got %v", r.err)
	}
}

func TestContextCancelStopsCleanly(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan result, 1)
	go func() {
		code, err := Run(ctx, h.opts)
		done <- result{code: code, err: err}
	}()
	h.waitReady(t)

	cancel()
	r := wait(t, done)
	if r.code != 0 || r.err != nil {
		t.Fatalf("expected interrupted session to exit cleanly, got %d %v", r.code, r.err)
	}
}

func TestRestoredDelayAndPolicyApplied(t *testing.T) {
	store := settings.NewFileStore(filepath.Join(t.TempDir(), settings.FileName))
	if err := store.SaveDelay(25); err != nil {
		t.Fatalf("save: %v", err)
	}

	h := newHarness(t)
	h.opts.Store = store
	h.opts.Config.Debounce.Policy = debounce.PolicyIndependent.Name()
	done := h.start()
	h.waitReady(t)

	engine := h.tap.Engine()
	if engine.Threshold() != 25 {
		t.Fatalf("expected restored delay 25, got %d", engine.Threshold())
	}
	if engine.Policy().Name() != debounce.PolicyIndependent.Name() {
		t.Fatalf("expected independent policy, got %s", engine.Policy().Name())
	}

	if _, err := h.surface.Select(50); err != nil {
		t.Fatalf("select: %v", err)
	}
	if ms, err := store.LoadDelay(); err != nil || ms != 50 {
		t.Fatalf("expected persisted 50, got %d %v", ms, err)
	}

	h.controller.Quit(0)
	wait(t, done)
}

func TestTapDecisionsReachEngine(t *testing.T) {
	h := newHarness(t)
	done := h.start()
	h.waitReady(t)

	if v := h.tap.Handle(tap.CodeLeftDown, 1000); v != debounce.Pass {
		t.Fatalf("first press should pass, got %s", v)
	}
	if v := h.tap.Handle(tap.CodeLeftDown, 1003); v != debounce.Suppress {
		t.Fatalf("bounce should be suppressed, got %s", v)
	}

	h.controller.Quit(0)
	wait(t, done)
}

func TestWatcherUpdatesThreshold(t *testing.T) {
	store := settings.NewFileStore(filepath.Join(t.TempDir(), settings.FileName))
	h := newHarness(t)
	h.opts.Store = store
	applied := make(chan struct{})
	h.opts.WatchSettings = func(ctx context.Context, path string, fn func(uint32), _ *slog.Logger) error {
		if path != store.Path() {
			t.Errorf("unexpected watch path %q", path)
		}
		fn(0)
		fn(42)
		close(applied)
		<-ctx.Done()
		return ctx.Err()
	}
	done := h.start()
	h.waitReady(t)

	select {
	case <-applied:
	case <-time.After(2 * time.Second):
		t.Fatalf("watcher not started")
	}
	if got := h.tap.Engine().Threshold(); got != 42 {
		t.Fatalf("expected watched delay 42, got %d", got)
	}

	h.controller.Quit(0)
	wait(t, done)
}
