package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/offlinefirst/debounce/pkg/control"
	"github.com/offlinefirst/debounce/pkg/session"
)

func newRunCommand() command {
	return command{
		name:        "run",
		description: "Start the debouncer with its notification icon",
		configure: func(fs *flag.FlagSet) {
			fs.Bool("plan-only", false, "Print the resolved configuration without starting")
		},
		run: runDebouncer,
	}
}

// sessionRun is swapped in tests.
var sessionRun = session.Run

func runDebouncer(fs *flag.FlagSet, args []string, ctx *AppContext, stdout io.Writer, stderr io.Writer) error {
	if ctx == nil {
		return fmt.Errorf("application context unavailable")
	}

	planOnly := boolFlag(fs, "plan-only")
	ctx.Logger.Info("run command invoked", "plan_only", planOnly, "config_source", ctx.Config.Source)

	store, err := ctx.OpenStore()
	if err != nil {
		// The session still runs; the delay is then kept for this session only.
		ctx.Logger.Warn("settings store unavailable", "backend", ctx.Config.Settings.Backend, "error", err)
		store = nil
	}

	if planOnly {
		printRunPlan(ctx, stdout, control.Restore(store, ctx.Logger), describeStore(store))
		return nil
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	code, err := sessionRun(sigCtx, session.Options{
		Config: ctx.Config,
		Logger: ctx.Logger,
		Store:  store,
	})
	if err != nil {
		return err
	}
	if code != 0 {
		return &session.ExitError{Code: code}
	}
	return nil
}

func printRunPlan(ctx *AppContext, stdout io.Writer, delay uint32, store string) {
	fmt.Fprintf(stdout, "Resolved configuration (source: %s)\n", ctx.Config.Source)
	fmt.Fprintf(stdout, "  delay: %s\n", control.Label(delay))
	fmt.Fprintf(stdout, "  debounce.policy: %s\n", ctx.Config.Debounce.Policy)
	fmt.Fprintf(stdout, "  settings.store: %s\n", store)
	fmt.Fprintf(stdout, "  settings.watch: %t\n", ctx.Config.Settings.Watch)
	fmt.Fprintf(stdout, "  tap.notify_buffer: %d\n", ctx.Config.Tap.NotifyBuffer)
	fmt.Fprintf(stdout, "  logging.level: %s\n", ctx.Config.Logging.Level)
	fmt.Fprintf(stdout, "  logging.format: %s\n", ctx.Config.Logging.Format)
}

func boolFlag(fs *flag.FlagSet, name string) bool {
	f := fs.Lookup(name)
	if f == nil {
		return false
	}
	value, err := strconv.ParseBool(f.Value.String())
	if err != nil {
		return false
	}
	return value
}

func stringFlag(fs *flag.FlagSet, name string) string {
	f := fs.Lookup(name)
	if f == nil {
		return ""
	}
	return f.Value.String()
}

func uintFlag(fs *flag.FlagSet, name string) (uint32, error) {
	f := fs.Lookup(name)
	if f == nil {
		return 0, nil
	}
	value, err := strconv.ParseUint(f.Value.String(), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid --%s: %w", name, err)
	}
	return uint32(value), nil
}
