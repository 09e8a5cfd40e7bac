package cmd

import (
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/offlinefirst/debounce/pkg/control"
	"github.com/offlinefirst/debounce/pkg/settings"
)

func newDelayCommand() command {
	return command{
		name:        "delay",
		description: "Print the persisted delay, or persist a new one (delay [ms])",
		run:         runDelay,
	}
}

func runDelay(fs *flag.FlagSet, args []string, ctx *AppContext, stdout io.Writer, stderr io.Writer) error {
	if ctx == nil {
		return fmt.Errorf("application context unavailable")
	}
	store, err := ctx.OpenStore()
	if err != nil {
		return fmt.Errorf("open settings store: %w", err)
	}

	if len(args) == 0 {
		_, err := fmt.Fprintln(stdout, control.Label(control.Restore(store, ctx.Logger)))
		return err
	}

	ms, err := parseDelay(args[0])
	if err != nil {
		return err
	}
	if err := store.SaveDelay(ms); err != nil {
		return fmt.Errorf("save delay: %w", err)
	}
	ctx.Logger.Info("debounce delay persisted", "delay_ms", ms, "store", store.Describe())
	_, err = fmt.Fprintf(stdout, "%s saved to %s\n", control.Label(ms), store.Describe())
	return err
}

// parseDelay accepts "25" or "25ms". Zero is rejected because a stored zero
// reads back as the default.
func parseDelay(value string) (uint32, error) {
	trimmed := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(value)), "ms")
	ms, err := strconv.ParseUint(trimmed, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid delay %q: %w", value, err)
	}
	if ms == 0 {
		return 0, fmt.Errorf("delay must be positive")
	}
	return uint32(ms), nil
}

func describeStore(store settings.Store) string {
	if store == nil {
		return "none (session only)"
	}
	return store.Describe()
}
