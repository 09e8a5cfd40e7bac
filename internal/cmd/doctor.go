package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/offlinefirst/debounce/pkg/control"
	"github.com/offlinefirst/debounce/pkg/permissions"
	"github.com/offlinefirst/debounce/pkg/settings"
	"github.com/offlinefirst/debounce/pkg/singleton"
	"github.com/offlinefirst/debounce/pkg/tap"
)

func newDoctorCommand() command {
	return command{
		name:        "doctor",
		description: "Report hook support, settings storage, and instance lock details",
		run:         runDoctor,
	}
}

func runDoctor(fs *flag.FlagSet, args []string, ctx *AppContext, stdout io.Writer, stderr io.Writer) error {
	if ctx == nil {
		return fmt.Errorf("application context unavailable")
	}

	fmt.Fprintf(stdout, "debounce %s\n", versionString())
	fmt.Fprintf(stdout, "  config: %s\n", ctx.Config.Source)

	env := tap.DetectEnvironment()
	fmt.Fprintf(stdout, "  hook: provider=%s available=%t (%s)\n", env.Provider, env.Available, env.Message)
	if env.Guidance != "" {
		fmt.Fprintf(stdout, "    hint: %s\n", env.Guidance)
	}

	for _, probe := range []struct {
		name   string
		result permissions.ProbeResult
	}{
		{"hook permission", permissions.ProbeInputHook(nil)},
		{"priority", permissions.ProbePriority(nil)},
	} {
		fmt.Fprintf(stdout, "  %s: %s (%s)\n", probe.name, probe.result.StatusString(), probe.result.Message)
		if probe.result.Guidance != "" {
			fmt.Fprintf(stdout, "    hint: %s\n", probe.result.Guidance)
		}
	}

	store, err := ctx.OpenStore()
	if err != nil {
		fmt.Fprintf(stdout, "  settings: unavailable (%v)\n", err)
	} else {
		fmt.Fprintf(stdout, "  settings: %s\n", store.Describe())
		ms, loadErr := store.LoadDelay()
		switch {
		case loadErr == nil && ms != 0:
			fmt.Fprintf(stdout, "  delay: %s (persisted)\n", control.Label(ms))
		case loadErr == nil, isNotFound(loadErr):
			fmt.Fprintf(stdout, "  delay: %s (default)\n", control.Label(control.DefaultDelay))
		default:
			fmt.Fprintf(stdout, "  delay: %s (default; stored value unreadable: %v)\n", control.Label(control.DefaultDelay), loadErr)
		}
	}

	fmt.Fprintf(stdout, "  lock: %s\n", singleton.Describe(singleton.DefaultName))
	fmt.Fprintf(stdout, "  policy: %s\n", ctx.Config.Debounce.Policy)
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, settings.ErrNotFound)
}
