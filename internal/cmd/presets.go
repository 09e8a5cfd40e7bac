package cmd

import (
	"flag"
	"fmt"
	"io"

	"github.com/offlinefirst/debounce/pkg/control"
	"github.com/offlinefirst/debounce/pkg/debounce"
)

func newPresetsCommand() command {
	return command{
		name:        "presets",
		description: "List the delay menu with the active and default entries marked",
		run:         runPresets,
	}
}

func runPresets(fs *flag.FlagSet, args []string, ctx *AppContext, stdout io.Writer, stderr io.Writer) error {
	if ctx == nil {
		return fmt.Errorf("application context unavailable")
	}
	store, err := ctx.OpenStore()
	if err != nil {
		ctx.Logger.Warn("settings store unavailable", "error", err)
		store = nil
	}

	engine := debounce.New(debounce.Options{Threshold: control.Restore(store, ctx.Logger)})
	surface, err := control.New(control.Options{Engine: engine, Logger: ctx.Logger})
	if err != nil {
		return err
	}

	for _, item := range surface.Delays() {
		marker := " "
		if item.Checked {
			marker = "*"
		}
		suffix := ""
		if item.Default {
			suffix = " (default)"
		}
		fmt.Fprintf(stdout, "%s %6s%s\n", marker, item.Label, suffix)
	}
	return nil
}
