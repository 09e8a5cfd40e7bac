package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/gdamore/tcell/v2"

	"github.com/offlinefirst/debounce/pkg/control"
	"github.com/offlinefirst/debounce/pkg/debounce"
	"github.com/offlinefirst/debounce/pkg/tray"
)

func newMenuCommand() command {
	return command{
		name:        "menu",
		description: "Choose the persisted delay from an interactive terminal menu",
		run:         runMenu,
	}
}

// newScreen is swapped in tests.
var newScreen = tcell.NewScreen

func runMenu(fs *flag.FlagSet, args []string, ctx *AppContext, stdout io.Writer, stderr io.Writer) error {
	if ctx == nil {
		return fmt.Errorf("application context unavailable")
	}
	store, err := ctx.OpenStore()
	if err != nil {
		return fmt.Errorf("open settings store: %w", err)
	}

	engine := debounce.New(debounce.Options{Threshold: control.Restore(store, ctx.Logger)})
	surface, err := control.New(control.Options{Engine: engine, Store: store, Logger: ctx.Logger})
	if err != nil {
		return err
	}

	screen, err := newScreen()
	if err != nil {
		return fmt.Errorf("open terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init terminal: %w", err)
	}
	defer screen.Fini()

	menu, err := tray.NewMenu(surface, screen, ctx.Logger)
	if err != nil {
		return err
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := menu.Run(sigCtx); err != nil && sigCtx.Err() == nil {
		return err
	}
	return nil
}
