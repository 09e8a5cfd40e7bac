// Package tray presents the delay menu: a notification area icon on Windows
// and an interactive terminal menu everywhere.
package tray

import (
	"errors"
	"io"
	"log/slog"

	"github.com/offlinefirst/debounce/pkg/control"
	"github.com/offlinefirst/debounce/pkg/dialog"
)

const (
	// ClassName is the registered window class of the icon window.
	ClassName = "Debounce"
	// WindowTitle names the message-only window.
	WindowTitle = "Debounce Message-Only Window"
	// Tip is the icon tooltip.
	Tip = "Debounce is running..."
	// IconLibrary holds the mouse icon resource.
	IconLibrary = "ddores.dll"
	// IconResource is the resource id of the mouse icon in IconLibrary.
	IconResource = 2212
	// DelayMenuLabel is the label of the delay submenu.
	DelayMenuLabel = "Delay"
)

const (
	titleNotSaved   = "Delay not saved"
	messageNotSaved = "The new delay is active but could not be saved. It will be lost when Debounce exits."
)

var (
	// ErrUnsupported indicates there is no notification area on this platform.
	ErrUnsupported = errors.New("notification icon not supported on this platform")
	// ErrActive indicates an icon already exists in this process.
	ErrActive = errors.New("notification icon already active")
)

// Options configures the notification icon.
type Options struct {
	Surface  *control.Surface
	Notifier dialog.Notifier
	Logger   *slog.Logger
}

func (o Options) validate() (Options, error) {
	if o.Surface == nil {
		return o, errors.New("control surface must be provided")
	}
	if o.Notifier == nil {
		o.Notifier = dialog.Default()
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o, nil
}
