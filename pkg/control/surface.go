// Package control is the boundary between the debounce engine and the user
// facing collaborators: the delay menu, persistence of the chosen delay, and
// the close action.
package control

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/offlinefirst/debounce/pkg/settings"
)

// DefaultDelay is used when no delay has been persisted.
const DefaultDelay uint32 = 10

// CloseID is the menu command identifier of the Close item. It must fit the
// 16-bit command word of a menu notification.
const CloseID uint32 = 0xDEAD

// Presets are the delays offered by the menu, in milliseconds.
var Presets = []uint32{1, 3, 5, 10, 15, 20, 25, 50, 100}

// Thresholder is the part of the engine the surface drives.
type Thresholder interface {
	Threshold() uint32
	SetThreshold(ms uint32)
}

// Action is the outcome of a menu selection.
type Action int

const (
	ActionNone Action = iota
	ActionSetDelay
	ActionClose
)

// String returns the action name.
func (a Action) String() string {
	switch a {
	case ActionSetDelay:
		return "set_delay"
	case ActionClose:
		return "close"
	default:
		return "none"
	}
}

// Item is one entry of the menu model.
type Item struct {
	ID        uint32
	Label     string
	Checked   bool
	Disabled  bool
	Default   bool
	Separator bool
}

// Options configures a Surface.
type Options struct {
	Engine  Thresholder
	Store   settings.Store
	Logger  *slog.Logger
	OnClose func()
}

// Surface exposes the delay controls to a UI.
type Surface struct {
	engine  Thresholder
	store   settings.Store
	logger  *slog.Logger
	onClose func()
}

// New validates options and constructs a surface.
func New(opts Options) (*Surface, error) {
	if opts.Engine == nil {
		return nil, errors.New("engine must be provided")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Surface{
		engine:  opts.Engine,
		store:   opts.Store,
		logger:  logger,
		onClose: opts.OnClose,
	}, nil
}

// Label formats a delay the way the menu shows it.
func Label(ms uint32) string {
	return strconv.FormatUint(uint64(ms), 10) + "ms"
}

// Active returns the delay currently applied by the engine.
func (s *Surface) Active() uint32 {
	return s.engine.Threshold()
}

// Delays returns the preset entries of the delay submenu. The active delay
// is checked and disabled; DefaultDelay is marked as the default item.
func (s *Surface) Delays() []Item {
	active := s.engine.Threshold()
	items := make([]Item, 0, len(Presets))
	for _, ms := range Presets {
		items = append(items, Item{
			ID:       ms,
			Label:    Label(ms),
			Checked:  ms == active,
			Disabled: ms == active,
			Default:  ms == DefaultDelay,
		})
	}
	return items
}

// Items returns the full menu model: the delay presets, a separator, and Close.
func (s *Surface) Items() []Item {
	items := s.Delays()
	items = append(items,
		Item{Separator: true},
		Item{ID: CloseID, Label: "Close"},
	)
	return items
}

// Select applies a menu command. Zero means the menu was dismissed. Any other
// value than CloseID is taken as a delay in milliseconds; it is applied before
// it is persisted, so a persistence failure still changes the running delay
// and is reported as ErrNotPersisted.
func (s *Surface) Select(id uint32) (Action, error) {
	switch id {
	case 0:
		return ActionNone, nil
	case CloseID:
		s.logger.Info("close requested")
		if s.onClose != nil {
			s.onClose()
		}
		return ActionClose, nil
	}

	previous := s.engine.Threshold()
	s.engine.SetThreshold(id)
	s.logger.Info("debounce delay changed", "from_ms", previous, "to_ms", id)

	if s.store == nil {
		return ActionSetDelay, nil
	}
	if err := s.store.SaveDelay(id); err != nil {
		s.logger.Warn("debounce delay not persisted", "delay_ms", id, "store", s.store.Describe(), "error", err)
		return ActionSetDelay, fmt.Errorf("%w: %v", ErrNotPersisted, err)
	}
	return ActionSetDelay, nil
}

// Restore reads the persisted delay. Missing, unreadable, or zero values fall
// back to DefaultDelay without error.
func Restore(store settings.Store, logger *slog.Logger) uint32 {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if store == nil {
		return DefaultDelay
	}
	ms, err := store.LoadDelay()
	if err != nil {
		if !errors.Is(err, settings.ErrNotFound) {
			logger.Debug("persisted delay unreadable, using default", "store", store.Describe(), "error", err)
		}
		return DefaultDelay
	}
	if ms == 0 {
		logger.Debug("persisted delay is zero, using default", "store", store.Describe())
		return DefaultDelay
	}
	logger.Debug("persisted delay restored", "store", store.Describe(), "delay_ms", ms)
	return ms
}
