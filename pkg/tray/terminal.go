package tray

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/gdamore/tcell/v2"

	"github.com/offlinefirst/debounce/pkg/control"
)

// Menu renders the surface model in a terminal. Enter applies the item under
// the cursor; Close, q, or Esc leave the menu.
type Menu struct {
	surface *control.Surface
	screen  tcell.Screen
	logger  *slog.Logger

	cursor int
	status string
}

// NewMenu binds surface to an initialised screen. The caller owns the screen.
func NewMenu(surface *control.Surface, screen tcell.Screen, logger *slog.Logger) (*Menu, error) {
	if surface == nil {
		return nil, errors.New("control surface must be provided")
	}
	if screen == nil {
		return nil, errors.New("screen must be provided")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	m := &Menu{surface: surface, screen: screen, logger: logger}
	m.cursor = m.activeIndex()
	return m, nil
}

// Run handles keys until the menu is left or ctx is done.
func (m *Menu) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	stop := context.AfterFunc(ctx, func() {
		_ = m.screen.PostEvent(tcell.NewEventInterrupt(nil))
	})
	defer stop()

	for {
		m.draw()
		ev := m.screen.PollEvent()
		switch e := ev.(type) {
		case nil:
			return nil
		case *tcell.EventInterrupt:
			if ctx.Err() != nil {
				return ctx.Err()
			}
		case *tcell.EventResize:
			m.screen.Sync()
		case *tcell.EventKey:
			done, err := m.handleKey(e)
			if done || err != nil {
				return err
			}
		}
	}
}

func (m *Menu) handleKey(ev *tcell.EventKey) (bool, error) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true, nil
	case tcell.KeyUp:
		m.move(-1)
	case tcell.KeyDown:
		m.move(1)
	case tcell.KeyEnter:
		return m.choose()
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return true, nil
		case 'k':
			m.move(-1)
		case 'j':
			m.move(1)
		case ' ':
			return m.choose()
		}
	}
	return false, nil
}

func (m *Menu) choose() (bool, error) {
	items := m.surface.Items()
	item := items[m.cursor]
	if item.Disabled {
		return false, nil
	}
	action, err := m.surface.Select(item.ID)
	switch {
	case errors.Is(err, control.ErrNotPersisted):
		m.status = fmt.Sprintf("%s applied but not saved", item.Label)
	case err != nil:
		return true, err
	case action == control.ActionClose:
		return true, nil
	default:
		m.status = fmt.Sprintf("%s saved", item.Label)
	}
	return false, nil
}

// move steps the cursor over separators, wrapping at both ends.
func (m *Menu) move(step int) {
	items := m.surface.Items()
	n := len(items)
	for i := 0; i < n; i++ {
		m.cursor = (m.cursor + step + n) % n
		if !items[m.cursor].Separator {
			return
		}
	}
}

func (m *Menu) activeIndex() int {
	for i, item := range m.surface.Items() {
		if item.Checked {
			return i
		}
	}
	return 0
}

// Lines returns the text rows of the menu, without the cursor highlight.
func (m *Menu) Lines() []string {
	lines := []string{
		fmt.Sprintf("%s (current: %s)", DelayMenuLabel, control.Label(m.surface.Active())),
		"",
	}
	for _, item := range m.surface.Items() {
		lines = append(lines, itemText(item))
	}
	lines = append(lines, "", "up/down or j/k move, enter selects, q quits")
	if m.status != "" {
		lines = append(lines, m.status)
	}
	return lines
}

func itemText(item control.Item) string {
	switch {
	case item.Separator:
		return "  ----"
	case item.ID == control.CloseID:
		return "  " + item.Label
	}
	mark := "( )"
	if item.Checked {
		mark = "(*)"
	}
	text := "  " + mark + " " + item.Label
	if item.Default {
		text += " (default)"
	}
	return text
}

func (m *Menu) draw() {
	m.screen.Clear()
	base := tcell.StyleDefault
	const itemRow = 2
	for row, line := range m.Lines() {
		style := base
		if row == itemRow+m.cursor {
			style = style.Reverse(true)
		}
		x := 0
		for _, r := range line {
			m.screen.SetContent(x, row, r, nil, style)
			x++
		}
	}
	m.screen.Show()
}
