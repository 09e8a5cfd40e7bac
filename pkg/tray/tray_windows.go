//go:build windows

package tray

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/offlinefirst/debounce/pkg/control"
	"github.com/offlinefirst/debounce/pkg/dialog"
)

const (
	wmNull        = 0x0000
	wmContextMenu = 0x007B
	wmUser        = 0x0400
	wmCallback    = wmUser

	nimAdd        = 0x0
	nimDelete     = 0x2
	nimSetVersion = 0x4

	nifMessage  = 0x01
	nifIcon     = 0x02
	nifTip      = 0x04
	nifShowTip  = 0x80
	nifVersion4 = 4

	miimState   = 0x0001
	miimID      = 0x0002
	miimSubmenu = 0x0004
	miimString  = 0x0040
	miimFType   = 0x0100

	mftRadioCheck = 0x0200
	mftSeparator  = 0x0800
	mftRightOrder = 0x2000

	mfsDisabled = 0x0003
	mfsChecked  = 0x0008
	mfsDefault  = 0x1000

	tpmLeftAlign        = 0x0000
	tpmRightAlign       = 0x0008
	tpmNoNotify         = 0x0080
	tpmReturnCmd        = 0x0100
	tpmHorPosAnimation  = 0x0400
	tpmHorNegAnimation  = 0x0800
	smMenuDropAlignment = 40

	imageIcon      = 1
	lrDefaultSize  = 0x0040
	lrShared       = 0x8000
	idiApplication = 32512

	errorClassAlreadyExists = 1410
)

// hwndMessage is HWND_MESSAGE, the parent of message-only windows.
const hwndMessage = ^uintptr(2)

var (
	user32               = windows.NewLazySystemDLL("user32.dll")
	shell32              = windows.NewLazySystemDLL("shell32.dll")
	procRegisterClassExW = user32.NewProc("RegisterClassExW")
	procUnregisterClassW = user32.NewProc("UnregisterClassW")
	procCreateWindowExW  = user32.NewProc("CreateWindowExW")
	procDestroyWindow    = user32.NewProc("DestroyWindow")
	procDefWindowProcW   = user32.NewProc("DefWindowProcW")
	procCreatePopupMenu  = user32.NewProc("CreatePopupMenu")
	procDestroyMenu      = user32.NewProc("DestroyMenu")
	procInsertMenuItemW  = user32.NewProc("InsertMenuItemW")
	procTrackPopupMenu   = user32.NewProc("TrackPopupMenu")
	procSetForegroundWnd = user32.NewProc("SetForegroundWindow")
	procPostMessageW     = user32.NewProc("PostMessageW")
	procGetSystemMetrics = user32.NewProc("GetSystemMetrics")
	procLoadImageW       = user32.NewProc("LoadImageW")
	procLoadIconW        = user32.NewProc("LoadIconW")
	procShellNotifyIconW = shell32.NewProc("Shell_NotifyIconW")
)

type wndClassEx struct {
	Size       uint32
	Style      uint32
	WndProc    uintptr
	ClsExtra   int32
	WndExtra   int32
	Instance   windows.Handle
	Icon       windows.Handle
	Cursor     windows.Handle
	Background windows.Handle
	MenuName   *uint16
	ClassName  *uint16
	IconSm     windows.Handle
}

type notifyIconData struct {
	Size            uint32
	Wnd             windows.Handle
	ID              uint32
	Flags           uint32
	CallbackMessage uint32
	Icon            windows.Handle
	Tip             [128]uint16
	State           uint32
	StateMask       uint32
	Info            [256]uint16
	Version         uint32
	InfoTitle       [64]uint16
	InfoFlags       uint32
	GUIDItem        windows.GUID
	BalloonIcon     windows.Handle
}

type menuItemInfo struct {
	Size      uint32
	Mask      uint32
	Type      uint32
	State     uint32
	ID        uint32
	SubMenu   windows.Handle
	Checked   windows.Handle
	Unchecked windows.Handle
	ItemData  uintptr
	TypeData  *uint16
	Cch       uint32
	Item      windows.Handle
}

// current is the icon whose window receives callbacks. Only one icon exists
// per process.
var current atomic.Pointer[Icon]

var (
	wndProcOnce sync.Once
	wndProc     uintptr
)

// Icon is a notification area icon with the delay menu.
type Icon struct {
	surface  *control.Surface
	notifier dialog.Notifier
	logger   *slog.Logger

	instance windows.Handle
	class    *uint16
	hwnd     windows.Handle
	rtl      bool
	once     sync.Once
}

// New registers the window class, creates the message-only window, and adds
// the notification icon. It must run on the thread that pumps messages.
func New(opts Options) (*Icon, error) {
	opts, err := opts.validate()
	if err != nil {
		return nil, err
	}

	icon := &Icon{
		surface:  opts.Surface,
		notifier: opts.Notifier,
		logger:   opts.Logger,
	}
	if !current.CompareAndSwap(nil, icon) {
		return nil, ErrActive
	}

	if err := icon.create(); err != nil {
		icon.destroy()
		current.Store(nil)
		return nil, err
	}
	return icon, nil
}

func (i *Icon) create() error {
	wndProcOnce.Do(func() {
		wndProc = windows.NewCallback(windowProc)
	})

	if err := windows.GetModuleHandleEx(0, nil, &i.instance); err != nil {
		return fmt.Errorf("resolve module handle: %w", err)
	}
	class, err := windows.UTF16PtrFromString(ClassName)
	if err != nil {
		return err
	}
	i.class = class

	wc := wndClassEx{
		WndProc:   wndProc,
		Instance:  i.instance,
		ClassName: class,
	}
	wc.Size = uint32(unsafe.Sizeof(wc))
	if r, _, callErr := procRegisterClassExW.Call(uintptr(unsafe.Pointer(&wc))); r == 0 {
		var errno windows.Errno
		if !errors.As(callErr, &errno) || errno != errorClassAlreadyExists {
			return fmt.Errorf("RegisterClassExW: %w", callErr)
		}
	}

	title, err := windows.UTF16PtrFromString(WindowTitle)
	if err != nil {
		return err
	}
	hwnd, _, callErr := procCreateWindowExW.Call(
		0,
		uintptr(unsafe.Pointer(class)),
		uintptr(unsafe.Pointer(title)),
		0,
		0, 0, 0, 0,
		hwndMessage,
		0,
		uintptr(i.instance),
		0,
	)
	if hwnd == 0 {
		return fmt.Errorf("CreateWindowExW: %w", callErr)
	}
	i.hwnd = windows.Handle(hwnd)

	align, _, _ := procGetSystemMetrics.Call(smMenuDropAlignment)
	i.rtl = align != 0

	nid := i.notifyData()
	nid.Flags = nifMessage | nifIcon | nifTip | nifShowTip
	nid.CallbackMessage = wmCallback
	nid.Icon = loadIcon(i.logger)
	nid.Version = nifVersion4
	copy(nid.Tip[:len(nid.Tip)-1], windows.StringToUTF16(Tip))

	if r, _, callErr := procShellNotifyIconW.Call(nimAdd, uintptr(unsafe.Pointer(&nid))); r == 0 {
		return fmt.Errorf("Shell_NotifyIconW add: %w", callErr)
	}
	if r, _, callErr := procShellNotifyIconW.Call(nimSetVersion, uintptr(unsafe.Pointer(&nid))); r == 0 {
		i.logger.Warn("notification icon version not set", "error", callErr)
	}
	i.logger.Debug("notification icon added", "rtl", i.rtl)
	return nil
}

func (i *Icon) notifyData() notifyIconData {
	nid := notifyIconData{Wnd: i.hwnd}
	nid.Size = uint32(unsafe.Sizeof(nid))
	return nid
}

// loadIcon returns the mouse icon from ddores.dll, or the stock application
// icon when the resource library is missing.
func loadIcon(logger *slog.Logger) windows.Handle {
	lib, err := windows.LoadLibraryEx(IconLibrary, 0,
		windows.LOAD_LIBRARY_AS_IMAGE_RESOURCE|windows.LOAD_LIBRARY_AS_DATAFILE_EXCLUSIVE|windows.LOAD_LIBRARY_SEARCH_SYSTEM32)
	if err == nil {
		defer windows.FreeLibrary(lib)
		h, _, _ := procLoadImageW.Call(uintptr(lib), IconResource, imageIcon, 0, 0, lrDefaultSize|lrShared)
		if h != 0 {
			return windows.Handle(h)
		}
	}
	logger.Debug("mouse icon unavailable, using application icon", "library", IconLibrary, "error", err)
	h, _, _ := procLoadIconW.Call(0, idiApplication)
	return windows.Handle(h)
}

// Close removes the icon and destroys its window.
func (i *Icon) Close() error {
	if i == nil {
		return nil
	}
	var err error
	i.once.Do(func() {
		err = i.destroy()
		current.CompareAndSwap(i, nil)
	})
	return err
}

func (i *Icon) destroy() error {
	var errs []error
	if i.hwnd != 0 {
		nid := i.notifyData()
		procShellNotifyIconW.Call(nimDelete, uintptr(unsafe.Pointer(&nid)))
		if r, _, callErr := procDestroyWindow.Call(uintptr(i.hwnd)); r == 0 {
			errs = append(errs, fmt.Errorf("DestroyWindow: %w", callErr))
		}
		i.hwnd = 0
	}
	if i.class != nil {
		procUnregisterClassW.Call(uintptr(unsafe.Pointer(i.class)), uintptr(i.instance))
		i.class = nil
	}
	return errors.Join(errs...)
}

func windowProc(hwnd, msg, wParam, lParam uintptr) uintptr {
	if msg == wmCallback {
		if i := current.Load(); i != nil && uintptr(i.hwnd) == hwnd && lParam&0xFFFF == wmContextMenu {
			x := int32(int16(wParam & 0xFFFF))
			y := int32(int16((wParam >> 16) & 0xFFFF))
			i.showMenu(x, y)
			return 0
		}
	}
	r, _, _ := procDefWindowProcW.Call(hwnd, msg, wParam, lParam)
	return r
}

func (i *Icon) showMenu(x, y int32) {
	menu, submenu, err := i.buildMenu()
	if err != nil {
		i.logger.Warn("build menu", "error", err)
		return
	}
	defer procDestroyMenu.Call(uintptr(menu))
	defer procDestroyMenu.Call(uintptr(submenu))

	flags := uintptr(tpmNoNotify | tpmReturnCmd)
	if i.rtl {
		flags |= tpmRightAlign | tpmHorNegAnimation
	} else {
		flags |= tpmLeftAlign | tpmHorPosAnimation
	}

	procSetForegroundWnd.Call(uintptr(i.hwnd))
	r, _, _ := procTrackPopupMenu.Call(uintptr(menu), flags, uintptr(x), uintptr(y), 0, uintptr(i.hwnd), 0)
	procPostMessageW.Call(uintptr(i.hwnd), wmNull, 0, 0)

	// TrackPopupMenu returns the command id in a BOOL.
	id := uint32(int32(r))
	if _, err := i.surface.Select(id); err != nil {
		if errors.Is(err, control.ErrNotPersisted) {
			i.notifier.Notify(dialog.SeverityWarning, titleNotSaved, messageNotSaved)
			return
		}
		i.logger.Warn("menu selection failed", "id", id, "error", err)
	}
}

// buildMenu renders the surface model as the root menu with a Delay submenu.
func (i *Icon) buildMenu() (menu, submenu windows.Handle, err error) {
	m, _, callErr := procCreatePopupMenu.Call()
	if m == 0 {
		return 0, 0, fmt.Errorf("CreatePopupMenu: %w", callErr)
	}
	s, _, callErr := procCreatePopupMenu.Call()
	if s == 0 {
		procDestroyMenu.Call(m)
		return 0, 0, fmt.Errorf("CreatePopupMenu: %w", callErr)
	}
	menu, submenu = windows.Handle(m), windows.Handle(s)

	var order uint32
	if i.rtl {
		order = mftRightOrder
	}

	for _, item := range i.surface.Delays() {
		mi := menuItemInfo{
			Mask: miimFType | miimString | miimState | miimID,
			Type: mftRadioCheck | order,
			ID:   item.ID,
		}
		if item.Checked {
			mi.State |= mfsChecked
		}
		if item.Disabled {
			mi.State |= mfsDisabled
		}
		if item.Default {
			mi.State |= mfsDefault
		}
		insertItem(submenu, &mi, item.Label)
	}

	insertItem(menu, &menuItemInfo{
		Mask:    miimFType | miimString | miimSubmenu,
		Type:    order,
		SubMenu: submenu,
	}, DelayMenuLabel)

	for _, item := range i.surface.Items() {
		switch {
		case item.Separator:
			insertItem(menu, &menuItemInfo{Mask: miimFType, Type: mftSeparator | order}, "")
		case item.ID == control.CloseID:
			insertItem(menu, &menuItemInfo{Mask: miimFType | miimString | miimID, Type: order, ID: item.ID}, item.Label)
		}
	}
	return menu, submenu, nil
}

func insertItem(menu windows.Handle, mi *menuItemInfo, label string) {
	if label != "" {
		text, err := windows.UTF16PtrFromString(label)
		if err != nil {
			return
		}
		mi.TypeData = text
	}
	mi.Size = uint32(unsafe.Sizeof(*mi))
	// Insert by position at the end of the menu.
	procInsertMenuItemW.Call(uintptr(menu), ^uintptr(0), 1, uintptr(unsafe.Pointer(mi)))
}
