//go:build windows

package tap

import (
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/offlinefirst/debounce/pkg/debounce"
)

const whMouseLL = 14

var (
	user32                  = windows.NewLazySystemDLL("user32.dll")
	procSetWindowsHookExW   = user32.NewProc("SetWindowsHookExW")
	procUnhookWindowsHookEx = user32.NewProc("UnhookWindowsHookEx")
	procCallNextHookEx      = user32.NewProc("CallNextHookEx")
)

// msllHookStruct mirrors MSLLHOOKSTRUCT.
type msllHookStruct struct {
	X           int32
	Y           int32
	MouseData   uint32
	Flags       uint32
	Time        uint32
	DwExtraInfo uintptr
}

// active is the tap bound to the process-wide low level mouse hook. The hook
// procedure carries no user data pointer, so this is the only path from the
// callback to an engine.
var active atomic.Pointer[Tap]

var (
	hookProcOnce sync.Once
	hookProc     uintptr
)

func lowLevelMouseProc(nCode, wParam, lParam uintptr) uintptr {
	if int32(nCode) >= 0 {
		if t := active.Load(); t != nil {
			info := (*msllHookStruct)(unsafe.Pointer(lParam))
			if t.Handle(Code(wParam), info.Time) == debounce.Suppress {
				return 1
			}
		}
	}
	ret, _, _ := procCallNextHookEx.Call(0, nCode, wParam, lParam)
	return ret
}

// Hook is an installed WH_MOUSE_LL hook.
type Hook struct {
	handle uintptr
	tap    *Tap
	once   sync.Once
}

// Install registers the global low level mouse hook for t. The hook procedure
// runs on the calling OS thread while it pumps messages, so Install must be
// called from the locked thread that runs the message loop.
func Install(t *Tap) (*Hook, error) {
	if !active.CompareAndSwap(nil, t) {
		return nil, ErrHookInstalled
	}

	hookProcOnce.Do(func() {
		hookProc = windows.NewCallback(lowLevelMouseProc)
	})

	var module windows.Handle
	if err := windows.GetModuleHandleEx(0, nil, &module); err != nil {
		active.Store(nil)
		return nil, fmt.Errorf("resolve module handle: %w", err)
	}

	handle, _, err := procSetWindowsHookExW.Call(whMouseLL, hookProc, uintptr(module), 0)
	if handle == 0 {
		active.Store(nil)
		return nil, fmt.Errorf("SetWindowsHookExW: %w", err)
	}
	return &Hook{handle: handle, tap: t}, nil
}

// Uninstall removes the hook. Subsequent calls are no-ops.
func (h *Hook) Uninstall() error {
	if h == nil {
		return nil
	}
	var err error
	h.once.Do(func() {
		active.CompareAndSwap(h.tap, nil)
		if r, _, callErr := procUnhookWindowsHookEx.Call(h.handle); r == 0 {
			err = fmt.Errorf("UnhookWindowsHookEx: %w", callErr)
		}
	})
	return err
}
