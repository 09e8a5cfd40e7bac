//go:build windows

package session

import (
	"context"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/offlinefirst/debounce/pkg/tray"
)

const wmQuit = 0x0012

var (
	user32                 = windows.NewLazySystemDLL("user32.dll")
	procGetMessageW        = user32.NewProc("GetMessageW")
	procTranslateMessage   = user32.NewProc("TranslateMessage")
	procDispatchMessageW   = user32.NewProc("DispatchMessageW")
	procPostThreadMessageW = user32.NewProc("PostThreadMessageW")
)

type msg struct {
	Hwnd     windows.Handle
	Message  uint32
	WParam   uintptr
	LParam   uintptr
	Time     uint32
	Pt       struct{ X, Y int32 }
	LPrivate uint32
}

// messageLoop pumps the thread message queue. It must be created and run on
// the locked OS thread that owns the hook and the tray window.
type messageLoop struct {
	thread      uint32
	interrupted atomic.Bool
}

func newPlatformLoop() Loop {
	return &messageLoop{thread: windows.GetCurrentThreadId()}
}

func (l *messageLoop) Quit(code int) {
	procPostThreadMessageW.Call(uintptr(l.thread), wmQuit, uintptr(code), 0)
}

func (l *messageLoop) Run(ctx context.Context) (int, error) {
	stop := context.AfterFunc(ctx, func() {
		l.interrupted.Store(true)
		l.Quit(0)
	})
	defer stop()

	var m msg
	for {
		r, _, err := procGetMessageW.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0)
		switch int32(r) {
		case 0:
			if l.interrupted.Load() {
				return 0, ErrInterrupted
			}
			return int(int32(m.WParam)), nil
		case -1:
			return ExitLoopAbnormal, err
		}
		procTranslateMessage.Call(uintptr(unsafe.Pointer(&m)))
		procDispatchMessageW.Call(uintptr(unsafe.Pointer(&m)))
	}
}

func newPlatformUI(opts UIOptions) (UI, error) {
	icon, err := tray.New(tray.Options{
		Surface:  opts.Surface,
		Notifier: opts.Notifier,
		Logger:   opts.Logger,
	})
	if err != nil {
		return nil, err
	}
	return icon, nil
}
