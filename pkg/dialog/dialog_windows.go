//go:build windows

package dialog

import "golang.org/x/sys/windows"

type messageBox struct{}

func platformNotifier() Notifier {
	return messageBox{}
}

// Notify shows a modal message box.
func (messageBox) Notify(severity Severity, title, message string) {
	icon := uint32(windows.MB_ICONWARNING)
	if severity == SeverityError {
		icon = windows.MB_ICONERROR
	}
	text, err := windows.UTF16PtrFromString(message)
	if err != nil {
		return
	}
	caption, err := windows.UTF16PtrFromString(title)
	if err != nil {
		return
	}
	_, _ = windows.MessageBox(0, text, caption, icon|windows.MB_OK)
}
