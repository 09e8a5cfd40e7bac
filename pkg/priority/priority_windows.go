//go:build windows

package priority

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// Raise moves the process to HIGH_PRIORITY_CLASS.
func Raise() error {
	if err := windows.SetPriorityClass(windows.CurrentProcess(), windows.HIGH_PRIORITY_CLASS); err != nil {
		return fmt.Errorf("set priority class: %w", err)
	}
	return nil
}
