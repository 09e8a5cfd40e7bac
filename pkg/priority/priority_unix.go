//go:build !windows

package priority

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Niceness is the target nice value. Lowering it below zero usually needs
// elevated rights, so failure is expected for ordinary users.
const Niceness = -10

// setpriority is swapped in tests.
var setpriority = unix.Setpriority

// Raise lowers the nice value of the process.
func Raise() error {
	if err := setpriority(unix.PRIO_PROCESS, 0, Niceness); err != nil {
		return fmt.Errorf("setpriority: %w", err)
	}
	return nil
}
