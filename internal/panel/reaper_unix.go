//go:build !windows

package panel

import (
	"errors"

	"golang.org/x/sys/unix"
)

// terminateProcess delivers SIGTERM to pid. A process that no longer exists
// is not an error.
func terminateProcess(pid int) error {
	err := unix.Kill(pid, unix.SIGTERM)
	if errors.Is(err, unix.ESRCH) {
		return nil
	}
	return err
}
