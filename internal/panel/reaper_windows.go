//go:build windows

package panel

import (
	"errors"
	"os"
)

// terminateProcess kills pid; windows has no SIGTERM. A process that no
// longer exists is not an error.
func terminateProcess(pid int) error {
	p, err := os.FindProcess(pid)
	if err != nil {
		return nil
	}
	err = p.Kill()
	if errors.Is(err, os.ErrProcessDone) {
		return nil
	}
	return err
}
