package panel

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ReaperConfig locates the lifecycle markers written by the transcoder.
type ReaperConfig struct {
	// PIDDir holds one <sanitized-name>.pid file per running stream.
	PIDDir string
}

// Reaper stops the external process of a stream using its pid file.
// Termination is fire-and-forget: it never waits for the process to exit.
type Reaper struct {
	cfg    ReaperConfig
	signal func(pid int) error
}

// NewReaper returns a Reaper that signals processes found in cfg.PIDDir.
func NewReaper(cfg ReaperConfig) *Reaper {
	return &Reaper{cfg: cfg, signal: terminateProcess}
}

// MarkerPath returns the pid file path for rec.
func (r *Reaper) MarkerPath(rec StreamRecord) string {
	return filepath.Join(r.cfg.PIDDir, rec.SanitizedName()+".pid")
}

// Terminate requests graceful termination of rec's process and removes its
// marker. A missing marker, a malformed pid or an already exited process all
// count as stopped. The marker is removed whenever it was found, even when it
// cannot be read.
func (r *Reaper) Terminate(rec StreamRecord) error {
	marker := r.MarkerPath(rec)

	data, err := os.ReadFile(marker)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		readErr := fmt.Errorf("read pid file: %w", err)
		if err := os.RemoveAll(marker); err != nil {
			return errors.Join(readErr, fmt.Errorf("remove pid file: %w", err))
		}
		return readErr
	}

	var sigErr error
	if pid, ok := parsePID(data); ok {
		sigErr = r.signal(pid)
	}

	if err := os.Remove(marker); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errors.Join(sigErr, fmt.Errorf("remove pid file: %w", err))
	}
	if sigErr != nil {
		return fmt.Errorf("signal pid: %w", sigErr)
	}
	return nil
}

func parsePID(data []byte) (int, bool) {
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, false
	}
	return pid, true
}
