package fsutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// DefaultTempSuffix is appended to the canonical path to name the sibling
// temporary file used by WriteAtomic.
const DefaultTempSuffix = ".tmp"

// WriteAtomic replaces the file at path with the bytes produced by write.
// The content is written to path+tempSuffix, synced and closed, then renamed
// onto path. If any step before the rename fails the temporary file is removed
// and the file at path is left untouched.
func WriteAtomic(path, tempSuffix string, perm os.FileMode, write func(w io.Writer) error) error {
	if tempSuffix == "" {
		tempSuffix = DefaultTempSuffix
	}
	tmp := path + tempSuffix

	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, perm)
	if err != nil {
		return fmt.Errorf("open temp file: %w", err)
	}

	if err := write(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}

	syncDir(filepath.Dir(path))
	return nil
}

// WriteFileAtomic is WriteAtomic for an in-memory payload.
func WriteFileAtomic(path, tempSuffix string, data []byte, perm os.FileMode) error {
	return WriteAtomic(path, tempSuffix, perm, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

// syncDir flushes the directory entry so the rename survives a crash.
// Not every platform supports it; errors are ignored.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = d.Sync()
	d.Close()
}
