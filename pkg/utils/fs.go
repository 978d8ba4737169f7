package utils

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ForceRemoveAll deletes dir and everything below it, read-only entries
// included. A missing dir is not an error.
func ForceRemoveAll(dir string) error {
	if _, err := os.Lstat(dir); os.IsNotExist(err) {
		return nil
	}

	// git object files are written read-only
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		mode := os.FileMode(0o600)
		if d.IsDir() {
			mode = 0o700
		}
		_ = os.Chmod(path, mode)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to make directory writable: %w", err)
	}

	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to clean up directory: %w", err)
	}
	return nil
}
