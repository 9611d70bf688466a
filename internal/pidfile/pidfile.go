// Package pidfile writes the single-instance pid file a service holds while
// running. Creation is exclusive: a leftover or concurrent file fails the
// start, which the mains treat as fatal.
package pidfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Write creates path with the current pid. An empty path disables the pid
// file.
func Write(path string) error {
	if path == "" {
		return nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("pidfile: create %s: %w", dir, err)
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("pidfile: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(strconv.Itoa(os.Getpid()) + "\n"); err != nil {
		return fmt.Errorf("pidfile: write %s: %w", path, err)
	}
	return nil
}

// Remove deletes the pid file on shutdown.
func Remove(path string) {
	if path != "" {
		os.Remove(path)
	}
}
