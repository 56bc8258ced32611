package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths names the files kept in a state directory.
type Paths struct {
	Dir string
}

// NewPaths returns the layout of the state directory dir.
func NewPaths(dir string) Paths {
	return Paths{Dir: dir}
}

// Snapshot is the current engine snapshot.
func (p Paths) Snapshot() string { return filepath.Join(p.Dir, "state") }

// SnapshotTemp is written first and renamed over Snapshot.
func (p Paths) SnapshotTemp() string { return filepath.Join(p.Dir, "state.temp") }

// Lock is the single-instance lock file.
func (p Paths) Lock() string { return filepath.Join(p.Dir, "lock") }

// History is the SQLite run history database.
func (p Paths) History() string { return filepath.Join(p.Dir, "history.db") }

// Ensure creates the state directory if it does not exist.
func (p Paths) Ensure() error {
	if p.Dir == "" {
		return fmt.Errorf("state directory is not set")
	}
	if err := os.MkdirAll(p.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	return nil
}
