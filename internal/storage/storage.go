// Package storage owns the tracker's state directory: the snapshot paths,
// the single-instance lock and the run history store.
package storage

import (
	"context"
	"time"

	"github.com/steveyegge/wgtracker/internal/events"
	"github.com/steveyegge/wgtracker/internal/storage/sqlite"
)

// Storage defines the interface for run history backends
type Storage interface {
	events.EventStore

	// CleanupEventsOlderThan deletes events recorded before cutoff in batches
	CleanupEventsOlderThan(ctx context.Context, cutoff time.Time, batchSize int) (int, error)
	// CountEvents returns the number of stored events
	CountEvents(ctx context.Context) (int, error)

	// Close releases the database
	Close() error
}

var _ Storage = (*sqlite.SQLiteStorage)(nil)

// Config holds database configuration
type Config struct {
	// Path is the SQLite database file path
	Path string
}

// NewStorage opens the SQLite history store at cfg.Path.
func NewStorage(ctx context.Context, cfg *Config) (Storage, error) {
	return sqlite.New(cfg.Path)
}
