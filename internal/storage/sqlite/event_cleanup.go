package sqlite

import (
	"context"
	"fmt"
	"time"
)

// CleanupEventsOlderThan deletes events recorded before cutoff, batchSize
// rows per statement, and returns how many were deleted.
func (s *SQLiteStorage) CleanupEventsOlderThan(ctx context.Context, cutoff time.Time, batchSize int) (int, error) {
	if batchSize < 1 {
		return 0, fmt.Errorf("batch size must be at least 1")
	}

	totalDeleted := 0
	for {
		select {
		case <-ctx.Done():
			return totalDeleted, ctx.Err()
		default:
		}

		result, err := s.db.ExecContext(ctx, `
			DELETE FROM run_events
			WHERE id IN (
				SELECT id FROM run_events
				WHERE timestamp < ?
				ORDER BY timestamp ASC
				LIMIT ?
			)
		`, formatTimestamp(cutoff), batchSize)
		if err != nil {
			return totalDeleted, fmt.Errorf("failed to execute delete: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return totalDeleted, fmt.Errorf("failed to get rows affected: %w", err)
		}
		totalDeleted += int(rowsAffected)

		if rowsAffected < int64(batchSize) {
			return totalDeleted, nil
		}
	}
}

// CountEvents returns the number of stored events.
func (s *SQLiteStorage) CountEvents(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM run_events`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count run events: %w", err)
	}
	return n, nil
}
