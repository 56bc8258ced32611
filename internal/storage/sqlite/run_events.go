package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/steveyegge/wgtracker/internal/events"
)

// timestampLayout is fixed width so that text comparison orders events.
const timestampLayout = "2006-01-02T15:04:05.000000000Z"

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

const eventColumns = `id, type, timestamp, run_id, task_kind, severity, message, data`

// StoreEvent stores a new run event in the database
func (s *SQLiteStorage) StoreEvent(ctx context.Context, event *events.Event) error {
	dataJSON, err := json.Marshal(event.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}
	if event.Data == nil {
		dataJSON = []byte("{}")
	}

	query := `INSERT INTO run_events (` + eventColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = s.db.ExecContext(ctx, query,
		event.ID,
		string(event.Type),
		formatTimestamp(event.Timestamp),
		event.RunID,
		event.TaskKind,
		string(event.Severity),
		event.Message,
		string(dataJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to store run event (type=%s, run=%s): %w", event.Type, event.RunID, err)
	}

	return nil
}

// GetEvents retrieves events matching the given filter, most recent first
func (s *SQLiteStorage) GetEvents(ctx context.Context, filter events.EventFilter) ([]*events.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM run_events WHERE 1=1`
	args := []interface{}{}

	if filter.RunID != "" {
		query += " AND run_id = ?"
		args = append(args, filter.RunID)
	}
	if filter.Type != "" {
		query += " AND type = ?"
		args = append(args, string(filter.Type))
	}
	if filter.Severity != "" {
		query += " AND severity = ?"
		args = append(args, string(filter.Severity))
	}
	if !filter.AfterTime.IsZero() {
		query += " AND timestamp > ?"
		args = append(args, formatTimestamp(filter.AfterTime))
	}
	if !filter.BeforeTime.IsZero() {
		query += " AND timestamp < ?"
		args = append(args, formatTimestamp(filter.BeforeTime))
	}

	query += " ORDER BY timestamp DESC, rowid DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query run events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanEvents(rows)
}

// GetEventsByRun retrieves all events for one run in the order they happened
func (s *SQLiteStorage) GetEventsByRun(ctx context.Context, runID string) ([]*events.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM run_events WHERE run_id = ? ORDER BY timestamp ASC, rowid ASC`

	rows, err := s.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query run events by run: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanEvents(rows)
}

// GetRecentEvents retrieves the most recent events up to the specified limit
func (s *SQLiteStorage) GetRecentEvents(ctx context.Context, limit int) ([]*events.Event, error) {
	return s.GetEvents(ctx, events.EventFilter{Limit: limit})
}

func scanEvents(rows *sql.Rows) ([]*events.Event, error) {
	var result []*events.Event

	for rows.Next() {
		var event events.Event
		var typ, severity, timestamp, dataJSON string

		err := rows.Scan(
			&event.ID,
			&typ,
			&timestamp,
			&event.RunID,
			&event.TaskKind,
			&severity,
			&event.Message,
			&dataJSON,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run event: %w", err)
		}

		event.Type = events.EventType(typ)
		event.Severity = events.EventSeverity(severity)
		event.Timestamp, err = time.Parse(timestampLayout, timestamp)
		if err != nil {
			return nil, fmt.Errorf("event %s has invalid timestamp %q: %w", event.ID, timestamp, err)
		}

		event.Data = make(map[string]interface{})
		if dataJSON != "" && dataJSON != "{}" {
			if err := json.Unmarshal([]byte(dataJSON), &event.Data); err != nil {
				return nil, fmt.Errorf("failed to unmarshal event data: %w", err)
			}
		}

		result = append(result, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating run events: %w", err)
	}

	return result, nil
}
