// Package events defines the run history records written by the tracker.
//
// Every tracker invocation gets a run id. Events for that run record when it
// started, each task it executed, and how it ended. Events are persisted by
// an EventStore (see internal/storage/sqlite) and shown by the history
// command.
package events

import (
	"context"
	"time"
)

// EventType represents the type of event that occurred during a run.
type EventType string

const (
	// EventTypeRunStarted indicates the tracker acquired the lock and restored its state
	EventTypeRunStarted EventType = "run_started"
	// EventTypeTaskCompleted indicates a task executed successfully
	EventTypeTaskCompleted EventType = "task_completed"
	// EventTypeTaskFailed indicates a task failed and was put back on the queue
	EventTypeTaskFailed EventType = "task_failed"
	// EventTypeRunCompleted indicates the queue was drained
	EventTypeRunCompleted EventType = "run_completed"
	// EventTypeRunFailed indicates the run stopped on an error
	EventTypeRunFailed EventType = "run_failed"
	// EventTypeRunSkipped indicates another instance held the lock
	EventTypeRunSkipped EventType = "run_skipped"
	// EventTypeHistoryCleanup indicates old history was pruned
	EventTypeHistoryCleanup EventType = "history_cleanup"
)

// EventSeverity represents the severity level of an event.
type EventSeverity string

const (
	// SeverityInfo indicates informational events
	SeverityInfo EventSeverity = "info"
	// SeverityWarning indicates potentially problematic events
	SeverityWarning EventSeverity = "warning"
	// SeverityError indicates error events
	SeverityError EventSeverity = "error"
)

// Event is one entry in the run history.
type Event struct {
	// ID is the unique identifier for this event
	ID string `json:"id"`
	// Type is the type of event
	Type EventType `json:"type"`
	// Timestamp is when the event occurred
	Timestamp time.Time `json:"timestamp"`
	// RunID identifies the tracker invocation that produced this event
	RunID string `json:"run_id"`
	// TaskKind is the kind of task for task events, empty otherwise
	TaskKind string `json:"task_kind,omitempty"`
	// Severity is the severity level of this event
	Severity EventSeverity `json:"severity"`
	// Message is a human-readable description of the event
	Message string `json:"message"`
	// Data contains structured, type-specific data (must be JSON-serializable)
	Data map[string]interface{} `json:"data"`
}

// RunStartedData contains structured data for run start events.
type RunStartedData struct {
	Hostname           string    `json:"hostname"`
	PID                int       `json:"pid"`
	PendingTasks       int       `json:"pending_tasks"`
	WGWatermark        time.Time `json:"wg_watermark"`
	DecisionsWatermark time.Time `json:"decisions_watermark"`
}

// TaskData contains structured data for task completion and failure events.
type TaskData struct {
	// Description is the one-line summary of the task
	Description string `json:"description"`
	// Staged is the number of follow-on tasks the task queued
	Staged int `json:"staged"`
	// DurationMs is the time taken to execute the task in milliseconds
	DurationMs int64 `json:"duration_ms"`
	// Error contains the error message if the task failed
	Error string `json:"error,omitempty"`
	// ErrorKind classifies the failure (network, response, ...)
	ErrorKind string `json:"error_kind,omitempty"`
}

// RunFinishedData contains structured data for run completion and failure events.
type RunFinishedData struct {
	// TasksRun is the number of tasks executed, including a failed one
	TasksRun int `json:"tasks_run"`
	// DurationMs is the length of the run in milliseconds
	DurationMs int64 `json:"duration_ms"`
	// Remaining is the number of tasks left queued
	Remaining int `json:"remaining"`
	// Error contains the error message if the run failed
	Error string `json:"error,omitempty"`
	// ErrorKind classifies the failure
	ErrorKind string `json:"error_kind,omitempty"`
}

// HistoryCleanupData contains structured data for history pruning events.
type HistoryCleanupData struct {
	Deleted       int `json:"deleted"`
	RetentionDays int `json:"retention_days"`
}

// EventStore defines the interface for storing and retrieving run events.
type EventStore interface {
	// StoreEvent stores a new event in the event store
	StoreEvent(ctx context.Context, event *Event) error

	// GetEvents retrieves events matching the given filter
	GetEvents(ctx context.Context, filter EventFilter) ([]*Event, error)

	// GetEventsByRun retrieves all events for one run, oldest first
	GetEventsByRun(ctx context.Context, runID string) ([]*Event, error)

	// GetRecentEvents retrieves the most recent events up to the specified limit
	GetRecentEvents(ctx context.Context, limit int) ([]*Event, error)
}

// EventFilter defines criteria for filtering events.
type EventFilter struct {
	// RunID filters events by run
	RunID string
	// Type filters events by event type
	Type EventType
	// Severity filters events by severity level
	Severity EventSeverity
	// AfterTime filters events that occurred after this time
	AfterTime time.Time
	// BeforeTime filters events that occurred before this time
	BeforeTime time.Time
	// Limit limits the number of events returned
	Limit int
}
