package events

import (
	"time"

	"github.com/google/uuid"
)

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.New().String()
}

func newEvent(runID string, typ EventType, severity EventSeverity, message string) *Event {
	return &Event{
		ID:        uuid.New().String(),
		Type:      typ,
		Timestamp: time.Now(),
		RunID:     runID,
		Severity:  severity,
		Message:   message,
	}
}

// NewRunStartedEvent creates a run_started event with type-safe data.
func NewRunStartedEvent(runID, message string, data RunStartedData) (*Event, error) {
	event := newEvent(runID, EventTypeRunStarted, SeverityInfo, message)
	if err := event.SetRunStartedData(data); err != nil {
		return nil, err
	}
	return event, nil
}

// NewTaskCompletedEvent creates a task_completed event with type-safe data.
func NewTaskCompletedEvent(runID, taskKind, message string, data TaskData) (*Event, error) {
	event := newEvent(runID, EventTypeTaskCompleted, SeverityInfo, message)
	event.TaskKind = taskKind
	if err := event.SetTaskData(data); err != nil {
		return nil, err
	}
	return event, nil
}

// NewTaskFailedEvent creates a task_failed event with type-safe data.
func NewTaskFailedEvent(runID, taskKind, message string, data TaskData) (*Event, error) {
	event := newEvent(runID, EventTypeTaskFailed, SeverityError, message)
	event.TaskKind = taskKind
	if err := event.SetTaskData(data); err != nil {
		return nil, err
	}
	return event, nil
}

// NewRunCompletedEvent creates a run_completed event with type-safe data.
func NewRunCompletedEvent(runID, message string, data RunFinishedData) (*Event, error) {
	event := newEvent(runID, EventTypeRunCompleted, SeverityInfo, message)
	if err := event.SetRunFinishedData(data); err != nil {
		return nil, err
	}
	return event, nil
}

// NewRunFailedEvent creates a run_failed event with type-safe data.
func NewRunFailedEvent(runID, message string, data RunFinishedData) (*Event, error) {
	event := newEvent(runID, EventTypeRunFailed, SeverityError, message)
	if err := event.SetRunFinishedData(data); err != nil {
		return nil, err
	}
	return event, nil
}

// NewRunSkippedEvent creates a run_skipped event. holder describes the
// instance that owns the lock, if known.
func NewRunSkippedEvent(runID, message, holder string) *Event {
	event := newEvent(runID, EventTypeRunSkipped, SeverityWarning, message)
	event.Data = map[string]interface{}{"holder": holder}
	return event
}

// NewHistoryCleanupEvent creates a history_cleanup event.
func NewHistoryCleanupEvent(runID string, data HistoryCleanupData) (*Event, error) {
	event := newEvent(runID, EventTypeHistoryCleanup, SeverityInfo, "pruned run history")
	dataMap, err := structToMap(data)
	if err != nil {
		return nil, err
	}
	event.Data = dataMap
	return event, nil
}
