package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRunStartedEvent(t *testing.T) {
	runID := NewRunID()
	wm := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	event, err := NewRunStartedEvent(runID, "run started", RunStartedData{
		Hostname:           "tracker-1",
		PID:                4242,
		PendingTasks:       2,
		WGWatermark:        wm,
		DecisionsWatermark: wm,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, event.ID)
	assert.NotEqual(t, runID, event.ID)
	assert.Equal(t, runID, event.RunID)
	assert.Equal(t, EventTypeRunStarted, event.Type)
	assert.Equal(t, SeverityInfo, event.Severity)
	assert.False(t, event.Timestamp.IsZero())

	data, err := event.GetRunStartedData()
	require.NoError(t, err)
	assert.Equal(t, "tracker-1", data.Hostname)
	assert.Equal(t, 4242, data.PID)
	assert.Equal(t, 2, data.PendingTasks)
	assert.True(t, wm.Equal(data.WGWatermark))
}

func TestTaskEvents(t *testing.T) {
	tests := []struct {
		name     string
		build    func() (*Event, error)
		wantType EventType
		wantSev  EventSeverity
	}{
		{
			name: "completed",
			build: func() (*Event, error) {
				return NewTaskCompletedEvent("run", "ensure_label", "ok", TaskData{Description: "ensure label", Staged: 1, DurationMs: 12})
			},
			wantType: EventTypeTaskCompleted,
			wantSev:  SeverityInfo,
		},
		{
			name: "failed",
			build: func() (*Event, error) {
				return NewTaskFailedEvent("run", "ensure_label", "boom", TaskData{Description: "ensure label", Error: "boom", ErrorKind: "network"})
			},
			wantType: EventTypeTaskFailed,
			wantSev:  SeverityError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event, err := tt.build()
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, event.Type)
			assert.Equal(t, tt.wantSev, event.Severity)
			assert.Equal(t, "ensure_label", event.TaskKind)

			data, err := event.GetTaskData()
			require.NoError(t, err)
			assert.Equal(t, "ensure label", data.Description)
		})
	}
}

func TestRunFinishedEvents(t *testing.T) {
	completed, err := NewRunCompletedEvent("run", "done", RunFinishedData{TasksRun: 7, DurationMs: 900})
	require.NoError(t, err)
	assert.Equal(t, EventTypeRunCompleted, completed.Type)

	failed, err := NewRunFailedEvent("run", "stopped", RunFinishedData{TasksRun: 3, Remaining: 4, Error: "timeout", ErrorKind: "network"})
	require.NoError(t, err)
	assert.Equal(t, EventTypeRunFailed, failed.Type)
	assert.Equal(t, SeverityError, failed.Severity)

	data, err := failed.GetRunFinishedData()
	require.NoError(t, err)
	assert.Equal(t, 3, data.TasksRun)
	assert.Equal(t, 4, data.Remaining)
	assert.Equal(t, "network", data.ErrorKind)
}

func TestNewRunSkippedEvent(t *testing.T) {
	event := NewRunSkippedEvent("run", "already running", "pid 12 on host-a")
	assert.Equal(t, EventTypeRunSkipped, event.Type)
	assert.Equal(t, SeverityWarning, event.Severity)
	assert.Equal(t, "pid 12 on host-a", event.Data["holder"])
}

func TestNewHistoryCleanupEvent(t *testing.T) {
	event, err := NewHistoryCleanupEvent("run", HistoryCleanupData{Deleted: 12, RetentionDays: 30})
	require.NoError(t, err)
	assert.Equal(t, EventTypeHistoryCleanup, event.Type)
	// Numbers come back as float64 after the JSON round trip.
	assert.Equal(t, float64(12), event.Data["deleted"])
	assert.Equal(t, float64(30), event.Data["retention_days"])
}

func TestEventJSON(t *testing.T) {
	event, err := NewTaskCompletedEvent("run-1", "close_issue", "closed", TaskData{Description: "close issue"})
	require.NoError(t, err)

	raw, err := json.Marshal(event)
	require.NoError(t, err)

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.Equal(t, "run-1", fields["run_id"])
	assert.Equal(t, "close_issue", fields["task_kind"])
	assert.Equal(t, "task_completed", fields["type"])

	var decoded Event
	require.NoError(t, json.Unmarshal(raw, &decoded))
	data, err := decoded.GetTaskData()
	require.NoError(t, err)
	assert.Equal(t, "close issue", data.Description)
}

func TestGetDataFromWrongShape(t *testing.T) {
	event := &Event{Data: map[string]interface{}{"tasks_run": "many"}}
	_, err := event.GetRunFinishedData()
	assert.Error(t, err)
}
