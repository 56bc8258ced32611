package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/steveyegge/wgtracker/internal/events"
)

// displayEvent prints one history event on two lines: a summary line and a
// line of type-specific metadata.
func displayEvent(w io.Writer, event *events.Event) {
	severityColor := getSeverityColor(event.Severity)
	runColor := color.New(color.FgGreen)
	typeColor := color.New(color.FgMagenta)

	label := string(event.Type)
	if event.TaskKind != "" {
		label = event.TaskKind
	}

	fmt.Fprintf(w, "%s [%s] %s %s: %s\n",
		getEventIcon(event),
		event.Timestamp.Local().Format("2006-01-02 15:04:05"),
		runColor.Sprint(shortRunID(event.RunID)),
		typeColor.Sprint(label),
		severityColor.Sprint(truncateString(event.Message, 80)),
	)

	if metadata := extractEventMetadata(event); metadata != "" {
		gray := color.New(color.FgHiBlack)
		fmt.Fprintf(w, "  %s\n", gray.Sprint(metadata))
	}
}

func getEventIcon(event *events.Event) string {
	switch event.Type {
	case events.EventTypeRunStarted:
		return "▶"
	case events.EventTypeTaskCompleted, events.EventTypeRunCompleted:
		return "✓"
	case events.EventTypeTaskFailed, events.EventTypeRunFailed:
		return "✗"
	case events.EventTypeRunSkipped:
		return "○"
	case events.EventTypeHistoryCleanup:
		return "♻"
	}
	return "•"
}

func getSeverityColor(severity events.EventSeverity) *color.Color {
	switch severity {
	case events.SeverityInfo:
		return color.New(color.FgCyan)
	case events.SeverityWarning:
		return color.New(color.FgYellow)
	case events.SeverityError:
		return color.New(color.FgRed)
	default:
		return color.New(color.FgWhite)
	}
}

// extractEventMetadata returns a few key data fields for each event type,
// pipe-separated.
func extractEventMetadata(event *events.Event) string {
	var fields []string

	switch event.Type {
	case events.EventTypeRunStarted:
		fields = []string{
			fmt.Sprintf("%s pid %d", getStringField(event.Data, "hostname", "?"), getIntField(event.Data, "pid", 0)),
			fmt.Sprintf("%d queued", getIntField(event.Data, "pending_tasks", 0)),
			"since " + getStringField(event.Data, "wg_watermark", "?"),
		}

	case events.EventTypeTaskCompleted:
		fields = []string{
			formatDurationMs(getIntField(event.Data, "duration_ms", 0)),
			fmt.Sprintf("%d staged", getIntField(event.Data, "staged", 0)),
		}

	case events.EventTypeTaskFailed:
		fields = []string{
			getStringField(event.Data, "error_kind", ""),
			truncateString(getStringField(event.Data, "error", ""), 60),
		}

	case events.EventTypeRunCompleted, events.EventTypeRunFailed:
		fields = []string{
			fmt.Sprintf("%d tasks", getIntField(event.Data, "tasks_run", 0)),
			formatDurationMs(getIntField(event.Data, "duration_ms", 0)),
		}
		if remaining := getIntField(event.Data, "remaining", 0); remaining > 0 {
			fields = append(fields, fmt.Sprintf("%d remaining", remaining))
		}
		fields = append(fields, getStringField(event.Data, "error_kind", ""))

	case events.EventTypeRunSkipped:
		fields = []string{getStringField(event.Data, "holder", "")}

	case events.EventTypeHistoryCleanup:
		fields = []string{
			fmt.Sprintf("%d deleted", getIntField(event.Data, "deleted", 0)),
			fmt.Sprintf("%d day retention", getIntField(event.Data, "retention_days", 0)),
		}
	}

	return joinFields(fields)
}

func shortRunID(runID string) string {
	if len(runID) > 8 {
		return runID[:8]
	}
	return runID
}

func getStringField(data map[string]interface{}, key, defaultValue string) string {
	if val, ok := data[key].(string); ok {
		return val
	}
	return defaultValue
}

func getIntField(data map[string]interface{}, key string, defaultValue int) int {
	if val, ok := data[key].(int); ok {
		return val
	}
	if val, ok := data[key].(float64); ok {
		return int(val)
	}
	return defaultValue
}

// formatDurationMs formats milliseconds into a human-readable duration
func formatDurationMs(ms int) string {
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	if ms < 60000 {
		return fmt.Sprintf("%.1fs", float64(ms)/1000)
	}
	return fmt.Sprintf("%.1fm", float64(ms)/60000)
}

// joinFields joins non-empty metadata fields with " | "
func joinFields(fields []string) string {
	nonEmpty := make([]string, 0, len(fields))
	for _, f := range fields {
		if f != "" {
			nonEmpty = append(nonEmpty, f)
		}
	}
	return strings.Join(nonEmpty, " | ")
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return "..."
	}
	return s[:maxLen-3] + "..."
}
