package engine

import (
	"fmt"
	"time"
)

// Describe returns a one-line human readable summary of t.
func Describe(t Task) string {
	switch t := t.(type) {
	case PollWGIssues:
		return fmt.Sprintf("poll working group issues updated since %s", t.Since.Format(time.RFC3339))
	case FetchIssueComments:
		return fmt.Sprintf("fetch comments on #%d %q", t.IssueNumber, t.IssueTitle)
	case ProcessComment:
		return fmt.Sprintf("process comment %s", t.URL)
	case PollDecisionIssues:
		return fmt.Sprintf("poll decision issues updated since %s", t.Since.Format(time.RFC3339))
	case LoadDecisionLabels:
		return "load decisions repository labels"
	case EnsureLabel:
		return fmt.Sprintf("ensure label %q", t.Name)
	case FileDecisionIssue:
		return fmt.Sprintf("file decision issue for #%d (%d resolutions)", t.IssueNumber, len(t.Resolutions))
	case LoadDecisionsRepoID:
		return "load decisions repository id"
	case FileBug:
		return fmt.Sprintf("file bug for decision issue #%d in %s :: %s", t.IssueNumber, t.Product, t.Component)
	case FileBugWithDetails:
		return fmt.Sprintf("file bug %q in %s :: %s", t.Summary, t.Product, t.Component)
	case RemoveBugLabel:
		return fmt.Sprintf("remove bug label from %s", t.IssueID)
	case CloseIssue:
		return fmt.Sprintf("close issue %s", t.IssueID)
	case AddIssueComment:
		return fmt.Sprintf("comment on issue %s", t.IssueID)
	default:
		return fmt.Sprintf("%T", t)
	}
}
