package engine

import (
	"time"

	"github.com/steveyegge/wgtracker/internal/types"
)

// TaskKind tags each Task variant. It is the discriminator written to the
// snapshot, so existing values must never change.
type TaskKind string

const (
	KindPollWGIssues        TaskKind = "poll_wg_issues"
	KindFetchIssueComments  TaskKind = "fetch_issue_comments"
	KindProcessComment      TaskKind = "process_comment"
	KindPollDecisionIssues  TaskKind = "poll_decision_issues"
	KindLoadDecisionLabels  TaskKind = "load_decision_labels"
	KindEnsureLabel         TaskKind = "ensure_label"
	KindFileDecisionIssue   TaskKind = "file_decision_issue"
	KindLoadDecisionsRepoID TaskKind = "load_decisions_repo_id"
	KindFileBug             TaskKind = "file_bug"
	KindFileBugWithDetails  TaskKind = "file_bug_with_details"
	KindRemoveBugLabel      TaskKind = "remove_bug_label"
	KindCloseIssue          TaskKind = "close_issue"
	KindAddIssueComment     TaskKind = "add_issue_comment"
)

// Task is a unit of queued work. Tasks are plain data; State.execute
// dispatches on the concrete type. The set of implementations is closed:
// only types in this package can satisfy the interface.
type Task interface {
	Kind() TaskKind
	isTask()
}

// PollWGIssues fetches working group issues updated since Since and queues
// a FetchIssueComments for each.
type PollWGIssues struct {
	Since time.Time `json:"since"`
}

// FetchIssueComments fetches the comments on one working group issue and
// queues a ProcessComment for each comment created since Since.
type FetchIssueComments struct {
	IssueNumber int           `json:"issue_number"`
	IssueTitle  string        `json:"issue_title"`
	IssueLabels []types.Label `json:"issue_labels"`
	Since       time.Time     `json:"since"`
}

// ProcessComment looks for RESOLVED: lines in a comment and queues the
// label and issue filing for them.
type ProcessComment struct {
	IssueNumber int           `json:"issue_number"`
	IssueTitle  string        `json:"issue_title"`
	IssueLabels []types.Label `json:"issue_labels"`
	URL         string        `json:"url"`
	BodyText    string        `json:"body_text"`
}

// PollDecisionIssues fetches decision issues updated since Since and queues
// bug filing for newly bug-labeled ones.
type PollDecisionIssues struct {
	Since time.Time `json:"since"`
}

// LoadDecisionLabels fills the decisions repo label cache.
type LoadDecisionLabels struct{}

// EnsureLabel creates a label in the decisions repo unless it exists.
type EnsureLabel struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// FileDecisionIssue files the summary issue for a resolution comment.
type FileDecisionIssue struct {
	IssueNumber int      `json:"issue_number"`
	IssueTitle  string   `json:"issue_title"`
	Labels      []string `json:"labels"`
	CommentURL  string   `json:"comment_url"`
	Resolutions []string `json:"resolutions"`
}

// LoadDecisionsRepoID fills the decisions repo node id cache.
type LoadDecisionsRepoID struct{}

// FileBug gathers a decision issue's content and queues FileBugWithDetails.
type FileBug struct {
	Product     string `json:"product"`
	Component   string `json:"component"`
	IssueNumber int    `json:"issue_number"`
	IssueID     string `json:"issue_id"`
}

// FileBugWithDetails files the bug tracker ticket and queues a comment
// linking back to it.
type FileBugWithDetails struct {
	Product     string   `json:"product"`
	Component   string   `json:"component"`
	Summary     string   `json:"summary"`
	Description string   `json:"description"`
	URLs        []string `json:"urls"`
	IssueID     string   `json:"issue_id"`
}

// RemoveBugLabel removes the "bug" label from a decision issue.
type RemoveBugLabel struct {
	IssueID string `json:"issue_id"`
}

// CloseIssue closes a decision issue.
type CloseIssue struct {
	IssueID string `json:"issue_id"`
}

// AddIssueComment comments on a decision issue.
type AddIssueComment struct {
	IssueID string `json:"issue_id"`
	Body    string `json:"body"`
}

func (PollWGIssues) Kind() TaskKind        { return KindPollWGIssues }
func (FetchIssueComments) Kind() TaskKind  { return KindFetchIssueComments }
func (ProcessComment) Kind() TaskKind      { return KindProcessComment }
func (PollDecisionIssues) Kind() TaskKind  { return KindPollDecisionIssues }
func (LoadDecisionLabels) Kind() TaskKind  { return KindLoadDecisionLabels }
func (EnsureLabel) Kind() TaskKind         { return KindEnsureLabel }
func (FileDecisionIssue) Kind() TaskKind   { return KindFileDecisionIssue }
func (LoadDecisionsRepoID) Kind() TaskKind { return KindLoadDecisionsRepoID }
func (FileBug) Kind() TaskKind             { return KindFileBug }
func (FileBugWithDetails) Kind() TaskKind  { return KindFileBugWithDetails }
func (RemoveBugLabel) Kind() TaskKind      { return KindRemoveBugLabel }
func (CloseIssue) Kind() TaskKind          { return KindCloseIssue }
func (AddIssueComment) Kind() TaskKind     { return KindAddIssueComment }

func (PollWGIssues) isTask()        {}
func (FetchIssueComments) isTask()  {}
func (ProcessComment) isTask()      {}
func (PollDecisionIssues) isTask()  {}
func (LoadDecisionLabels) isTask()  {}
func (EnsureLabel) isTask()         {}
func (FileDecisionIssue) isTask()   {}
func (LoadDecisionsRepoID) isTask() {}
func (FileBug) isTask()             {}
func (FileBugWithDetails) isTask()  {}
func (RemoveBugLabel) isTask()      {}
func (CloseIssue) isTask()          {}
func (AddIssueComment) isTask()     {}
