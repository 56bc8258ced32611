package engine

import (
	"context"
	"time"

	"github.com/steveyegge/wgtracker/internal/config"
	"github.com/steveyegge/wgtracker/internal/types"
)

// Remote is the issue tracker API the tasks drive. List methods drain all
// pages before returning.
type Remote interface {
	// UpdatedIssues returns issues updated at or after since, with labels,
	// ordered by update time.
	UpdatedIssues(ctx context.Context, repo types.Repo, since time.Time) ([]types.Issue, error)
	IssueComments(ctx context.Context, repo types.Repo, number int) ([]types.Comment, error)
	RepoLabels(ctx context.Context, repo types.Repo) ([]types.RepoLabel, error)

	// RepoID returns the repository node id, or "" if it does not exist.
	RepoID(ctx context.Context, repo types.Repo) (string, error)
	IssueContent(ctx context.Context, repo types.Repo, number int) (*types.IssueContent, error)

	CreateLabel(ctx context.Context, repoID, name, color string) (string, error)
	CreateIssue(ctx context.Context, repoID, title, body string, labelIDs []string) (string, error)
	RemoveLabels(ctx context.Context, itemID string, labelIDs []string) error
	CloseIssue(ctx context.Context, itemID string) error
	AddComment(ctx context.Context, itemID, body string) error
}

// BugTracker files tickets and returns their URL.
type BugTracker interface {
	FileBug(ctx context.Context, bug types.Bug) (string, error)
}

// Env is everything a task needs besides State.
type Env struct {
	Remote        Remote
	Bugs          BugTracker
	WGRepo        types.Repo
	DecisionsRepo types.Repo
	Policy        *config.Policy
}

func (e *Env) labelPolicy() *config.LabelPolicy {
	if e.Policy == nil {
		return nil
	}
	return e.Policy.Labels
}

func (e *Env) components() map[string]string {
	if e.Policy == nil {
		return nil
	}
	return e.Policy.Components
}
