package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/steveyegge/wgtracker/internal/config"
	"github.com/steveyegge/wgtracker/internal/types"
)

var (
	wgRepo        = types.Repo{Owner: "w3c", Name: "csswg-drafts"}
	decisionsRepo = types.Repo{Owner: "w3c", Name: "csswg-decisions"}
	epoch         = time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)

	errUnavailable = errors.New("service unavailable")
)

type createdIssue struct {
	RepoID   string
	Title    string
	Body     string
	LabelIDs []string
}

type createdLabel struct {
	RepoID string
	Name   string
	Color  string
}

// fakeRemote is an in-memory Remote. Fail maps a method name to an error it
// returns once before behaving normally.
type fakeRemote struct {
	Issues   map[types.Repo][]types.Issue
	Comments map[int][]types.Comment
	Labels   []types.RepoLabel
	RepoIDs  map[types.Repo]string
	Contents map[int]*types.IssueContent
	Fail     map[string]error

	CreatedLabels []createdLabel
	CreatedIssues []createdIssue
	RemovedLabels map[string][]string
	Closed        []string
	Commented     map[string][]string
	Calls         []string
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		Issues:        make(map[types.Repo][]types.Issue),
		Comments:      make(map[int][]types.Comment),
		RepoIDs:       map[types.Repo]string{decisionsRepo: "R_decisions"},
		Contents:      make(map[int]*types.IssueContent),
		Fail:          make(map[string]error),
		RemovedLabels: make(map[string][]string),
		Commented:     make(map[string][]string),
	}
}

func (f *fakeRemote) call(name string) error {
	f.Calls = append(f.Calls, name)
	if err, ok := f.Fail[name]; ok {
		delete(f.Fail, name)
		return err
	}
	return nil
}

func (f *fakeRemote) UpdatedIssues(ctx context.Context, repo types.Repo, since time.Time) ([]types.Issue, error) {
	if err := f.call("UpdatedIssues"); err != nil {
		return nil, err
	}
	var out []types.Issue
	for _, issue := range f.Issues[repo] {
		if !issue.UpdatedAt.Before(since) {
			out = append(out, issue)
		}
	}
	return out, nil
}

func (f *fakeRemote) IssueComments(ctx context.Context, repo types.Repo, number int) ([]types.Comment, error) {
	if err := f.call("IssueComments"); err != nil {
		return nil, err
	}
	return f.Comments[number], nil
}

func (f *fakeRemote) RepoLabels(ctx context.Context, repo types.Repo) ([]types.RepoLabel, error) {
	if err := f.call("RepoLabels"); err != nil {
		return nil, err
	}
	return append([]types.RepoLabel(nil), f.Labels...), nil
}

func (f *fakeRemote) RepoID(ctx context.Context, repo types.Repo) (string, error) {
	if err := f.call("RepoID"); err != nil {
		return "", err
	}
	return f.RepoIDs[repo], nil
}

func (f *fakeRemote) IssueContent(ctx context.Context, repo types.Repo, number int) (*types.IssueContent, error) {
	if err := f.call("IssueContent"); err != nil {
		return nil, err
	}
	content, ok := f.Contents[number]
	if !ok {
		return nil, fmt.Errorf("issue #%d not found", number)
	}
	return content, nil
}

func (f *fakeRemote) CreateLabel(ctx context.Context, repoID, name, color string) (string, error) {
	if err := f.call("CreateLabel"); err != nil {
		return "", err
	}
	id := fmt.Sprintf("L_%d", len(f.Labels)+1)
	f.Labels = append(f.Labels, types.RepoLabel{ID: id, Name: name})
	f.CreatedLabels = append(f.CreatedLabels, createdLabel{RepoID: repoID, Name: name, Color: color})
	return id, nil
}

func (f *fakeRemote) CreateIssue(ctx context.Context, repoID, title, body string, labelIDs []string) (string, error) {
	if err := f.call("CreateIssue"); err != nil {
		return "", err
	}
	f.CreatedIssues = append(f.CreatedIssues, createdIssue{RepoID: repoID, Title: title, Body: body, LabelIDs: labelIDs})
	return fmt.Sprintf("I_%d", len(f.CreatedIssues)), nil
}

func (f *fakeRemote) RemoveLabels(ctx context.Context, itemID string, labelIDs []string) error {
	if err := f.call("RemoveLabels"); err != nil {
		return err
	}
	f.RemovedLabels[itemID] = append(f.RemovedLabels[itemID], labelIDs...)
	return nil
}

func (f *fakeRemote) CloseIssue(ctx context.Context, itemID string) error {
	if err := f.call("CloseIssue"); err != nil {
		return err
	}
	f.Closed = append(f.Closed, itemID)
	return nil
}

func (f *fakeRemote) AddComment(ctx context.Context, itemID, body string) error {
	if err := f.call("AddComment"); err != nil {
		return err
	}
	f.Commented[itemID] = append(f.Commented[itemID], body)
	return nil
}

type fakeBugs struct {
	Filed []types.Bug
	Err   error
}

func (b *fakeBugs) FileBug(ctx context.Context, bug types.Bug) (string, error) {
	if b.Err != nil {
		err := b.Err
		b.Err = nil
		return "", err
	}
	b.Filed = append(b.Filed, bug)
	return fmt.Sprintf("https://bugzilla.example.com/show_bug.cgi?id=%d", len(b.Filed)), nil
}

func newEnv(remote *fakeRemote, bugs *fakeBugs) *Env {
	env := &Env{
		Remote:        remote,
		WGRepo:        wgRepo,
		DecisionsRepo: decisionsRepo,
		Policy: &config.Policy{
			Labels:     &config.LabelPolicy{Color: "fbca04", Prefixes: []string{"css-"}},
			Components: map[string]string{"widget": "Widgets :: Core"},
		},
	}
	if bugs != nil {
		env.Bugs = bugs
	}
	return env
}

// drain steps s until it is finished, failing after limit steps.
func drain(ctx context.Context, s *State, env *Env, limit int) ([]Task, error) {
	var ran []Task
	for i := 0; i < limit && !s.IsFinished(); i++ {
		task, err := s.Step(ctx, env)
		if err != nil {
			return ran, err
		}
		ran = append(ran, task)
	}
	if !s.IsFinished() {
		return ran, fmt.Errorf("not finished after %d steps", limit)
	}
	return ran, nil
}

func kinds(tasks []Task) []TaskKind {
	out := make([]TaskKind, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Kind())
	}
	return out
}
