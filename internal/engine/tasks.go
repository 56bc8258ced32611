package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/steveyegge/wgtracker/internal/errs"
	"github.com/steveyegge/wgtracker/internal/labels"
	"github.com/steveyegge/wgtracker/internal/markdown"
	"github.com/steveyegge/wgtracker/internal/types"
)

// ResolutionMarker starts every comment line that records a resolution.
const ResolutionMarker = "RESOLVED: "

func (s *State) execute(ctx context.Context, env *Env, task Task) error {
	switch t := task.(type) {
	case PollWGIssues:
		return s.pollWGIssues(ctx, env, t)
	case FetchIssueComments:
		return s.fetchIssueComments(ctx, env, t)
	case ProcessComment:
		return s.processComment(env, t)
	case PollDecisionIssues:
		return s.pollDecisionIssues(ctx, env, t)
	case LoadDecisionLabels:
		return s.loadDecisionLabels(ctx, env)
	case EnsureLabel:
		return s.ensureLabel(ctx, env, t)
	case FileDecisionIssue:
		return s.fileDecisionIssue(ctx, env, t)
	case LoadDecisionsRepoID:
		return s.loadDecisionsRepoID(ctx, env)
	case FileBug:
		return s.fileBug(ctx, env, t)
	case FileBugWithDetails:
		return s.fileBugWithDetails(ctx, env, t)
	case RemoveBugLabel:
		return s.removeBugLabel(ctx, env, t)
	case CloseIssue:
		return env.Remote.CloseIssue(ctx, t.IssueID)
	case AddIssueComment:
		return env.Remote.AddComment(ctx, t.IssueID, t.Body)
	default:
		return fmt.Errorf("unknown task type %T", task)
	}
}

func (s *State) pollWGIssues(ctx context.Context, env *Env, t PollWGIssues) error {
	issues, err := env.Remote.UpdatedIssues(ctx, env.WGRepo, t.Since)
	if err != nil {
		return err
	}

	latest := s.wgWatermark
	for _, issue := range issues {
		s.stage(FetchIssueComments{
			IssueNumber: issue.Number,
			IssueTitle:  issue.Title,
			IssueLabels: issue.Labels,
			Since:       t.Since,
		})
		advance(&latest, issue.UpdatedAt)
	}
	s.wgWatermark = latest
	return nil
}

func (s *State) fetchIssueComments(ctx context.Context, env *Env, t FetchIssueComments) error {
	comments, err := env.Remote.IssueComments(ctx, env.WGRepo, t.IssueNumber)
	if err != nil {
		return err
	}

	for _, c := range comments {
		if c.CreatedAt.Before(t.Since) {
			continue
		}
		s.stage(ProcessComment{
			IssueNumber: t.IssueNumber,
			IssueTitle:  t.IssueTitle,
			IssueLabels: t.IssueLabels,
			URL:         c.URL,
			BodyText:    c.BodyText,
		})
	}
	return nil
}

// Resolutions returns the text after the marker on every line of body that
// starts with ResolutionMarker.
func Resolutions(body string) []string {
	var resolutions []string
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if rest, ok := strings.CutPrefix(line, ResolutionMarker); ok {
			resolutions = append(resolutions, rest)
		}
	}
	return resolutions
}

func (s *State) processComment(env *Env, t ProcessComment) error {
	resolutions := Resolutions(t.BodyText)
	if len(resolutions) == 0 || s.handledComments[t.URL] {
		return nil
	}
	s.handledComments[t.URL] = true

	var names []string
	for _, label := range labels.Select(env.labelPolicy(), t.IssueLabels) {
		name := types.SpecLabelName(label.Name)
		s.stage(EnsureLabel{Name: name, Color: label.Color})
		names = append(names, name)
	}

	s.stage(FileDecisionIssue{
		IssueNumber: t.IssueNumber,
		IssueTitle:  t.IssueTitle,
		Labels:      names,
		CommentURL:  t.URL,
		Resolutions: resolutions,
	})
	return nil
}

func (s *State) pollDecisionIssues(ctx context.Context, env *Env, t PollDecisionIssues) error {
	issues, err := env.Remote.UpdatedIssues(ctx, env.DecisionsRepo, t.Since)
	if err != nil {
		return err
	}

	latest := s.decisionsWatermark
	for _, issue := range issues {
		advance(&latest, issue.UpdatedAt)
		if s.handledDecisionIssues[issue.Number] || !issue.HasLabel(types.LabelBug) {
			continue
		}

		component, err := labels.ResolveComponent(issue.Labels, env.components())
		if err != nil {
			return fmt.Errorf("decision issue #%d: %w", issue.Number, err)
		}

		s.handledDecisionIssues[issue.Number] = true
		s.stage(
			FileBug{
				Product:     component.Product,
				Component:   component.Component,
				IssueNumber: issue.Number,
				IssueID:     issue.ID,
			},
			RemoveBugLabel{IssueID: issue.ID},
			CloseIssue{IssueID: issue.ID},
		)
	}
	s.decisionsWatermark = latest
	return nil
}

func (s *State) loadDecisionLabels(ctx context.Context, env *Env) error {
	result, err := env.Remote.RepoLabels(ctx, env.DecisionsRepo)
	if err != nil {
		return err
	}

	if s.knownLabels == nil {
		s.knownLabels = make(map[string]string, len(result))
	}
	for _, label := range result {
		s.knownLabels[label.Name] = label.ID
	}
	return nil
}

func (s *State) loadDecisionsRepoID(ctx context.Context, env *Env) error {
	id, err := env.Remote.RepoID(ctx, env.DecisionsRepo)
	if err != nil {
		return err
	}
	if id == "" {
		return errs.Errorf(errs.KindNotFound, "repository %s not found", env.DecisionsRepo)
	}
	s.decisionsRepoID = id
	return nil
}

// deferUntilLoaded stages the loaders for any missing cache followed by t
// itself, and reports whether it did. The caller must return success without
// doing anything else when it did.
func (s *State) deferUntilLoaded(t Task, needRepoID bool) bool {
	deferred := false
	if s.knownLabels == nil {
		s.stage(LoadDecisionLabels{})
		deferred = true
	}
	if needRepoID && s.decisionsRepoID == "" {
		s.stage(LoadDecisionsRepoID{})
		deferred = true
	}
	if deferred {
		s.stage(t)
	}
	return deferred
}

func (s *State) ensureLabel(ctx context.Context, env *Env, t EnsureLabel) error {
	if s.deferUntilLoaded(t, true) {
		return nil
	}
	if _, ok := s.knownLabels[t.Name]; ok {
		return nil
	}

	id, err := env.Remote.CreateLabel(ctx, s.decisionsRepoID, t.Name, t.Color)
	if err != nil {
		return err
	}
	s.knownLabels[t.Name] = id
	return nil
}

func (s *State) fileDecisionIssue(ctx context.Context, env *Env, t FileDecisionIssue) error {
	if s.deferUntilLoaded(t, true) {
		return nil
	}

	var labelIDs []string
	for _, name := range t.Labels {
		if id, ok := s.knownLabels[name]; ok {
			labelIDs = append(labelIDs, id)
		}
	}

	body := DecisionBody(env.WGRepo, t)
	_, err := env.Remote.CreateIssue(ctx, s.decisionsRepoID, t.IssueTitle, body, labelIDs)
	return err
}

func (s *State) fileBug(ctx context.Context, env *Env, t FileBug) error {
	content, err := env.Remote.IssueContent(ctx, env.DecisionsRepo, t.IssueNumber)
	if err != nil {
		return err
	}

	body := markdown.TruncateAtSeparator(content.Body)
	urls := append(markdown.ExtractURLs(body), content.URL)

	s.stage(FileBugWithDetails{
		Product:     t.Product,
		Component:   t.Component,
		Summary:     content.Title,
		Description: strings.TrimSpace(body),
		URLs:        urls,
		IssueID:     t.IssueID,
	})
	return nil
}

func (s *State) fileBugWithDetails(ctx context.Context, env *Env, t FileBugWithDetails) error {
	if env.Bugs == nil {
		return errs.Errorf(errs.KindConfig, "no bug tracker configured")
	}

	url, err := env.Bugs.FileBug(ctx, types.Bug{
		Product:     t.Product,
		Component:   t.Component,
		Summary:     t.Summary,
		Description: t.Description,
		URLs:        t.URLs,
	})
	if err != nil {
		return err
	}

	s.stage(AddIssueComment{IssueID: t.IssueID, Body: url})
	return nil
}

func (s *State) removeBugLabel(ctx context.Context, env *Env, t RemoveBugLabel) error {
	if s.deferUntilLoaded(t, false) {
		return nil
	}

	id, ok := s.knownLabels[types.LabelBug]
	if !ok {
		return errs.Errorf(errs.KindPolicy, "decisions repository %s has no %q label", env.DecisionsRepo, types.LabelBug)
	}
	return env.Remote.RemoveLabels(ctx, t.IssueID, []string{id})
}
