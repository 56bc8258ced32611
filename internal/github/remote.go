package github

import (
	"context"
	"time"

	"github.com/tidwall/gjson"

	"github.com/steveyegge/wgtracker/internal/engine"
	"github.com/steveyegge/wgtracker/internal/errs"
	"github.com/steveyegge/wgtracker/internal/types"
)

var _ engine.Remote = (*Client)(nil)

func repoVars(repo types.Repo) map[string]any {
	return map[string]any{"owner": repo.Owner, "name": repo.Name}
}

// UpdatedIssues returns the issues in repo updated at or after since, oldest
// update first, with their labels.
func (c *Client) UpdatedIssues(ctx context.Context, repo types.Repo, since time.Time) ([]types.Issue, error) {
	const op = "updated issues"
	vars := repoVars(repo)
	vars["since"] = since.UTC().Format(time.RFC3339)

	var issues []types.Issue
	err := c.paginate(ctx, op, updatedIssuesQuery, vars, "repository.issues", func(node gjson.Result) error {
		updated, err := parseTime(op, node.Get("updatedAt"))
		if err != nil {
			return err
		}
		issue := types.Issue{
			ID:        node.Get("id").String(),
			Number:    int(node.Get("number").Int()),
			Title:     node.Get("title").String(),
			UpdatedAt: updated,
		}
		for _, label := range node.Get("labels.nodes").Array() {
			issue.Labels = append(issue.Labels, types.Label{
				Name:  label.Get("name").String(),
				Color: label.Get("color").String(),
			})
		}
		issues = append(issues, issue)
		return nil
	})
	return issues, err
}

// IssueComments returns every comment on issue number in repo.
func (c *Client) IssueComments(ctx context.Context, repo types.Repo, number int) ([]types.Comment, error) {
	const op = "issue comments"
	vars := repoVars(repo)
	vars["number"] = number

	var comments []types.Comment
	err := c.paginate(ctx, op, issueCommentsQuery, vars, "repository.issue.comments", func(node gjson.Result) error {
		created, err := parseTime(op, node.Get("createdAt"))
		if err != nil {
			return err
		}
		comments = append(comments, types.Comment{
			URL:       node.Get("url").String(),
			CreatedAt: created,
			BodyText:  node.Get("bodyText").String(),
		})
		return nil
	})
	return comments, err
}

// RepoLabels returns every label defined on repo.
func (c *Client) RepoLabels(ctx context.Context, repo types.Repo) ([]types.RepoLabel, error) {
	var labels []types.RepoLabel
	err := c.paginate(ctx, "repo labels", repoLabelsQuery, repoVars(repo), "repository.labels", func(node gjson.Result) error {
		labels = append(labels, types.RepoLabel{
			ID:   node.Get("id").String(),
			Name: node.Get("name").String(),
		})
		return nil
	})
	return labels, err
}

// RepoID returns the node id of repo, or "" if the repository does not exist.
func (c *Client) RepoID(ctx context.Context, repo types.Repo) (string, error) {
	const op = "repo id"
	data, err := c.do(ctx, op, repoIDQuery, repoVars(repo), "")
	if err != nil {
		return "", err
	}
	id, err := lookup(op, data, "repository.id")
	if errs.Is(err, errs.KindNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// IssueContent returns the title, body and URL of issue number in repo.
func (c *Client) IssueContent(ctx context.Context, repo types.Repo, number int) (*types.IssueContent, error) {
	const op = "issue content"
	vars := repoVars(repo)
	vars["number"] = number

	data, err := c.do(ctx, op, issueContentQuery, vars, "")
	if err != nil {
		return nil, err
	}
	issue, err := lookup(op, data, "repository.issue")
	if err != nil {
		return nil, err
	}
	return &types.IssueContent{
		Title: issue.Get("title").String(),
		Body:  issue.Get("body").String(),
		URL:   issue.Get("url").String(),
	}, nil
}

// CreateLabel creates a label on the repository with node id repoID and
// returns the new label's id.
func (c *Client) CreateLabel(ctx context.Context, repoID, name, color string) (string, error) {
	const op = "create label"
	data, err := c.do(ctx, op, createLabelMutation, map[string]any{
		"repositoryId": repoID,
		"name":         name,
		"color":        color,
	}, labelPreview)
	if err != nil {
		return "", err
	}
	return createdID(op, data, "createLabel.label.id")
}

// CreateIssue files an issue on the repository with node id repoID and
// returns the new issue's id.
func (c *Client) CreateIssue(ctx context.Context, repoID, title, body string, labelIDs []string) (string, error) {
	const op = "create issue"
	if labelIDs == nil {
		labelIDs = []string{}
	}
	data, err := c.do(ctx, op, createIssueMutation, map[string]any{
		"repositoryId": repoID,
		"title":        title,
		"body":         body,
		"labelIds":     labelIDs,
	}, "")
	if err != nil {
		return "", err
	}
	return createdID(op, data, "createIssue.issue.id")
}

// RemoveLabels removes labels from an issue or pull request.
func (c *Client) RemoveLabels(ctx context.Context, itemID string, labelIDs []string) error {
	_, err := c.do(ctx, "remove labels", removeLabelsMutation, map[string]any{
		"labelableId": itemID,
		"labelIds":    labelIDs,
	}, "")
	return err
}

// CloseIssue closes the issue with node id itemID.
func (c *Client) CloseIssue(ctx context.Context, itemID string) error {
	_, err := c.do(ctx, "close issue", closeIssueMutation, map[string]any{"issueId": itemID}, "")
	return err
}

// AddComment comments on the issue or pull request with node id itemID.
func (c *Client) AddComment(ctx context.Context, itemID, body string) error {
	_, err := c.do(ctx, "add comment", addCommentMutation, map[string]any{
		"subjectId": itemID,
		"body":      body,
	}, "")
	return err
}

func createdID(op string, data gjson.Result, path string) (string, error) {
	id, err := lookup(op, data, path)
	if err != nil {
		return "", errs.Errorf(errs.KindResponse, "%s failed: %w", op, err)
	}
	return id.String(), nil
}
