package engine

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steveyegge/wgtracker/internal/types"
)

func TestDecisionBody(t *testing.T) {
	body := DecisionBody(wgRepo, FileDecisionIssue{
		IssueNumber: 42,
		IssueTitle:  "Encoding",
		CommentURL:  commentURL,
		Resolutions: []string{"Use UTF-8", "Reject nulls"},
	})

	lines := strings.Split(body, "\n")
	assert.Equal(t, "Resolutions were made for [csswg-drafts/#42](https://github.com/w3c/csswg-drafts/issues/42).", lines[0])
	assert.Contains(t, lines, "**Encoding**")
	assert.Contains(t, lines, `* RESOLVED: Use UTF\-8`)
	assert.Contains(t, lines, "* RESOLVED: Reject nulls")
	assert.Contains(t, lines, "[Discussion.]("+commentURL+")")
	assert.Contains(t, lines, "----")
	assert.True(t, strings.HasSuffix(body, "If no bug is needed, the issue can be closed."))
}

func TestDecisionBodySingleResolutionEscapes(t *testing.T) {
	body := DecisionBody(wgRepo, FileDecisionIssue{
		IssueNumber: 7,
		IssueTitle:  "[css-grid] a_b <c>",
		CommentURL:  commentURL,
		Resolutions: []string{"Use *bold* | pipes"},
	})

	want := "A resolution was made for [csswg-drafts/#7](https://github.com/w3c/csswg-drafts/issues/7).\n" +
		"\n" +
		"**\\[css-grid\\] a\\_b &lt;c&gt;**\n" +
		"\n" +
		"* RESOLVED: Use \\*bold\\* &#124; pipes\n" +
		"\n" +
		"\n" +
		"[Discussion.](" + commentURL + ")\n" +
		"\n" +
		"----\n" +
		"\n" +
		"To file a bug automatically for these resolutions, add the **bug** label to the issue.\n" +
		"\n" +
		"If no bug is needed, the issue can be closed."
	assert.Equal(t, want, body)
}

func TestResolutionToDecisionIssue(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote()
	remote.Labels = []types.RepoLabel{
		{ID: "L_bug", Name: "bug"},
		{ID: "L_css", Name: "[spec] css-text"},
	}
	remote.Issues[wgRepo] = []types.Issue{{
		ID:        "I_42",
		Number:    42,
		Title:     "Encoding",
		UpdatedAt: epoch.Add(time.Hour),
		Labels: []types.Label{
			{Name: "css-text", Color: "000000"},
			{Name: "i18n", Color: "fbca04"},
		},
	}}
	remote.Comments[42] = []types.Comment{
		{URL: commentURL, CreatedAt: epoch.Add(time.Hour), BodyText: "Some text\nRESOLVED: Use UTF-8\nRESOLVED: Reject nulls\n"},
		{URL: commentURL + "0", CreatedAt: epoch.Add(time.Hour), BodyText: "Thanks!"},
	}
	env := newEnv(remote, &fakeBugs{})

	s := New(epoch)
	s.ScheduleUpdates()
	_, err := drain(ctx, s, env, 50)
	require.NoError(t, err)

	assert.Equal(t, []createdLabel{{RepoID: "R_decisions", Name: "[spec] i18n", Color: "fbca04"}}, remote.CreatedLabels)
	require.Len(t, remote.CreatedIssues, 1)
	created := remote.CreatedIssues[0]
	assert.Equal(t, "Encoding", created.Title)
	assert.Equal(t, []string{"L_css", "L_3"}, created.LabelIDs)
	assert.Contains(t, created.Body, "* RESOLVED: Use UTF\\-8\n")
	assert.Contains(t, created.Body, "* RESOLVED: Reject nulls\n")
	assert.Equal(t, epoch.Add(time.Hour), s.WGWatermark())

	// A second run over the same window files nothing new
	s.ScheduleUpdates()
	_, err = drain(ctx, s, env, 50)
	require.NoError(t, err)
	assert.Len(t, remote.CreatedIssues, 1)
	assert.Len(t, remote.CreatedLabels, 1)
}

func TestBugLabeledDecisionIssueToBugTracker(t *testing.T) {
	ctx := context.Background()
	decisionURL := "https://github.com/w3c/csswg-decisions/issues/7"
	remote := newFakeRemote()
	remote.Labels = []types.RepoLabel{{ID: "L_bug", Name: "bug"}}
	remote.Issues[decisionsRepo] = []types.Issue{{
		ID:        "I_7",
		Number:    7,
		Title:     "Widget sizing",
		UpdatedAt: epoch.Add(2 * time.Hour),
		Labels:    []types.Label{{Name: "bug"}, {Name: "[spec] widget-12"}},
	}}
	remote.Contents[7] = &types.IssueContent{
		Title: "Widget sizing",
		Body: DecisionBody(wgRepo, FileDecisionIssue{
			IssueNumber: 42,
			IssueTitle:  "Widget sizing",
			CommentURL:  commentURL,
			Resolutions: []string{"Widgets shrink"},
		}),
		URL: decisionURL,
	}
	bugs := &fakeBugs{}
	env := newEnv(remote, bugs)

	s := New(epoch)
	s.ScheduleUpdates()
	ran, err := drain(ctx, s, env, 50)
	require.NoError(t, err)

	assert.Equal(t, []TaskKind{
		KindPollWGIssues,
		KindPollDecisionIssues,
		KindFileBug,
		KindFileBugWithDetails,
		KindAddIssueComment,
		KindRemoveBugLabel,
		KindLoadDecisionLabels,
		KindRemoveBugLabel,
		KindCloseIssue,
	}, kinds(ran))

	require.Len(t, bugs.Filed, 1)
	bug := bugs.Filed[0]
	assert.Equal(t, "Widgets", bug.Product)
	assert.Equal(t, "Core", bug.Component)
	assert.Equal(t, "Widget sizing", bug.Summary)
	assert.Equal(t, []string{wgRepo.IssueURL(42), commentURL, decisionURL}, bug.URLs)

	assert.Equal(t, []string{"https://bugzilla.example.com/show_bug.cgi?id=1"}, remote.Commented["I_7"])
	assert.Equal(t, []string{"L_bug"}, remote.RemovedLabels["I_7"])
	assert.Equal(t, []string{"I_7"}, remote.Closed)
	assert.Equal(t, epoch.Add(2*time.Hour), s.DecisionsWatermark())

	// The issue is still returned by the next poll but is not filed again
	s.ScheduleUpdates()
	_, err = drain(ctx, s, env, 50)
	require.NoError(t, err)
	assert.Len(t, bugs.Filed, 1)
	assert.Len(t, remote.Closed, 1)
}
