package engine

import (
	"fmt"
	"strings"

	"github.com/steveyegge/wgtracker/internal/markdown"
	"github.com/steveyegge/wgtracker/internal/types"
)

const decisionTrailer = "To file a bug automatically for these resolutions, add the **bug** label to the issue.\n" +
	"\n" +
	"If no bug is needed, the issue can be closed."

// DecisionBody renders the body of the decision issue filed for t. Everything
// before the markdown separator is read back when the issue is later filed
// as a bug.
func DecisionBody(wg types.Repo, t FileDecisionIssue) string {
	lead := "Resolutions were"
	if len(t.Resolutions) == 1 {
		lead = "A resolution was"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s made for [%s/#%d](%s).\n\n", lead, wg.Name, t.IssueNumber, wg.IssueURL(t.IssueNumber))
	fmt.Fprintf(&b, "**%s**\n\n", markdown.Escape(t.IssueTitle))
	for _, r := range t.Resolutions {
		fmt.Fprintf(&b, "* RESOLVED: %s\n", markdown.Escape(r))
	}
	fmt.Fprintf(&b, "\n\n[Discussion.](%s)\n\n%s\n\n%s", t.CommentURL, markdown.Separator, decisionTrailer)
	return b.String()
}
