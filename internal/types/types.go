package types

import (
	"fmt"
	"strings"
	"time"
)

// Repo identifies a GitHub repository as owner/name.
type Repo struct {
	Owner string `json:"owner" yaml:"owner"`
	Name  string `json:"name" yaml:"name"`
}

// ParseRepo parses "owner/name" syntax.
func ParseRepo(s string) (Repo, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Repo{}, fmt.Errorf("repository %q must have 'owner/repo' syntax", s)
	}
	return Repo{Owner: parts[0], Name: parts[1]}, nil
}

// String returns the owner/name form.
func (r Repo) String() string {
	return r.Owner + "/" + r.Name
}

// URL returns the repository's web URL.
func (r Repo) URL() string {
	return "https://github.com/" + r.String()
}

// IssueURL returns the web URL of issue number n in this repository.
func (r Repo) IssueURL(n int) string {
	return fmt.Sprintf("%s/issues/%d", r.URL(), n)
}

// Label is an issue label as attached to an issue.
type Label struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Issue is the subset of an issue returned by "issues updated since" queries.
type Issue struct {
	ID        string    `json:"id"`
	Number    int       `json:"number"`
	Title     string    `json:"title"`
	UpdatedAt time.Time `json:"updated_at"`
	Labels    []Label   `json:"labels"`
}

// HasLabel reports whether the issue carries a label with the given name.
func (i *Issue) HasLabel(name string) bool {
	for _, l := range i.Labels {
		if l.Name == name {
			return true
		}
	}
	return false
}

// Comment is a comment on an issue.
type Comment struct {
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
	BodyText  string    `json:"body_text"`
}

// RepoLabel is a label defined on a repository.
type RepoLabel struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// IssueContent is the title and body of a single issue.
type IssueContent struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url"`
}

// Bug is a ticket to be filed in the bug tracker.
type Bug struct {
	Product     string   `json:"product"`
	Component   string   `json:"component"`
	Summary     string   `json:"summary"`
	Description string   `json:"description"`
	URLs        []string `json:"urls"`
}

// Validate checks the fields the bug tracker requires.
func (b *Bug) Validate() error {
	if b.Product == "" {
		return fmt.Errorf("product is required")
	}
	if b.Component == "" {
		return fmt.Errorf("component is required")
	}
	if strings.TrimSpace(b.Summary) == "" {
		return fmt.Errorf("summary is required")
	}
	return nil
}
