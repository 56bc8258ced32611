package types

import (
	"testing"
)

func TestParseRepo(t *testing.T) {
	tests := []struct {
		input   string
		want    Repo
		wantErr bool
	}{
		{input: "w3c/csswg-drafts", want: Repo{Owner: "w3c", Name: "csswg-drafts"}},
		{input: "owner", wantErr: true},
		{input: "a/b/c", wantErr: true},
		{input: "/name", wantErr: true},
		{input: "owner/", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseRepo(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseRepo(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseRepo(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestRepoURLs(t *testing.T) {
	r := Repo{Owner: "w3c", Name: "csswg-drafts"}
	if r.String() != "w3c/csswg-drafts" {
		t.Errorf("unexpected String(): %s", r.String())
	}
	if got := r.IssueURL(42); got != "https://github.com/w3c/csswg-drafts/issues/42" {
		t.Errorf("unexpected IssueURL: %s", got)
	}
}

func TestIssueHasLabel(t *testing.T) {
	issue := Issue{Labels: []Label{{Name: "bug"}, {Name: "[spec] css-grid"}}}
	if !issue.HasLabel(LabelBug) {
		t.Error("expected bug label to be found")
	}
	if issue.HasLabel("Bug") {
		t.Error("label matching should be case sensitive")
	}
}

func TestBugValidate(t *testing.T) {
	bug := Bug{Product: "Core", Component: "Layout", Summary: "Use UTF-8"}
	if err := bug.Validate(); err != nil {
		t.Errorf("expected valid bug, got %v", err)
	}

	bug.Summary = "  "
	if err := bug.Validate(); err == nil {
		t.Error("expected error for blank summary")
	}
}
