package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscape(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "Encoding", "Encoding"},
		{"hyphen", "Use UTF-8", `Use UTF\-8`},
		{"separator", "a ---- b", `a \-\-\-\- b`},
		{"emphasis", "a*b_c", `a\*b\_c`},
		{"brackets and parens", "[x](y)", `\[x\]\(y\)`},
		{"html", "<a & b>", "&lt;a &amp; b&gt;"},
		{"pipe", "a|b", "a&#124;b"},
		{"backslash", `a\b`, `a\\b`},
		{"heading and code", "#1 `code`", "\\#1 \\`code\\`"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Escape(tt.input))
		})
	}
}

func TestExtractURLs(t *testing.T) {
	body := "A resolution was made for [csswg-drafts/#42](https://github.com/w3c/csswg-drafts/issues/42).\n\n" +
		"[Discussion.](https://github.com/w3c/csswg-drafts/issues/42#issuecomment-1)\n" +
		"(http://insecure.example) and [rel](/relative)"

	assert.Equal(t, []string{
		"https://github.com/w3c/csswg-drafts/issues/42",
		"https://github.com/w3c/csswg-drafts/issues/42#issuecomment-1",
	}, ExtractURLs(body))

	assert.Nil(t, ExtractURLs("no links here"))
}

func TestTruncateAtSeparator(t *testing.T) {
	assert.Equal(t, "head\n\n", TruncateAtSeparator("head\n\n----\n\ntrailer"))
	assert.Equal(t, "no separator", TruncateAtSeparator("no separator"))
	assert.Equal(t, "", TruncateAtSeparator("----"))
}
