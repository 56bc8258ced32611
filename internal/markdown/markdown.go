// Package markdown holds the small text helpers used to render and read
// back decision issue bodies.
package markdown

import (
	"regexp"
	"strings"
)

// Separator divides the generated part of a decision issue body from its
// fixed trailer.
const Separator = "----"

var (
	escapeRE = regexp.MustCompile("[#&()*+<>\\[\\]\\\\_`|-]")
	urlRE    = regexp.MustCompile(`\((https:[^)]*)`)
)

// Escape makes s safe to embed in a single line of GitHub markdown.
// Hyphens are escaped so user text can never form a Separator.
func Escape(s string) string {
	return escapeRE.ReplaceAllStringFunc(s, func(c string) string {
		switch c {
		case `\`:
			return `\\`
		case "&":
			return "&amp;"
		case "<":
			return "&lt;"
		case ">":
			return "&gt;"
		case "|":
			return "&#124;"
		default:
			return `\` + c
		}
	})
}

// ExtractURLs returns the https URLs that appear as parenthesised markdown
// link targets in s, in order of appearance.
func ExtractURLs(s string) []string {
	var urls []string
	for _, m := range urlRE.FindAllStringSubmatch(s, -1) {
		urls = append(urls, m[1])
	}
	return urls
}

// TruncateAtSeparator returns the part of body before the first Separator.
func TruncateAtSeparator(body string) string {
	if i := strings.Index(body, Separator); i >= 0 {
		return body[:i]
	}
	return body
}
