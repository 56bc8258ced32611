// Package labels maps working group labels onto the decisions repository.
//
// Label flow:
//   - WG issue labels selected by the repo policy are mirrored as "[spec] <name>"
//   - a decision issue labeled "bug" is filed against the component its
//     "[spec] <id>" labels resolve to
package labels

import (
	"strings"

	"github.com/steveyegge/wgtracker/internal/config"
	"github.com/steveyegge/wgtracker/internal/types"
)

// FallbackComponent is used when neither the spec labels nor the policy's
// default entry name a component.
var FallbackComponent = config.Component{Product: "Invalid Bugs", Component: "General"}

// Select returns the issue labels the policy wants mirrored, in issue order.
// A label matches if its color equals the policy color or its name starts
// with any policy prefix. A nil policy selects nothing.
func Select(policy *config.LabelPolicy, issueLabels []types.Label) []types.Label {
	if policy == nil {
		return nil
	}

	var selected []types.Label
	for _, label := range issueLabels {
		if policy.Color != "" && label.Color == policy.Color {
			selected = append(selected, label)
			continue
		}
		for _, prefix := range policy.Prefixes {
			if strings.HasPrefix(label.Name, prefix) {
				selected = append(selected, label)
				break
			}
		}
	}
	return selected
}

// SpecID returns the id part of a "[spec] <id>" label.
func SpecID(labelName string) (string, bool) {
	if !strings.HasPrefix(labelName, types.SpecLabelPrefix) {
		return "", false
	}
	return strings.TrimPrefix(labelName, types.SpecLabelPrefix), true
}

// ShortID strips trailing digits and hyphens from a spec id, so
// "css-grid-2" and "css-grid-1" both become "css-grid".
func ShortID(id string) string {
	return strings.TrimRight(id, "0123456789-")
}

// ResolveComponent picks the bug tracker component for a decision issue.
//
// Each "[spec] <id>" label is shortened with ShortID and looked up in
// components. If the lookups name exactly one distinct component it is used;
// otherwise the "default" entry is used if present, else FallbackComponent.
// An unparseable component string is a policy error.
func ResolveComponent(issueLabels []types.Label, components map[string]string) (config.Component, error) {
	var matches []string
	for _, label := range issueLabels {
		id, ok := SpecID(label.Name)
		if !ok {
			continue
		}
		value, ok := components[ShortID(id)]
		if !ok || contains(matches, value) {
			continue
		}
		matches = append(matches, value)
	}

	if len(matches) == 1 {
		return config.ParseComponent(matches[0])
	}
	if value, ok := components[config.DefaultComponentKey]; ok {
		return config.ParseComponent(value)
	}
	return FallbackComponent, nil
}

func contains(values []string, v string) bool {
	for _, existing := range values {
		if existing == v {
			return true
		}
	}
	return false
}
