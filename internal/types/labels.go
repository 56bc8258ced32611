package types

// Label names with fixed meaning in the decisions repository.
const (
	// LabelBug marks a decision issue that should be turned into a bug-tracker ticket.
	LabelBug = "bug"

	// SpecLabelPrefix is prepended to working group label names when they are
	// mirrored into the decisions repository.
	SpecLabelPrefix = "[spec] "
)

// SpecLabelName returns the decisions-repo name for a working group label.
func SpecLabelName(wgLabel string) string {
	return SpecLabelPrefix + wgLabel
}
