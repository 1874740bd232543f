package update

import "regexp"

var (
	boilerplateRe = regexp.MustCompile(`(\*\*)?(_)?See the assets to download and install this version\.(_)?(\*\*)?`)
	notesHeaderRe = regexp.MustCompile(`### Notes`)
	headerRe      = regexp.MustCompile(`(?m)^#+`)
	boldRe        = regexp.MustCompile(`\*\*(.*?)\*\*`)
	italicRe      = regexp.MustCompile(`_(.*?)_`)
	linkRe        = regexp.MustCompile(`\[(.*?)\]\(.*?\)`)
)

// SanitizeNotes strips markdown markup from release notes for plain-text
// client display. The replacements run in a fixed order, each over the output
// of the previous one; malformed markup is left partially transformed rather
// than rejected. The transform is idempotent on already-clean text.
func SanitizeNotes(notes string) string {
	s := boilerplateRe.ReplaceAllString(notes, "")
	s = notesHeaderRe.ReplaceAllString(s, "")
	s = headerRe.ReplaceAllString(s, "")
	s = boldRe.ReplaceAllString(s, "$1")
	s = italicRe.ReplaceAllString(s, "$1")
	s = linkRe.ReplaceAllString(s, "$1")

	return s
}
