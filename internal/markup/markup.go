// Package markup converts BiteBot's inline message notation into terminal
// text. The notation is tiny: **…** pairs become emphasis and newlines stay
// literal line breaks. Nothing else is interpreted; message content is
// conversation, not a document, so headings, links, lists and code spans all
// pass through as-is.
package markup

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// boldPair matches a same-line, non-greedy **…** pair. `.` does not cross
// newlines, so a marker left open at the end of a line stays literal.
var boldPair = regexp.MustCompile(`\*\*(.*?)\*\*`)

var boldStyle = lipgloss.NewStyle().Bold(true)

// Render produces the display form of one message's content. Backend text is
// untrusted: control characters (C0 except newline and tab, DEL, C1) are
// stripped before styling so a response can never smuggle cursor movement or
// OSC sequences into the frame.
func Render(text string) string {
	clean := sanitize(text)
	return boldPair.ReplaceAllStringFunc(clean, func(m string) string {
		return boldStyle.Render(m[2 : len(m)-2])
	})
}

// sanitize drops every control character except newline and tab.
func sanitize(text string) string {
	if !strings.ContainsFunc(text, isControl) {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if isControl(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isControl(r rune) bool {
	if r == '\n' || r == '\t' {
		return false
	}
	return r < 0x20 || r == 0x7f || (r >= 0x80 && r <= 0x9f)
}
