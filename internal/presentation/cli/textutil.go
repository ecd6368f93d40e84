package cli

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// SingleLine collapses whitespace into single spaces.
func SingleLine(text string) string {
	if text == "" {
		return ""
	}
	return strings.Join(strings.Fields(text), " ")
}

// Truncate trims a string to the given width with an ellipsis.
// A non-positive width leaves the text unchanged.
func Truncate(text string, width int) string {
	if width <= 0 {
		return text
	}
	return ansi.Truncate(text, width, "...")
}
