package cli

import (
	"regexp"

	"github.com/jedib0t/go-pretty/v6/text"
)

// markupPattern matches highlight markup embedded in messages: @!name!@.
var markupPattern = regexp.MustCompile(`(?s)@!(.*?)!@`)

// Theme is the immutable color configuration threaded into every renderer.
// The zero value renders plain text.
type Theme struct {
	// Color enables ANSI escape sequences.
	Color bool
}

var (
	colorHighlight = text.Colors{text.FgHiCyan}
	colorSuccess   = text.Colors{text.FgGreen}
	colorWarning   = text.Colors{text.FgYellow}
	colorError     = text.Colors{text.FgRed, text.Bold}
	colorMuted     = text.Colors{text.FgHiBlack}
)

// paint wraps s in the escape sequence for c. The escape sequence is built
// explicitly so the result only depends on the theme, never on go-pretty's
// process-wide color toggle.
func (t Theme) paint(c text.Colors, s string) string {
	if !t.Color || s == "" {
		return s
	}
	return c.EscapeSeq() + s + text.EscapeReset
}

// Highlight emphasizes a resource name. Without color it is single-quoted so
// the emphasis survives in plain text.
func (t Theme) Highlight(s string) string {
	if !t.Color {
		return "'" + s + "'"
	}
	return t.paint(colorHighlight, s)
}

// Success renders s in the success color.
func (t Theme) Success(s string) string { return t.paint(colorSuccess, s) }

// Warning renders s in the warning color.
func (t Theme) Warning(s string) string { return t.paint(colorWarning, s) }

// Error renders s in the error color.
func (t Theme) Error(s string) string { return t.paint(colorError, s) }

// Muted renders s de-emphasized.
func (t Theme) Muted(s string) string { return t.paint(colorMuted, s) }

// Expand replaces highlight markup in msg using the theme.
func (t Theme) Expand(msg string) string {
	return markupPattern.ReplaceAllStringFunc(msg, func(m string) string {
		return t.Highlight(markupPattern.FindStringSubmatch(m)[1])
	})
}

// Highlight wraps s in highlight markup for use inside messages. The markup is
// expanded at render time according to the active theme.
func Highlight(s string) string {
	return "@!" + s + "!@"
}

// StripMarkup expands highlight markup as plain text, for machine-readable
// output and error strings.
func StripMarkup(msg string) string {
	return Theme{}.Expand(msg)
}
