package cli

import (
	"strconv"
	"strings"
)

// RenderError formats err for the diagnostic stream in the active mode.
// The cause of an error is only included when verbose is set, so defects
// never leak implementation detail to a regular user.
func RenderError(err *Error, mode OutputMode, theme Theme, verbose bool) string {
	message := err.Message
	var cause string
	if verbose && err.Cause != nil {
		cause = err.Cause.Error()
	}

	switch mode {
	case OutputJSON:
		env := Envelope{
			Code:      err.ExitCode(),
			Message:   StripMarkup(message),
			NextSteps: plainHints(err.Hints),
		}
		if cause != "" {
			env.Data = Record{F("category", err.Category.String()), F("cause", cause)}
		}
		out, encErr := encodeJSON(env)
		if encErr != nil {
			return StripMarkup(message)
		}
		return out

	case OutputCSV:
		msg := StripMarkup(message)
		if cause != "" {
			msg += ": " + cause
		}
		out, encErr := encodeCSV([]string{"code", "message"}, [][]string{{strconv.Itoa(err.ExitCode()), msg}})
		if encErr != nil {
			return msg
		}
		return out

	default:
		var sb strings.Builder
		sb.WriteString(theme.Error("Error:"))
		sb.WriteString(" ")
		sb.WriteString(theme.Expand(message))
		if cause != "" {
			sb.WriteString("\n")
			sb.WriteString(theme.Muted("Cause: " + cause))
		}
		for _, h := range err.Hints {
			sb.WriteString("\n\n")
			sb.WriteString(theme.Expand(h.Label))
			if h.Command != "" {
				sb.WriteString("\n  ")
				sb.WriteString(theme.paint(colorHighlight, h.Command))
			}
		}
		return sb.String()
	}
}
