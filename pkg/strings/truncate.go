package strings

import (
	"strings"
)

// DefaultCellMaxLen is the default maximum width of a cell in human-readable tables.
const DefaultCellMaxLen = 60

// MinTruncateLen is the minimum maxLen value for TruncateCell.
// Values smaller than this would not leave room for meaningful content plus "...".
const MinTruncateLen = 4

// TruncateCell truncates a string to maxLen characters and ensures single-line output.
// It collapses all whitespace runs, including newlines, into single spaces and
// adds "..." if truncated. Truncation operates on runes so multi-byte characters
// are never split.
//
// If maxLen is less than MinTruncateLen it is clamped to MinTruncateLen.
func TruncateCell(s string, maxLen int) string {
	if maxLen < MinTruncateLen {
		maxLen = MinTruncateLen
	}

	s = strings.Join(strings.Fields(s), " ")

	runes := []rune(s)
	if len(runes) > maxLen {
		return string(runes[:maxLen-3]) + "..."
	}
	return s
}
