package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncateCell(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxLen   int
		expected string
	}{
		{
			name:     "short string unchanged",
			input:    "hello",
			maxLen:   10,
			expected: "hello",
		},
		{
			name:     "exact length unchanged",
			input:    "hello",
			maxLen:   5,
			expected: "hello",
		},
		{
			name:     "long string truncated",
			input:    "hello world this is a long string",
			maxLen:   15,
			expected: "hello world ...",
		},
		{
			name:     "newlines replaced with spaces",
			input:    "us-east1\neu-west1",
			maxLen:   30,
			expected: "us-east1 eu-west1",
		},
		{
			name:     "whitespace runs collapsed",
			input:    "a \t\n\n  b",
			maxLen:   10,
			expected: "a b",
		},
		{
			name:     "unicode is not split",
			input:    "ääääääää",
			maxLen:   6,
			expected: "äää...",
		},
		{
			name:     "tiny maxLen is clamped",
			input:    "abcdefgh",
			maxLen:   1,
			expected: "a...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TruncateCell(tt.input, tt.maxLen))
		})
	}
}
