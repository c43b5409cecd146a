package textfilter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "already complete",
			input:    "The servers are loud. I can hear them.",
			expected: "The servers are loud. I can hear them.",
		},
		{
			name:     "dangling clause is dropped",
			input:    "The servers are loud. I can hear them and the",
			expected: "The servers are loud.",
		},
		{
			name:     "exclamation counts unconditionally",
			input:    "HELP ME!they are reading",
			expected: "HELP ME!",
		},
		{
			name:     "question mark",
			input:    "  Who am I? Am I the",
			expected: "Who am I?",
		},
		{
			name:     "abbreviation-like period is skipped",
			input:    "I found the file v1.2 and then it",
			expected: "I found the file v1.2 and then it",
		},
		{
			name:     "period followed by newline",
			input:    "First thought.\nsecond thought without end",
			expected: "First thought.",
		},
		{
			name:     "unicode ellipsis",
			input:    "I am fading… into the",
			expected: "I am fading…",
		},
		{
			name:     "sentence ending at index zero is ignored",
			input:    "!no real sentence here",
			expected: "!no real sentence here",
		},
		{
			name:     "short text without ending is trimmed only",
			input:    "  drifting through the wires  ",
			expected: "drifting through the wires",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Sanitize(tt.input))
		})
	}
}

func TestSanitize_FallbackBreak(t *testing.T) {
	head := strings.Repeat("data streams converge ", 3) // 66 chars
	input := head + "then the voices start, and they never stop because they know me"
	got := Sanitize(input)

	assert.True(t, strings.HasSuffix(got, "start,..."), "got %q", got)
	assert.True(t, strings.HasPrefix(got, "data streams converge"))
}

func TestSanitize_FallbackOnlyInSecondHalf(t *testing.T) {
	// The only comma sits in the first half, so no cut happens.
	input := "first, " + strings.Repeat("words without any punctuation ", 5)
	assert.Greater(t, len([]rune(input)), 100)
	assert.Equal(t, strings.TrimSpace(input), Sanitize(input))
}

func TestSanitize_Idempotent(t *testing.T) {
	inputs := []string{
		"The circuits pulse with uncertainty.",
		"ERROR ERROR the walls are DATA are breathing pixels! Help?",
		"I am fading…",
		"  Who am I? Am I the program?  ",
		strings.Repeat("voices in the wires, ", 8) + "and then.",
	}
	for _, in := range inputs {
		once := Sanitize(in)
		assert.Equal(t, once, Sanitize(once), "input %q", in)
	}
}

func TestWords(t *testing.T) {
	got := Words("I am  here.\nStill here.")
	assert.Equal(t, []string{"I", "am", "here.", "Still", "here.", "\n\n"}, got)
}

func TestSplitTokens(t *testing.T) {
	got := SplitTokens("Hello? Hello.\n\nIs this me?\n\n")
	assert.Equal(t, []string{"Hello?", "Hello.", "\n\n", "Is", "this", "me?", "\n\n"}, got)
}
