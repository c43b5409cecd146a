package textfilter

import (
	"strings"

	"github.com/jwebster45206/monologue-engine/pkg/state"
)

// fallbackMinLength is the length above which a fragment without any
// sentence ending is cut at a softer punctuation mark instead.
const fallbackMinLength = 100

const ellipsis = "..."

// Sanitize trims a raw fragment to its last complete sentence.
// '.' and '…' only count when followed by the end of text, a space or a
// newline, so abbreviations such as "Dr.Who" are not cut. '!' and '?'
// always count. Long fragments without a sentence ending are cut at the last
// ',', ';', '—' or '-' in their second half and get an ellipsis.
func Sanitize(text string) string {
	if text == "" {
		return text
	}

	runes := []rune(text)
	n := len(runes)

	last := -1
	for i := n - 1; i >= 0; i-- {
		switch runes[i] {
		case '!', '?':
			last = i
		case '.', '…':
			if i == n-1 || runes[i+1] == ' ' || runes[i+1] == '\n' {
				last = i
			}
		}
		if last >= 0 {
			break
		}
	}

	// A sentence ending at index 0 leaves nothing worth keeping.
	if last > 0 {
		return strings.TrimSpace(string(runes[:last+1]))
	}

	if n > fallbackMinLength {
		for i := n - 1; 2*i >= n; i-- {
			switch runes[i] {
			case ',', ';', '—', '-':
				return strings.TrimSpace(string(runes[:i+1])) + ellipsis
			}
		}
	}

	return strings.TrimSpace(text)
}

// Words splits an accepted fragment into display tokens terminated by a
// paragraph-break marker.
func Words(fragment string) []string {
	words := strings.Fields(fragment)
	return append(words, state.ParagraphBreak)
}

// SplitTokens splits text that may contain paragraph breaks (such as the
// seed text) into display tokens, keeping each break as its own token.
func SplitTokens(text string) []string {
	var tokens []string
	paragraphs := strings.Split(text, state.ParagraphBreak)
	for i, p := range paragraphs {
		tokens = append(tokens, strings.Fields(p)...)
		if i < len(paragraphs)-1 {
			tokens = append(tokens, state.ParagraphBreak)
		}
	}
	return tokens
}
