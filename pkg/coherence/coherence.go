// Package coherence scores generated fragments with cheap structural heuristics.
// It is a proxy for "does this look like language", not a language model.
package coherence

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	MinLength = 10

	maxScore = 100.0

	specialCharRatioLimit = 0.1
	randomCapsRatioLimit  = 0.2
	uniqueWordRatioFloor  = 0.5
	shortWordRatioLimit   = 0.5
	shortWordMaxLen       = 2
	noPeriodMinLength     = 50
	maxNewlines           = 3

	specialCharPenalty = 30
	randomCapsPenalty  = 40
	repetitionPenalty  = 30
	shortWordPenalty   = 30
	noPeriodPenalty    = 20
	newlinePenalty     = 20
	protagonistBonus   = 10
)

const specialChars = "!@#$%^&*(){}[]<>"

// Evaluator scores text for a given protagonist.
type Evaluator struct {
	protagonist string
	lower       cases.Caser
	upper       cases.Caser
}

// NewEvaluator creates an evaluator awarding a bonus when protagonist is mentioned.
func NewEvaluator(protagonist string) *Evaluator {
	return &Evaluator{
		protagonist: protagonist,
		lower:       cases.Lower(language.Und),
		upper:       cases.Upper(language.Und),
	}
}

// Score returns a coherence score in [0,100]. Penalties stack independently.
func (e *Evaluator) Score(text string) float64 {
	length := utf8.RuneCountInString(text)
	if length < MinLength {
		return 0
	}

	score := maxScore

	special := 0
	newlines := 0
	for _, r := range text {
		if strings.ContainsRune(specialChars, r) {
			special++
		}
		if r == '\n' {
			newlines++
		}
	}
	if float64(special)/float64(length) > specialCharRatioLimit {
		score -= specialCharPenalty
	}

	words := strings.Fields(text)
	if n := float64(len(words)); n > 0 {
		randomCaps := 0
		short := 0
		unique := make(map[string]struct{}, len(words))
		for _, w := range words {
			if e.isRandomlyCapitalized(w) {
				randomCaps++
			}
			if utf8.RuneCountInString(w) <= shortWordMaxLen {
				short++
			}
			unique[e.lower.String(w)] = struct{}{}
		}

		if float64(randomCaps) > n*randomCapsRatioLimit {
			score -= randomCapsPenalty
		}
		if float64(len(unique))/n < uniqueWordRatioFloor {
			score -= repetitionPenalty
		}
		if float64(short) > n*shortWordRatioLimit {
			score -= shortWordPenalty
		}
	}

	if e.protagonist != "" && strings.Contains(text, e.protagonist) {
		score += protagonistBonus
	}

	if !strings.Contains(text, ".") && length > noPeriodMinLength {
		score -= noPeriodPenalty
	}

	if newlines > maxNewlines {
		score -= newlinePenalty
	}

	return max(0, min(maxScore, score))
}

// isRandomlyCapitalized reports mixed case that does not start at the first
// character, e.g. "gLiTcH" but not "Hello", "HELLO" or "(aB".
func (e *Evaluator) isRandomlyCapitalized(word string) bool {
	if utf8.RuneCountInString(word) <= shortWordMaxLen {
		return false
	}
	if word == e.lower.String(word) || word == e.upper.String(word) {
		return false
	}
	first, _ := utf8.DecodeRuneInString(word)
	return unicode.ToUpper(first) != first
}
