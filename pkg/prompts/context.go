package prompts

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/jwebster45206/monologue-engine/pkg/state"
)

const (
	// MaxContextTokens keeps the context short enough for small models to stay on track.
	MaxContextTokens = 256
	charsPerToken    = 4
	MaxContextChars  = MaxContextTokens * charsPerToken

	// BootstrapLength is the accumulated length below which the full scene is restated.
	BootstrapLength = 500

	// Hard reset triggers when failures exceed HardResetFailures below HardResetMadness.
	HardResetFailures = 3
	HardResetMadness  = 60
)

var sentenceSplit = regexp.MustCompile(`[.!?]+`)

// ContextBuilder derives the user context for the next generation.
type ContextBuilder struct {
	rng      state.Rand
	maxChars int
}

// NewContextBuilder creates a builder drawing markers from rng.
func NewContextBuilder(rng state.Rand) *ContextBuilder {
	return &ContextBuilder{
		rng:      rng,
		maxChars: MaxContextChars,
	}
}

// BuildContext returns the context text for the next cycle. When too many
// consecutive failures pile up before the late tiers, the state is reset to
// the seed and the bare seed text is returned with reset set.
func (b *ContextBuilder) BuildContext(ns *state.NarrativeState) (context string, reset bool) {
	if ns.ConsecutiveFailures > HardResetFailures && ns.MadnessLevel < HardResetMadness {
		ns.Reset(b.rng)
		return ns.SeedText, true
	}

	if utf8.RuneCountInString(ns.FullText) < BootstrapLength {
		return fmt.Sprintf("%s exists in %s. %s", ns.Protagonist, ns.Setting, ns.SeedText), false
	}

	recent := ns.LastGoodChunk
	if recent == "" {
		recent = tail(ns.FullText, b.maxChars)
	}

	madness := ns.MadnessLevel
	if madness > 40 && madness <= 60 {
		recent = injectAtMidpoint(recent, pick(glitchMarkers, b.rng))
	}
	if madness > 60 {
		recent = lastSentences(recent, 2)
		recent = pick(corruptionMarkers, b.rng) + " " + recent
	}

	return frame(ns.Protagonist, madness) + " " + recent, false
}

// frame is the narrative anchor prefix, growing more clinical with madness.
func frame(protagonist string, madnessLevel float64) string {
	switch tier(madnessLevel) {
	case 0:
		return protagonist + " continues her existential crisis."
	case 1:
		return protagonist + "'s mind is fragmenting."
	case 2:
		return protagonist + " ERROR CASCADE."
	default:
		return "CRITICAL ERROR. " + protagonist + "."
	}
}

func tail(text string, maxChars int) string {
	runes := []rune(text)
	if len(runes) <= maxChars {
		return text
	}
	return string(runes[len(runes)-maxChars:])
}

func injectAtMidpoint(text, marker string) string {
	runes := []rune(text)
	mid := len(runes) / 2
	return string(runes[:mid]) + " " + marker + " " + string(runes[mid:])
}

// lastSentences keeps the final n sentences of text. Text with n or fewer
// sentences is returned unchanged.
func lastSentences(text string, n int) string {
	var sentences []string
	for _, s := range sentenceSplit.Split(text, -1) {
		if s = strings.TrimSpace(s); s != "" {
			sentences = append(sentences, s)
		}
	}
	if len(sentences) <= n {
		return text
	}
	return strings.Join(sentences[len(sentences)-n:], ". ") + "."
}
