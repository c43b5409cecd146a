package state

import (
	"math"
)

// ParagraphBreak terminates every accepted fragment in the accumulated text
// and is sent to the presentation layer as its own word token.
const ParagraphBreak = "\n\n"

const (
	MinTargetGenerations = 100
	MaxTargetGenerations = 1000

	MaxMadness      = 100.0
	MaxQualityScore = 100.0

	// qualityWeight is the share of a new coherence score in the running average.
	qualityWeight = 0.3
	// qualityDecay is applied to the running score on every rejection.
	qualityDecay = 0.9
)

// Rand is the source of randomness used across the engine.
// *math/rand/v2.Rand satisfies it.
type Rand interface {
	IntN(n int) int
	Float64() float64
}

// Narrative holds the fixed identity of the monologue.
type Narrative struct {
	Protagonist string `json:"protagonist"`
	Setting     string `json:"setting"`
	SeedText    string `json:"seed_text"`
}

// NarrativeState is the mutable story memory for one session.
type NarrativeState struct {
	Protagonist string `json:"protagonist"`
	Setting     string `json:"setting"`
	// SeedText is the bootstrap narrative. It is never mutated, only copied.
	SeedText string `json:"seed_text"`

	FullText              string  `json:"full_text"`
	LastGoodChunk         string  `json:"last_good_chunk,omitempty"`
	QualityScore          float64 `json:"quality_score"`
	ConsecutiveFailures   int     `json:"consecutive_failures"`
	MadnessLevel          float64 `json:"madness_level"`
	GenerationCount       int     `json:"generation_count"`
	TargetGenerationCount int     `json:"target_generation_count"`
}

// NewNarrativeState creates a session state already reset to the seed text.
func NewNarrativeState(n Narrative, rng Rand) *NarrativeState {
	ns := &NarrativeState{
		Protagonist: n.Protagonist,
		Setting:     n.Setting,
		SeedText:    n.SeedText,
	}
	ns.Reset(rng)
	return ns
}

// Reset restores the seed text, zeroes progression and draws a fresh
// target generation count in [MinTargetGenerations, MaxTargetGenerations].
func (ns *NarrativeState) Reset(rng Rand) {
	ns.FullText = ns.SeedText + ParagraphBreak
	ns.LastGoodChunk = ""
	ns.QualityScore = MaxQualityScore
	ns.ConsecutiveFailures = 0
	ns.MadnessLevel = 0
	ns.GenerationCount = 0
	ns.TargetGenerationCount = MinTargetGenerations + rng.IntN(MaxTargetGenerations-MinTargetGenerations+1)
}

// Accept appends a fragment and folds its score into the running quality average.
func (ns *NarrativeState) Accept(fragment string, score float64) {
	ns.FullText += fragment + ParagraphBreak
	ns.LastGoodChunk = fragment
	ns.QualityScore = clamp(ns.QualityScore*(1-qualityWeight)+score*qualityWeight, 0, MaxQualityScore)
	ns.ConsecutiveFailures = 0
	ns.GenerationCount++
}

// Reject records a back-to-back failure and decays the running quality score.
func (ns *NarrativeState) Reject() {
	ns.ConsecutiveFailures++
	ns.QualityScore = clamp(ns.QualityScore*qualityDecay, 0, MaxQualityScore)
}

// BaseIncrement is the madness step that reaches MaxMadness after
// TargetGenerationCount accepted generations at a multiplier of 1.
func (ns *NarrativeState) BaseIncrement() float64 {
	if ns.TargetGenerationCount <= 0 {
		return MaxMadness
	}
	return MaxMadness / float64(ns.TargetGenerationCount)
}

// AdvanceMadness raises the madness level by increment, never past MaxMadness.
// Negative increments are ignored; madness never decreases outside Reset.
// It reports whether the level is now at its maximum.
func (ns *NarrativeState) AdvanceMadness(increment float64) bool {
	if increment > 0 {
		ns.MadnessLevel = math.Min(MaxMadness, ns.MadnessLevel+increment)
	}
	return ns.Complete()
}

// Complete reports whether the progression has reached full madness.
func (ns *NarrativeState) Complete() bool {
	return ns.MadnessLevel >= MaxMadness
}

// RoundedQuality is the coherence percentage shown to the user.
func (ns *NarrativeState) RoundedQuality() int {
	return int(math.Round(ns.QualityScore))
}

// Severity returns the header tag for a madness level, or "" below the first tier.
func Severity(madness float64) string {
	switch {
	case madness > 80:
		return "CRITICAL CORRUPTION"
	case madness > 60:
		return "SEMANTIC BREAKDOWN"
	case madness > 40:
		return "FRAGMENTING"
	default:
		return ""
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
