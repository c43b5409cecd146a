package prompts

import (
	"math"

	"github.com/jwebster45206/monologue-engine/pkg/chat"
	"github.com/jwebster45206/monologue-engine/pkg/state"
)

const (
	baseTemperature   = 0.7
	temperatureSpread = 0.8
	temperatureJitter = 0.1
	MaxTemperature    = 1.8

	baseTopP  = 0.85
	topPDrop  = 0.2
	MinTopP   = 0.7
	baseRepPn = 1.3
	repPnDrop = 0.3
	MinRepPn  = 1.0
)

// TokenRange returns the inclusive bounds for the output length at madnessLevel.
func TokenRange(madnessLevel float64) (minTokens, maxTokens int) {
	minTokens, maxTokens = 50, 150
	if madnessLevel > 50 {
		minTokens = 30
	}
	if madnessLevel > 70 {
		maxTokens = 200
	}
	return minTokens, maxTokens
}

// SamplingFor derives generation options from madnessLevel: hotter, looser
// and less repetition-averse as the mind decays.
func SamplingFor(madnessLevel float64, rng state.Rand) chat.GenerationOptions {
	m := madnessLevel / 100

	minTokens, maxTokens := TokenRange(madnessLevel)
	jitter := rng.Float64()*2*temperatureJitter - temperatureJitter

	return chat.GenerationOptions{
		MaxTokens:         minTokens + rng.IntN(maxTokens-minTokens+1),
		Temperature:       math.Min(MaxTemperature, baseTemperature+m*temperatureSpread+jitter),
		TopP:              math.Max(MinTopP, baseTopP-m*topPDrop),
		RepetitionPenalty: math.Max(MinRepPn, baseRepPn-m*repPnDrop),
	}
}
