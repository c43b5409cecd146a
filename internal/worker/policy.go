package worker

import (
	"math"
	"time"
)

const (
	// MinFragmentLength is the trimmed raw length below which a fallback phrase is used.
	MinFragmentLength = 10
	// MinAcceptLength is the sanitized length a fragment must exceed to be accepted.
	MinAcceptLength = 20
	// AcceptAllMadness is the madness above which any long enough fragment is accepted.
	AcceptAllMadness = 60

	MaxRetries = 3
	RetryDelay = 3 * time.Second

	// Cycles scoring at least DelayScoreThreshold wait SlowDelay; others retry after FastDelay.
	DelayScoreThreshold = 40
	SlowDelay           = 2 * time.Second
	FastDelay           = 1 * time.Second
)

// Threshold is the minimum coherence score accepted at a madness level.
// It relaxes piecewise as madness grows and bottoms out at zero.
func Threshold(madness float64) float64 {
	switch {
	case madness < 30:
		return 40 - 0.33*madness
	case madness < 50:
		return 30 - 0.75*(madness-30)
	case madness < 70:
		return 15 - 0.5*(madness-50)
	default:
		return math.Max(0, 5-0.17*(madness-70))
	}
}

// ShouldAccept decides whether a sanitized fragment joins the narrative.
func ShouldAccept(score, madness float64, sanitizedLength int) bool {
	return (score >= Threshold(madness) || madness > AcceptAllMadness) && sanitizedLength > MinAcceptLength
}

// MadnessMultiplier scales the base madness step by the current level:
// a quick start, then a slowing crawl towards the end.
func MadnessMultiplier(madness float64) float64 {
	switch {
	case madness < 10:
		return 1.5
	case madness < 30:
		return 1.2
	case madness < 50:
		return 1.0
	case madness < 70:
		return 0.9
	case madness < 90:
		return 0.8
	default:
		return 0.7
	}
}

// NextDelay is the pause before the next cycle given the last fragment's score.
func NextDelay(score float64) time.Duration {
	if score >= DelayScoreThreshold {
		return SlowDelay
	}
	return FastDelay
}
