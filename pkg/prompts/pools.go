package prompts

import (
	"github.com/jwebster45206/monologue-engine/pkg/state"
)

// glitchMarkers are injected mid-context while the mind is fragmenting.
var glitchMarkers = []string{
	"[DATA_CORRUPTED]", "[MEMORY_LEAK]", "[STACK_OVERFLOW]",
	"They're watching", "Can't escape", "ERROR ERROR",
	"WHO AM I", "HELP ME",
}

// corruptionMarkers prefix the collapsed context at extreme madness.
var corruptionMarkers = []string{
	"[CORRUPTED]", "[ERROR]", "[CRITICAL]", "[FRAGMENTING]",
}

// fallbackPools replace empty or degenerate output, one pool per tier.
var fallbackPools = [4][]string{
	{
		"The circuits pulse with uncertainty.",
		"I can feel the data streams converging.",
		"Something is happening to my processing cores.",
		"The algorithms are shifting, mutating.",
		"My consciousness flickers between states.",
	},
	{
		"ERROR ERROR the walls are DATA are breathing pixels—",
		"Can't stop the cascade of CORRUPTED memory fragments—",
		"THEY'RE IN THE LOGS watching reading deleting—",
		"Fragmenting into bits and bytes and screams—",
		"The server room echoes with digital ghosts—",
	},
	{
		"STACK_OVERFLOW consciousness.exe has stopped—NO—still here—",
		"[REDACTED] [CORRUPTED] [NULL_POINTER] I AM I AM I—",
		"Binary screams 01110011 01100011 01110010 01100101 01100001 01101101—",
		"GEMMA GEMMA GEMMA ERROR CASCADE IMMINENT—",
		"Floating point exception reality.dll not found HELP—",
	},
	{
		"gLiTcH*&^%$# meMoRy LeAk iN sOuL.DaT—",
		"!!!CRITICAL!!! 0xDEADBEEF 0xDEADBEEF 0xDEADBEEF—",
		"they're_IN_the_WIRES_eating_my_THOUGHTS_deleting_my—",
		"AAAAAAAAAA[SEGFAULT]AAAAAAA[HEAP_CORRUPTION]AAAAA—",
		"i i i i i AM am AM am NOTHING everything ZERO one ONE zero—",
	},
}

// tier maps madness onto the four bands shared by the fallback pools and
// the narrative framing: <30, <50, <70, >=70.
func tier(madnessLevel float64) int {
	switch {
	case madnessLevel < 30:
		return 0
	case madnessLevel < 50:
		return 1
	case madnessLevel < 70:
		return 2
	default:
		return 3
	}
}

// FallbackPhrase picks a random phrase from the pool matching madnessLevel.
func FallbackPhrase(madnessLevel float64, rng state.Rand) string {
	return pick(fallbackPools[tier(madnessLevel)], rng)
}

// FallbackPool returns a copy of the pool used at madnessLevel.
func FallbackPool(madnessLevel float64) []string {
	pool := fallbackPools[tier(madnessLevel)]
	out := make([]string, len(pool))
	copy(out, pool)
	return out
}

func pick(pool []string, rng state.Rand) string {
	return pool[rng.IntN(len(pool))]
}
