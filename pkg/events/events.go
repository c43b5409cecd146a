package events

import (
	"time"
)

// EventType identifies what happened in the monologue session.
type EventType string

const (
	EventTypeFragmentAccepted EventType = "fragment.accepted"
	EventTypeNarrativeReset   EventType = "narrative.reset"
	EventTypeStatusUpdated    EventType = "status.updated"
	EventTypeGenerationFailed EventType = "generation.failed"
)

// Display states shown in the status panel.
const (
	StateFragmenting = "FRAGMENTING"
	StateSuspended   = "SUSPENDED"
	StateCorrupted   = "CORRUPTED"
	StateTerminated  = "TERMINATED"
	StateIdle        = "IDLE"
)

// Event is published to the presentation layer.
type Event struct {
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id,omitempty"`

	// Words are the display tokens of an accepted fragment or a reset seed,
	// paragraph-break markers included.
	Words []string `json:"words,omitempty"`

	Status *Status   `json:"status,omitempty"`
	Error  string    `json:"error,omitempty"`
	Time   time.Time `json:"time"`
}

// Status is a snapshot of the session for status displays.
type Status struct {
	MadnessLevel          float64   `json:"madness_level"`
	CoherenceScore        int       `json:"coherence_score"`
	GenerationCount       int       `json:"generation_count"`
	TargetGenerationCount int       `json:"target_generation_count"`
	ConsecutiveFailures   int       `json:"consecutive_failures"`
	Paused                bool      `json:"paused"`
	Generating            bool      `json:"generating"`
	Complete              bool      `json:"complete"`
	Error                 string    `json:"error,omitempty"`
	RetryCount            int       `json:"retry_count"`
	MaxRetries            int       `json:"max_retries"`
	Severity              string    `json:"severity,omitempty"`
	State                 string    `json:"state"`
	LastGeneration        time.Time `json:"last_generation,omitzero"`
}

// DisplayState derives the status-panel label. Generating wins over
// paused so an in-flight call still reads as active after a pause.
func (s Status) DisplayState() string {
	switch {
	case s.Generating:
		return StateFragmenting
	case s.Paused:
		return StateSuspended
	case s.Error != "":
		return StateCorrupted
	case s.Complete:
		return StateTerminated
	default:
		return StateIdle
	}
}

// Sink receives events as they happen. Implementations must not block the caller for long.
type Sink interface {
	Publish(e Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(e Event)

func (f SinkFunc) Publish(e Event) { f(e) }

// Discard drops every event.
var Discard Sink = SinkFunc(func(Event) {})
