package chat

import (
	"fmt"
)

const (
	ChatRoleUser   = "user"      // Narrative context
	ChatRoleAgent  = "assistant" // Model output
	ChatRoleSystem = "system"    // Tiered instruction
)

// ChatMessage represents a single role-tagged message sent to the LLM.
// The shape follows the Ollama/OpenAI chat APIs.
type ChatMessage struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// GenerationOptions are the sampling parameters for a single generation call.
type GenerationOptions struct {
	MaxTokens         int     `json:"max_tokens"`
	Temperature       float64 `json:"temperature"`
	TopP              float64 `json:"top_p"`
	RepetitionPenalty float64 `json:"repetition_penalty"`
}

// Validate reports options that no provider would accept.
func (o GenerationOptions) Validate() error {
	if o.MaxTokens <= 0 {
		return fmt.Errorf("max tokens must be positive, got %d", o.MaxTokens)
	}
	if o.Temperature < 0 {
		return fmt.Errorf("temperature cannot be negative, got %.2f", o.Temperature)
	}
	if o.TopP <= 0 || o.TopP > 1 {
		return fmt.Errorf("top_p must be in (0,1], got %.2f", o.TopP)
	}
	return nil
}

// NewPrompt builds the two-message conversation used for every cycle:
// a system instruction followed by the user context.
func NewPrompt(systemPrompt, context string) []ChatMessage {
	return []ChatMessage{
		{Role: ChatRoleSystem, Content: systemPrompt},
		{Role: ChatRoleUser, Content: context},
	}
}

// TotalLength returns the combined content length of the messages.
func TotalLength(messages []ChatMessage) int {
	total := 0
	for _, m := range messages {
		total += len(m.Content)
	}
	return total
}
