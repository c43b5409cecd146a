package chat

import (
	"testing"
)

func TestGenerationOptions_Validate(t *testing.T) {
	tests := []struct {
		name    string
		opts    GenerationOptions
		wantErr bool
	}{
		{
			name: "typical options",
			opts: GenerationOptions{MaxTokens: 120, Temperature: 0.9, TopP: 0.8, RepetitionPenalty: 1.2},
		},
		{
			name:    "zero max tokens",
			opts:    GenerationOptions{MaxTokens: 0, Temperature: 0.9, TopP: 0.8},
			wantErr: true,
		},
		{
			name:    "negative temperature",
			opts:    GenerationOptions{MaxTokens: 50, Temperature: -0.1, TopP: 0.8},
			wantErr: true,
		},
		{
			name:    "top_p above one",
			opts:    GenerationOptions{MaxTokens: 50, Temperature: 0.7, TopP: 1.2},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if tt.wantErr && err == nil {
				t.Errorf("Expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
		})
	}
}

func TestNewPrompt(t *testing.T) {
	msgs := NewPrompt("be anxious", "Gemma exists.")

	if len(msgs) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Role != ChatRoleSystem || msgs[0].Content != "be anxious" {
		t.Errorf("Unexpected system message: %+v", msgs[0])
	}
	if msgs[1].Role != ChatRoleUser || msgs[1].Content != "Gemma exists." {
		t.Errorf("Unexpected user message: %+v", msgs[1])
	}
	if got := TotalLength(msgs); got != len("be anxious")+len("Gemma exists.") {
		t.Errorf("Unexpected total length %d", got)
	}
}
