package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/jwebster45206/monologue-engine/pkg/chat"
)

const (
	veniceBaseURL = "https://api.venice.ai/api/v1"

	sseDataPrefix = "data: "
	sseDone       = "[DONE]"
)

// VeniceService implements LLMService for Venice AI
type VeniceService struct {
	apiKey     string
	modelName  string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

type VeniceParameters struct {
	IncludeVeniceSystemPrompt bool   `json:"include_venice_system_prompt"`
	EnableWebSearch           string `json:"enable_web_search"`
}

// VeniceChatRequest represents the request structure for Venice AI chat completions
type VeniceChatRequest struct {
	Model             string             `json:"model"`
	Messages          []chat.ChatMessage `json:"messages"`
	Temperature       float64            `json:"temperature"`
	TopP              float64            `json:"top_p,omitempty"`
	MaxTokens         int                `json:"max_tokens,omitempty"`
	RepetitionPenalty float64            `json:"repetition_penalty,omitempty"`
	Stream            bool               `json:"stream"`
	VeniceParameters  VeniceParameters   `json:"venice_parameters"`
}

// VeniceStreamChunk is one SSE data payload of a streaming completion
type VeniceStreamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewVeniceService creates a new Venice AI service
func NewVeniceService(apiKey string, modelName string, logger *slog.Logger) *VeniceService {
	return &VeniceService{
		apiKey:    apiKey,
		modelName: modelName,
		baseURL:   veniceBaseURL,
		// No client timeout; streaming requests are bounded by the caller's context.
		httpClient: &http.Client{},
		logger:     logger,
	}
}

// InitModel initializes the model (Venice AI doesn't require explicit model initialization)
func (v *VeniceService) InitModel(ctx context.Context, modelName string) error {
	return nil
}

// ChatStream streams a chat completion, reading SSE data lines until [DONE]
func (v *VeniceService) ChatStream(ctx context.Context, messages []chat.ChatMessage, opts chat.GenerationOptions, onToken func(string)) error {
	veniceReq := VeniceChatRequest{
		Model:             v.modelName,
		Messages:          messages,
		Temperature:       opts.Temperature,
		TopP:              opts.TopP,
		MaxTokens:         opts.MaxTokens,
		RepetitionPenalty: opts.RepetitionPenalty,
		Stream:            true,
		VeniceParameters: VeniceParameters{
			IncludeVeniceSystemPrompt: false,
			EnableWebSearch:           "off",
		},
	}

	reqBody, err := json.Marshal(veniceReq)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.baseURL+"/chat/completions", bytes.NewReader(reqBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+v.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	v.logger.Debug("Making Venice chat request",
		"model", v.modelName,
		"message_count", len(messages),
		"max_tokens", opts.MaxTokens)

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		v.logger.Error("Venice API returned error", "status_code", resp.StatusCode, "response_body", string(body))
		return fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	sawDone := false
	err = scanLines(resp.Body, func(line []byte) (bool, error) {
		payload, ok := bytes.CutPrefix(line, []byte(sseDataPrefix))
		if !ok {
			// comments, event names and retry hints
			return false, nil
		}
		if string(bytes.TrimSpace(payload)) == sseDone {
			sawDone = true
			return true, nil
		}

		var chunk VeniceStreamChunk
		if err := json.Unmarshal(payload, &chunk); err != nil {
			return false, fmt.Errorf("failed to parse stream chunk: %w", err)
		}
		if chunk.Error != nil {
			return false, fmt.Errorf("API error: %s", chunk.Error.Message)
		}
		for _, choice := range chunk.Choices {
			if choice.Delta.Content != "" {
				onToken(choice.Delta.Content)
			}
		}
		return false, nil
	})
	if err != nil {
		return err
	}
	if !sawDone {
		return fmt.Errorf("venice stream ended before completion")
	}
	return nil
}
