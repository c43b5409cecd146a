package services

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/jwebster45206/monologue-engine/internal/config"
	"github.com/jwebster45206/monologue-engine/pkg/chat"
)

// maxStreamLine bounds a single NDJSON or SSE line from a provider.
const maxStreamLine = 1 << 20

// LLMService defines the interface for interacting with the LLM API
type LLMService interface {
	// InitModel prepares the model for use; it may block while the model downloads.
	InitModel(ctx context.Context, modelName string) error

	// ChatStream generates a reply, delivering text to onToken as it arrives.
	// It returns once the reply is complete.
	ChatStream(ctx context.Context, messages []chat.ChatMessage, opts chat.GenerationOptions, onToken func(string)) error
}

// NewLLMService constructs the provider selected in cfg.
func NewLLMService(cfg *config.Config, logger *slog.Logger) (LLMService, error) {
	switch cfg.LLMProvider {
	case config.ProviderOllama:
		return NewOllamaService(cfg.OllamaURL, cfg.ModelName, logger), nil
	case config.ProviderVenice:
		return NewVeniceService(cfg.VeniceAPIKey, cfg.ModelName, logger), nil
	case config.ProviderAnthropic:
		return NewAnthropicService(cfg.AnthropicAPIKey, cfg.ModelName, logger), nil
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.LLMProvider)
	}
}

// scanLines calls fn for every non-empty line of r until fn returns done or an error.
func scanLines(r io.Reader, fn func(line []byte) (done bool, err error)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxStreamLine)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		done, err := fn(line)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read stream: %w", err)
	}
	return nil
}
