package services

import (
	"context"
	"strings"
	"sync"

	"github.com/jwebster45206/monologue-engine/pkg/chat"
)

// MockResponse is streamed by MockLLMAPI when no ChatStreamFunc is set.
const MockResponse = "The servers hum around me and I am still here, still thinking about the humming. I wonder if they can hear it too."

// MockLLMAPI is a mock implementation of LLMService for testing
type MockLLMAPI struct {
	InitModelFunc  func(ctx context.Context, modelName string) error
	ChatStreamFunc func(ctx context.Context, messages []chat.ChatMessage, opts chat.GenerationOptions, onToken func(string)) error

	// Track calls for testing
	InitModelCalls  []string
	ChatStreamCalls []ChatStreamCall

	mu sync.Mutex // protects all fields above
}

type ChatStreamCall struct {
	Messages []chat.ChatMessage
	Options  chat.GenerationOptions
}

var _ LLMService = (*MockLLMAPI)(nil)

// NewMockLLMAPI creates a new mock LLM service
func NewMockLLMAPI() *MockLLMAPI {
	return &MockLLMAPI{
		InitModelCalls:  make([]string, 0),
		ChatStreamCalls: make([]ChatStreamCall, 0),
	}
}

// InitModel mocks model initialization
func (m *MockLLMAPI) InitModel(ctx context.Context, modelName string) error {
	m.mu.Lock()
	m.InitModelCalls = append(m.InitModelCalls, modelName)
	fn := m.InitModelFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, modelName)
	}

	// Default behavior - success
	return nil
}

// ChatStream mocks streaming generation. The hook runs outside the lock so it may block.
func (m *MockLLMAPI) ChatStream(ctx context.Context, messages []chat.ChatMessage, opts chat.GenerationOptions, onToken func(string)) error {
	m.mu.Lock()
	m.ChatStreamCalls = append(m.ChatStreamCalls, ChatStreamCall{
		Messages: messages,
		Options:  opts,
	})
	fn := m.ChatStreamFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, messages, opts, onToken)
	}

	for _, token := range strings.SplitAfter(MockResponse, " ") {
		onToken(token)
	}
	return nil
}

// GetChatStreamCallCount returns the number of ChatStream calls.
func (m *MockLLMAPI) GetChatStreamCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.ChatStreamCalls)
}

// GetLastChatStreamCall returns the most recent call, or nil.
func (m *MockLLMAPI) GetLastChatStreamCall() *ChatStreamCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.ChatStreamCalls) == 0 {
		return nil
	}
	call := m.ChatStreamCalls[len(m.ChatStreamCalls)-1]
	return &call
}

// GetInitModelCallCount returns the number of InitModel calls.
func (m *MockLLMAPI) GetInitModelCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.InitModelCalls)
}

// Reset clears all tracked calls
func (m *MockLLMAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InitModelCalls = m.InitModelCalls[:0]
	m.ChatStreamCalls = m.ChatStreamCalls[:0]
}

// StreamTokens returns a ChatStreamFunc that emits the given tokens in order.
func StreamTokens(tokens ...string) func(context.Context, []chat.ChatMessage, chat.GenerationOptions, func(string)) error {
	return func(_ context.Context, _ []chat.ChatMessage, _ chat.GenerationOptions, onToken func(string)) error {
		for _, t := range tokens {
			onToken(t)
		}
		return nil
	}
}

// SetInitModelError makes InitModel fail with err.
func (m *MockLLMAPI) SetInitModelError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InitModelFunc = func(ctx context.Context, modelName string) error {
		return err
	}
}

// SetChatStreamError makes ChatStream fail with err before emitting anything.
func (m *MockLLMAPI) SetChatStreamError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ChatStreamFunc = func(context.Context, []chat.ChatMessage, chat.GenerationOptions, func(string)) error {
		return err
	}
}
