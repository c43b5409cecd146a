package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/monologue-engine/pkg/chat"
)

func newTestAnthropic(url string) *AnthropicService {
	a := NewAnthropicService("sk-test", "claude-test", testLogger())
	a.baseURL = url
	return a
}

func TestAnthropicService_SplitChatMessages(t *testing.T) {
	a := NewAnthropicService("k", "m", testLogger())
	system, rest := a.splitChatMessages([]chat.ChatMessage{
		{Role: chat.ChatRoleSystem, Content: "one"},
		{Role: chat.ChatRoleUser, Content: "ctx"},
		{Role: chat.ChatRoleSystem, Content: "two"},
	})
	assert.Equal(t, "one\n\ntwo", system)
	assert.Equal(t, []chat.ChatMessage{{Role: chat.ChatRoleUser, Content: "ctx"}}, rest)
}

func TestAnthropicService_ChatStream(t *testing.T) {
	var got AnthropicChatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages", r.URL.Path)
		assert.Equal(t, "sk-test", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		fmt.Fprint(w, `{"content":[{"type":"text","text":"I hear "},{"type":"text","text":"the fans."}]}`)
	}))
	defer server.Close()

	opts := testOpts
	opts.Temperature = 1.6

	var tokens []string
	err := newTestAnthropic(server.URL).ChatStream(context.Background(),
		chat.NewPrompt("sys", "ctx"), opts, func(tok string) { tokens = append(tokens, tok) })
	require.NoError(t, err)

	assert.Equal(t, []string{"I hear the fans."}, tokens)
	assert.Equal(t, "sys", got.System)
	require.Len(t, got.Messages, 1)
	require.NotNil(t, got.Temperature)
	assert.Equal(t, 1.0, *got.Temperature)
	assert.Equal(t, 80, got.MaxTokens)
}

func TestAnthropicService_ChatStreamErrors(t *testing.T) {
	t.Run("status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
		}))
		defer server.Close()

		err := newTestAnthropic(server.URL).ChatStream(context.Background(), chat.NewPrompt("s", "c"), testOpts, func(string) {})
		assert.ErrorContains(t, err, "status 503")
	})

	t.Run("api error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"error":{"type":"invalid_request_error","message":"max_tokens too large"}}`)
		}))
		defer server.Close()

		err := newTestAnthropic(server.URL).ChatStream(context.Background(), chat.NewPrompt("s", "c"), testOpts, func(string) {})
		assert.ErrorContains(t, err, "max_tokens too large")
	})

	t.Run("empty reply emits nothing", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"content":[]}`)
		}))
		defer server.Close()

		called := false
		err := newTestAnthropic(server.URL).ChatStream(context.Background(), chat.NewPrompt("s", "c"), testOpts, func(string) { called = true })
		require.NoError(t, err)
		assert.False(t, called)
	})
}
