package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
)

type fakeModel struct {
	ready bool
	name  string
}

func (m fakeModel) Ready() bool       { return m.ready }
func (m fakeModel) ModelName() string { return m.name }

type fakePinger struct {
	err error
}

func (p fakePinger) Ping(ctx context.Context) error { return p.err }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError, // Reduce noise in tests
	}))
}

func TestHealthHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name           string
		model          fakeModel
		events         Pinger
		expectedStatus int
		expectedHealth string
		expectedLLM    string
		expectedEvents string
	}{
		{
			name:           "all healthy",
			model:          fakeModel{ready: true, name: "gemma3:1b"},
			events:         fakePinger{},
			expectedStatus: http.StatusOK,
			expectedHealth: "healthy",
			expectedLLM:    "healthy",
			expectedEvents: "healthy",
		},
		{
			name:           "events disabled",
			model:          fakeModel{ready: true, name: "gemma3:1b"},
			events:         nil,
			expectedStatus: http.StatusOK,
			expectedHealth: "healthy",
			expectedLLM:    "healthy",
			expectedEvents: "disabled",
		},
		{
			name:           "unhealthy events",
			model:          fakeModel{ready: true, name: "gemma3:1b"},
			events:         fakePinger{err: errors.New("connection failed")},
			expectedStatus: http.StatusServiceUnavailable,
			expectedHealth: "degraded",
			expectedLLM:    "healthy",
			expectedEvents: "unhealthy",
		},
		{
			name:           "model still loading",
			model:          fakeModel{ready: false, name: "gemma3:1b"},
			events:         fakePinger{},
			expectedStatus: http.StatusServiceUnavailable,
			expectedHealth: "degraded",
			expectedLLM:    "loading",
			expectedEvents: "healthy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHealthHandler(tt.model, tt.events, testLogger())

			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, rr.Code)
			}

			var response HealthResponse
			if err := json.Unmarshal(rr.Body.Bytes(), &response); err != nil {
				t.Fatalf("failed to unmarshal response: %v", err)
			}

			if response.Status != tt.expectedHealth {
				t.Errorf("expected health %q, got %q", tt.expectedHealth, response.Status)
			}
			if response.Service != "monologue-engine" {
				t.Errorf("expected service monologue-engine, got %q", response.Service)
			}

			llm, ok := response.Components["llm"].(map[string]any)
			if !ok {
				t.Fatalf("llm component missing or wrong type: %#v", response.Components["llm"])
			}
			if llm["status"] != tt.expectedLLM {
				t.Errorf("expected llm status %q, got %v", tt.expectedLLM, llm["status"])
			}
			if llm["model"] != tt.model.name {
				t.Errorf("expected model %q, got %v", tt.model.name, llm["model"])
			}

			if response.Components["events"] != tt.expectedEvents {
				t.Errorf("expected events %q, got %v", tt.expectedEvents, response.Components["events"])
			}
		})
	}
}
