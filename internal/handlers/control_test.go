package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/monologue-engine/pkg/events"
)

type fakeController struct {
	status events.Status
	text   string
	calls  []string
}

func (c *fakeController) Status() events.Status { return c.status }
func (c *fakeController) FullText() string      { return c.text }

func (c *fakeController) Pause() {
	c.calls = append(c.calls, "pause")
	c.status.Paused = true
}

func (c *fakeController) Resume() {
	c.calls = append(c.calls, "resume")
	c.status.Paused = false
}

func (c *fakeController) TogglePause() bool {
	c.calls = append(c.calls, "toggle")
	c.status.Paused = !c.status.Paused
	return c.status.Paused
}

func (c *fakeController) Reset() {
	c.calls = append(c.calls, "reset")
	c.status = events.Status{TargetGenerationCount: c.status.TargetGenerationCount}
}

func TestControlHandler_Actions(t *testing.T) {
	tests := []struct {
		action     string
		start      events.Status
		wantCall   string
		wantPaused bool
	}{
		{action: "pause", wantCall: "pause", wantPaused: true},
		{action: "resume", start: events.Status{Paused: true}, wantCall: "resume", wantPaused: false},
		{action: "toggle", wantCall: "toggle", wantPaused: true},
		{action: "toggle", start: events.Status{Paused: true}, wantCall: "toggle", wantPaused: false},
		{action: "reset", start: events.Status{GenerationCount: 12, MadnessLevel: 30}, wantCall: "reset"},
	}

	for _, tt := range tests {
		t.Run(tt.action, func(t *testing.T) {
			ctrl := &fakeController{status: tt.start}
			h := NewControlHandler(ctrl, testLogger())

			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/control/"+tt.action, nil))

			require.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, []string{tt.wantCall}, ctrl.calls)

			var got events.Status
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
			assert.Equal(t, tt.wantPaused, got.Paused)
			assert.Equal(t, ctrl.status, got)
		})
	}
}

func TestControlHandler_UnknownAction(t *testing.T) {
	ctrl := &fakeController{}
	h := NewControlHandler(ctrl, testLogger())

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/control/explode", nil))

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Empty(t, ctrl.calls)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "Unknown control action")
}

func TestControlHandler_MethodNotAllowed(t *testing.T) {
	ctrl := &fakeController{}
	h := NewControlHandler(ctrl, testLogger())

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/control/pause", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.Empty(t, ctrl.calls)
}
