package handlers

import (
	"log/slog"
	"net/http"
)

// StatusHandler serves the controller status snapshot and the transcript.
// Routes:
// GET /v1/status      - current status JSON
// GET /v1/transcript  - accumulated monologue as plain text
type StatusHandler struct {
	ctrl   Controller
	logger *slog.Logger
}

func NewStatusHandler(ctrl Controller, logger *slog.Logger) *StatusHandler {
	return &StatusHandler{
		ctrl:   ctrl,
		logger: logger,
	}
}

func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only GET is supported.")
		return
	}

	switch r.URL.Path {
	case "/v1/status":
		writeJSON(w, h.logger, http.StatusOK, h.ctrl.Status())
	case "/v1/transcript":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if _, err := w.Write([]byte(h.ctrl.FullText())); err != nil {
			h.logger.Error("Failed to write transcript", "error", err)
		}
	default:
		writeError(w, h.logger, http.StatusNotFound, "Not found.")
	}
}
