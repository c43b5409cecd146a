package handlers

import (
	"log/slog"
	"net/http"
	"strings"
)

// ControlHandler applies pause/resume/reset controls.
// Routes:
// POST /v1/control/pause
// POST /v1/control/resume
// POST /v1/control/toggle
// POST /v1/control/reset
type ControlHandler struct {
	ctrl   Controller
	logger *slog.Logger
}

func NewControlHandler(ctrl Controller, logger *slog.Logger) *ControlHandler {
	return &ControlHandler{
		ctrl:   ctrl,
		logger: logger,
	}
}

func (h *ControlHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.logger.Warn("Method not allowed for control endpoint",
			"method", r.Method,
			"path", r.URL.Path)
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only POST is supported.")
		return
	}

	action := strings.TrimPrefix(r.URL.Path, "/v1/control/")
	switch action {
	case "pause":
		h.ctrl.Pause()
	case "resume":
		h.ctrl.Resume()
	case "toggle":
		h.ctrl.TogglePause()
	case "reset":
		h.ctrl.Reset()
	default:
		writeError(w, h.logger, http.StatusNotFound, "Unknown control action. Expected pause, resume, toggle or reset.")
		return
	}

	h.logger.Info("Control applied", "action", action, "remote_addr", r.RemoteAddr)
	writeJSON(w, h.logger, http.StatusOK, h.ctrl.Status())
}
