package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/jwebster45206/monologue-engine/pkg/events"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// Controller is the part of the progression controller exposed over HTTP.
type Controller interface {
	Status() events.Status
	FullText() string
	Pause()
	Resume()
	TogglePause() bool
	Reset()
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, logger *slog.Logger, status int, msg string) {
	writeJSON(w, logger, status, ErrorResponse{Error: msg})
}
