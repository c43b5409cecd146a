package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

const (
	componentHealthy   = "healthy"
	componentUnhealthy = "unhealthy"
	componentLoading   = "loading"
	componentDisabled  = "disabled"
)

type HealthResponse struct {
	Status     string         `json:"status"`
	Timestamp  time.Time      `json:"timestamp"`
	Service    string         `json:"service"`
	Components map[string]any `json:"components"`
}

// ModelStatus reports whether the generation backend is loaded.
type ModelStatus interface {
	Ready() bool
	ModelName() string
}

// Pinger checks a dependency's connection.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	model  ModelStatus
	events Pinger
	logger *slog.Logger
}

// NewHealthHandler creates a health handler. A nil events pinger reports the
// events component as disabled.
func NewHealthHandler(model ModelStatus, events Pinger, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		model:  model,
		events: events,
		logger: logger,
	}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.logger.Debug("Health check requested",
		"method", r.Method,
		"path", r.URL.Path,
		"remote_addr", r.RemoteAddr)

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	components := make(map[string]any)
	overallStatus := "healthy"

	llm := map[string]any{
		"model":  h.model.ModelName(),
		"status": componentHealthy,
	}
	if !h.model.Ready() {
		llm["status"] = componentLoading
		overallStatus = "degraded"
	}
	components["llm"] = llm

	switch {
	case h.events == nil:
		components["events"] = componentDisabled
	case h.events.Ping(ctx) != nil:
		h.logger.Warn("Events health check failed")
		components["events"] = componentUnhealthy
		overallStatus = "degraded"
	default:
		components["events"] = componentHealthy
	}

	response := HealthResponse{
		Status:     overallStatus,
		Timestamp:  time.Now(),
		Service:    "monologue-engine",
		Components: components,
	}

	statusCode := http.StatusOK
	if overallStatus != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, h.logger, statusCode, response)
}
