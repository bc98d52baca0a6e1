package handler

import (
	"log/slog"
	"net/http"
	"time"
)

// ConnectionChecker reports whether a live brokerage session exists.
type ConnectionChecker interface {
	Connected() bool
}

// HealthHandler serves the health-check endpoint.
type HealthHandler struct {
	broker ConnectionChecker
	logger *slog.Logger
}

// NewHealthHandler creates a HealthHandler with the provided logger.
func NewHealthHandler(broker ConnectionChecker, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{broker: broker, logger: logger}
}

// HealthCheck responds with a simple JSON status indicating the server is
// alive and whether the brokerage session is live.
// GET /api/health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	connected := false
	if h.broker != nil {
		connected = h.broker.Connected()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":          "ok",
		"brokerConnected": connected,
		"timestamp":       time.Now().UTC().Format(time.RFC3339),
	})
}
