package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"marketpulse/internal/domain"
	"marketpulse/internal/platform/angelone"
)

// AuthService defines what the auth handler requires from the service layer.
// It is declared locally so the handler package does not depend on the
// concrete service implementation.
type AuthService interface {
	Login(ctx context.Context) (angelone.Session, error)
	Connected() bool
}

// AuthHandler serves the brokerage login endpoint.
type AuthHandler struct {
	auth   AuthService
	logger *slog.Logger
}

// NewAuthHandler creates an AuthHandler with the given service and logger.
func NewAuthHandler(auth AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

// Login establishes a brokerage session using the configured credentials.
// Credentials never travel over this endpoint; they come from configuration.
// POST /api/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	sess, err := h.auth.Login(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			writeError(w, http.StatusUnauthorized, "login rejected")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: login failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadGateway, "brokerage login failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "logged_in",
		"feedToken": sess.FeedToken,
	})
}
