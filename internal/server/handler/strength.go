package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"marketpulse/internal/domain"
)

// StrengthService defines what the strength handler requires from the
// service layer.
type StrengthService interface {
	RunCycle(ctx context.Context) domain.StrengthCycle
	HistoryBySymbol(ctx context.Context, symbol string, limit int) ([]domain.StrengthRecord, error)
}

// StrengthHandler serves market-strength endpoints.
type StrengthHandler struct {
	strength StrengthService
	logger   *slog.Logger
}

// NewStrengthHandler creates a StrengthHandler with the given service and logger.
func NewStrengthHandler(strength StrengthService, logger *slog.Logger) *StrengthHandler {
	return &StrengthHandler{strength: strength, logger: logger}
}

// GetMarketStrength runs one refresh cycle over the whole watchlist and
// returns the per-symbol results. The cycle never fails; entries that could
// not be fetched degrade to synthetic data.
// GET /api/market-strength
func (h *StrengthHandler) GetMarketStrength(w http.ResponseWriter, r *http.Request) {
	cycle := h.strength.RunCycle(r.Context())
	writeJSON(w, http.StatusOK, cycle)
}

// GetStrengthHistory returns persisted strength observations for one symbol,
// newest first. 404 when persistence is disabled.
// GET /api/strength-history/{symbol}?limit=100
func (h *StrengthHandler) GetStrengthHistory(w http.ResponseWriter, r *http.Request) {
	symbol := pathParam(r, "symbol")
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "missing symbol")
		return
	}
	limit := queryInt(r, "limit", 100)

	records, err := h.strength.HistoryBySymbol(r.Context(), symbol, limit)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "strength history not available")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: strength history failed",
			slog.String("symbol", symbol),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to load strength history")
		return
	}

	if records == nil {
		records = []domain.StrengthRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}
