package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"marketpulse/internal/domain"
)

// MarketService defines what the market handler requires from the service
// layer: candle history and scrip search.
type MarketService interface {
	History(ctx context.Context, symbol, interval string, days int) ([]domain.Candle, error)
	Search(ctx context.Context, query string) ([]domain.Scrip, error)
}

// MarketHandler serves candle history and scrip search endpoints.
type MarketHandler struct {
	markets MarketService
	logger  *slog.Logger
}

// NewMarketHandler creates a MarketHandler with the given service and logger.
func NewMarketHandler(markets MarketService, logger *slog.Logger) *MarketHandler {
	return &MarketHandler{markets: markets, logger: logger}
}

// GetHistory returns daily candles for a symbol. Unknown symbols are 404;
// a known symbol with no data returns an empty list.
// GET /api/history/{symbol}?interval=ONE_DAY&days=30
func (h *MarketHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	symbol := pathParam(r, "symbol")
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "missing symbol")
		return
	}

	interval := r.URL.Query().Get("interval")
	days := queryInt(r, "days", 30)

	candles, err := h.markets.History(r.Context(), symbol, interval, days)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "symbol not found")
		case errors.Is(err, domain.ErrNotConnected):
			writeError(w, http.StatusServiceUnavailable, "brokerage session not established")
		default:
			h.logger.ErrorContext(r.Context(), "handler: history failed",
				slog.String("symbol", symbol),
				slog.String("error", err.Error()),
			)
			writeError(w, http.StatusInternalServerError, "failed to load history")
		}
		return
	}

	if candles == nil {
		candles = []domain.Candle{}
	}
	writeJSON(w, http.StatusOK, candles)
}

// Search returns scrips matching the query, exact matches first, then prefix
// matches, then everything else the exchange returned.
// GET /api/search?q=TCS
func (h *MarketHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "missing query parameter q")
		return
	}

	scrips, err := h.markets.Search(r.Context(), query)
	if err != nil {
		if errors.Is(err, domain.ErrNotConnected) {
			writeError(w, http.StatusServiceUnavailable, "brokerage session not established")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: search failed",
			slog.String("query", query),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}

	if scrips == nil {
		scrips = []domain.Scrip{}
	}
	writeJSON(w, http.StatusOK, scrips)
}
