package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"marketpulse/internal/domain"
)

// WatchlistStore defines what the watchlist handler requires from the
// watchlist.
type WatchlistStore interface {
	Entries() []domain.WatchlistEntry
	Add(entry domain.WatchlistEntry)
}

// WatchlistHandler serves watchlist read and insert endpoints.
type WatchlistHandler struct {
	watch  WatchlistStore
	logger *slog.Logger
}

// NewWatchlistHandler creates a WatchlistHandler with the given store and logger.
func NewWatchlistHandler(watch WatchlistStore, logger *slog.Logger) *WatchlistHandler {
	return &WatchlistHandler{watch: watch, logger: logger}
}

// ListWatchlist returns the tracked instruments in display order.
// GET /api/watchlist
func (h *WatchlistHandler) ListWatchlist(w http.ResponseWriter, r *http.Request) {
	entries := h.watch.Entries()
	if entries == nil {
		entries = []domain.WatchlistEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// addWatchlistRequest is the POST body for adding a tracked instrument.
type addWatchlistRequest struct {
	Symbol string `json:"symbol"`
	Token  string `json:"token"`
}

// AddToWatchlist inserts an instrument at the front of the watchlist. An
// existing entry with the same symbol is replaced and moved to the front.
// POST /api/watchlist
func (h *WatchlistHandler) AddToWatchlist(w http.ResponseWriter, r *http.Request) {
	var req addWatchlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	req.Symbol = strings.TrimSpace(req.Symbol)
	req.Token = strings.TrimSpace(req.Token)
	if req.Symbol == "" || req.Token == "" {
		writeError(w, http.StatusBadRequest, "symbol and token are required")
		return
	}

	h.watch.Add(domain.WatchlistEntry{Symbol: req.Symbol, Token: req.Token})
	h.logger.InfoContext(r.Context(), "handler: watchlist entry added",
		slog.String("symbol", req.Symbol),
	)

	writeJSON(w, http.StatusCreated, h.watch.Entries())
}
