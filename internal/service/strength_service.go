package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"marketpulse/internal/domain"
	"marketpulse/internal/notify"
	"marketpulse/internal/refresher"
)

// StrengthChannel is the signal-bus channel that completed cycles are
// published on; the WebSocket hub relays it to connected clients.
const StrengthChannel = "strength"

// StrengthService runs refresh cycles and fans the results out to the cache,
// the signal bus, the optional history store, and the notifier.
type StrengthService struct {
	refresher *refresher.Refresher
	cache     domain.StrengthCache
	bus       domain.SignalBus
	history   domain.StrengthHistoryStore // nil when persistence is disabled
	notifier  *notify.Notifier            // nil when notifications are disabled
	logger    *slog.Logger

	mu            sync.Mutex
	lastSentiment map[string]domain.Sentiment
}

// NewStrengthService creates a StrengthService. history and notifier may be
// nil; the corresponding fan-out steps are skipped.
func NewStrengthService(
	r *refresher.Refresher,
	cache domain.StrengthCache,
	bus domain.SignalBus,
	history domain.StrengthHistoryStore,
	notifier *notify.Notifier,
	logger *slog.Logger,
) *StrengthService {
	return &StrengthService{
		refresher:     r,
		cache:         cache,
		bus:           bus,
		history:       history,
		notifier:      notifier,
		logger:        logger.With(slog.String("component", "strength_service")),
		lastSentiment: make(map[string]domain.Sentiment),
	}
}

// RunCycle executes one refresh over the whole watchlist and distributes the
// results. It never fails: fan-out errors are logged and swallowed so the
// caller always gets a complete cycle.
func (s *StrengthService) RunCycle(ctx context.Context) domain.StrengthCycle {
	cycle := domain.StrengthCycle{
		CycleID:   uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Results:   s.refresher.Refresh(ctx),
	}

	if s.cache != nil {
		if err := s.cache.SetCycle(ctx, cycle); err != nil {
			s.logger.WarnContext(ctx, "cache cycle failed",
				slog.String("cycle_id", cycle.CycleID),
				slog.String("error", err.Error()),
			)
		}
	}

	if s.bus != nil {
		if payload, err := json.Marshal(cycle); err == nil {
			if pubErr := s.bus.Publish(ctx, StrengthChannel, payload); pubErr != nil {
				s.logger.WarnContext(ctx, "publish cycle failed",
					slog.String("cycle_id", cycle.CycleID),
					slog.String("error", pubErr.Error()),
				)
			}
		}
	}

	if s.history != nil {
		if err := s.history.InsertCycle(ctx, cycle); err != nil {
			s.logger.WarnContext(ctx, "record cycle failed",
				slog.String("cycle_id", cycle.CycleID),
				slog.String("error", err.Error()),
			)
		}
	}

	s.notifySentimentFlips(ctx, cycle.Results)

	return cycle
}

// Run executes refresh cycles on a fixed cadence until the context is
// cancelled. When active is non-nil, ticks where it reports false are
// skipped (used to pause refreshing while no streaming clients are
// connected).
func (s *StrengthService) Run(ctx context.Context, interval time.Duration, active func() bool) error {
	if interval <= 0 {
		interval = time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if active != nil && !active() {
				continue
			}
			s.RunCycle(ctx)
		}
	}
}

// LatestCycle returns the most recently cached cycle.
func (s *StrengthService) LatestCycle(ctx context.Context) (domain.StrengthCycle, error) {
	if s.cache == nil {
		return domain.StrengthCycle{}, domain.ErrNotFound
	}
	return s.cache.GetCycle(ctx)
}

// HistoryBySymbol returns persisted strength observations for one symbol,
// newest first.
func (s *StrengthService) HistoryBySymbol(ctx context.Context, symbol string, limit int) ([]domain.StrengthRecord, error) {
	if s.history == nil {
		return nil, fmt.Errorf("strength history store disabled: %w", domain.ErrNotFound)
	}
	return s.history.ListBySymbol(ctx, symbol, limit)
}

// notifySentimentFlips emits a notification for every symbol whose sentiment
// changed since the previous cycle.
func (s *StrengthService) notifySentimentFlips(ctx context.Context, results []domain.StrengthResult) {
	s.mu.Lock()
	flips := make([]domain.StrengthResult, 0)
	for _, res := range results {
		prev, seen := s.lastSentiment[res.Symbol]
		s.lastSentiment[res.Symbol] = res.Sentiment
		if seen && prev != res.Sentiment {
			flips = append(flips, res)
		}
	}
	s.mu.Unlock()

	if s.notifier == nil {
		return
	}
	for _, res := range flips {
		msg := fmt.Sprintf("%s flipped to %s (strength %.2f%%, ltp %.2f, source %s)",
			res.Symbol, res.Sentiment, res.StrengthPercent, res.LTP, res.Source)
		if err := s.notifier.Notify(ctx, "sentiment_flip", "Sentiment flip", msg); err != nil {
			s.logger.WarnContext(ctx, "sentiment flip notification failed",
				slog.String("symbol", res.Symbol),
				slog.String("error", err.Error()),
			)
		}
	}
}
