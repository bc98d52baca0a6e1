// Package refresher drives one data-refresh cycle over the watchlist: it
// acquires a price and recent volume per entry, synthesizes a plausible depth
// snapshot around the price, and runs the strength estimation. Upstream
// failures never propagate; each entry degrades to synthetic data so
// streaming consumers always receive a full result set.
package refresher

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"marketpulse/internal/domain"
	"marketpulse/internal/strength"
	"marketpulse/internal/watchlist"
)

// volumeLookbackDays is the historical window used to find the most recent
// daily bar. Wider than one day so weekends and holidays still yield a bar.
const volumeLookbackDays = 5

// Refresher produces one ordered sequence of strength results per cycle.
type Refresher struct {
	watch    *watchlist.Watchlist
	provider domain.QuoteProvider
	exchange string
	logger   *slog.Logger
}

// New creates a Refresher over the given watchlist and upstream provider.
// The provider is expected to return domain.ErrNotConnected while no session
// is established; the refresher treats that like any other unavailability.
func New(watch *watchlist.Watchlist, provider domain.QuoteProvider, exchange string, logger *slog.Logger) *Refresher {
	return &Refresher{
		watch:    watch,
		provider: provider,
		exchange: exchange,
		logger:   logger.With(slog.String("component", "refresher")),
	}
}

// Refresh runs one cycle. Entries are fanned out concurrently; the result
// order matches the watchlist order at the start of the cycle. Refresh never
// fails: every entry yields a result, synthetic if need be.
func (r *Refresher) Refresh(ctx context.Context) []domain.StrengthResult {
	entries := r.watch.Entries()
	results := make([]domain.StrengthResult, len(entries))

	g, ctx := errgroup.WithContext(ctx)
	for i, entry := range entries {
		g.Go(func() error {
			results[i] = r.refreshEntry(ctx, entry)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// refreshEntry produces the strength result for a single entry. Price and
// volume are fetched concurrently; either falls back independently.
func (r *Refresher) refreshEntry(ctx context.Context, entry domain.WatchlistEntry) domain.StrengthResult {
	var (
		price    float64
		priceErr error
		volume   int64
		volErr   error
	)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		price, priceErr = r.provider.LastPrice(ctx, r.exchange, entry.Symbol, entry.Token)
	}()
	go func() {
		defer wg.Done()
		volume, volErr = r.latestDailyVolume(ctx, entry.Token)
	}()
	wg.Wait()

	source := domain.DataSourceReal
	if priceErr != nil || price <= 0 {
		if priceErr != nil {
			r.logger.DebugContext(ctx, "price unavailable, using synthetic",
				slog.String("symbol", entry.Symbol),
				slog.String("error", priceErr.Error()),
			)
		}
		price = fallbackPrice()
		source = domain.DataSourceSynthetic
	}
	if volErr != nil || volume <= 0 {
		if volErr != nil {
			r.logger.DebugContext(ctx, "volume unavailable, using synthetic",
				slog.String("symbol", entry.Symbol),
				slog.String("error", volErr.Error()),
			)
		}
		volume = fallbackVolume()
		source = domain.DataSourceSynthetic
	}

	snap := SynthesizeDepth(price, volume)
	result := strength.Estimate(snap)
	result.Symbol = entry.Symbol
	result.LTP = price
	result.Source = source
	return result
}

// latestDailyVolume returns the executed volume of the most recent daily bar
// inside the lookback window.
func (r *Refresher) latestDailyVolume(ctx context.Context, token string) (int64, error) {
	to := time.Now()
	from := to.AddDate(0, 0, -volumeLookbackDays)

	bars, err := r.provider.DailyBars(ctx, r.exchange, token, "ONE_DAY", from, to)
	if err != nil {
		return 0, err
	}
	if len(bars) == 0 {
		return 0, domain.ErrNotFound
	}
	return bars[len(bars)-1].Volume, nil
}
