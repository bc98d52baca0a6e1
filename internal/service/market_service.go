package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"marketpulse/internal/domain"
	"marketpulse/internal/watchlist"
)

// MarketService serves symbol search and historical candles on top of the
// upstream provider, resolving symbols through the watchlist first.
type MarketService struct {
	provider domain.QuoteProvider
	watch    *watchlist.Watchlist
	exchange string
	logger   *slog.Logger
}

// NewMarketService creates a MarketService with all required dependencies.
func NewMarketService(
	provider domain.QuoteProvider,
	watch *watchlist.Watchlist,
	exchange string,
	logger *slog.Logger,
) *MarketService {
	return &MarketService{
		provider: provider,
		watch:    watch,
		exchange: exchange,
		logger:   logger,
	}
}

// History returns daily candles for a symbol over the last `days` days.
// Unknown symbols yield domain.ErrNotFound; a window with no trading data
// yields an empty slice, not an error.
func (s *MarketService) History(ctx context.Context, symbol, interval string, days int) ([]domain.Candle, error) {
	if days <= 0 {
		days = 30
	}
	if interval == "" {
		interval = "ONE_DAY"
	}

	token, err := s.resolveToken(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("market_service: resolve %q: %w", symbol, err)
	}

	to := time.Now()
	from := to.AddDate(0, 0, -days)
	bars, err := s.provider.DailyBars(ctx, s.exchange, token, interval, from, to)
	if err != nil {
		if errors.Is(err, domain.ErrNotConnected) {
			return nil, err
		}
		// Upstream trouble degrades to an empty (well-formed) response so
		// dashboards keep rendering.
		s.logger.WarnContext(ctx, "market_service: history fetch failed",
			slog.String("symbol", symbol),
			slog.String("error", err.Error()),
		)
		return []domain.Candle{}, nil
	}

	candles := make([]domain.Candle, 0, len(bars))
	for _, b := range bars {
		candles = append(candles, domain.Candle{
			Date:   b.Timestamp.Format("2006-01-02"),
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: b.Volume,
		})
	}
	return candles, nil
}

// Search returns candidate instruments for a free-text query, sorted so exact
// symbol matches come first, then prefix matches, then everything else. The
// sort is stable within each tier.
func (s *MarketService) Search(ctx context.Context, query string) ([]domain.Scrip, error) {
	scrips, err := s.provider.SearchScrip(ctx, s.exchange, query)
	if err != nil {
		return nil, fmt.Errorf("market_service: search %q: %w", query, err)
	}

	sort.SliceStable(scrips, func(i, j int) bool {
		return matchTier(scrips[i].Symbol, query) < matchTier(scrips[j].Symbol, query)
	})
	return scrips, nil
}

// matchTier ranks a candidate symbol against the query: exact match, prefix
// match, everything else.
func matchTier(symbol, query string) int {
	switch {
	case strings.EqualFold(symbol, query):
		return 0
	case strings.HasPrefix(strings.ToUpper(symbol), strings.ToUpper(query)):
		return 1
	default:
		return 2
	}
}

// resolveToken maps a symbol to its instrument token: watchlist first, then
// an exact search, then a ".BSE"-suffix retry.
func (s *MarketService) resolveToken(ctx context.Context, symbol string) (string, error) {
	if token, ok := s.watch.Lookup(symbol); ok {
		return token, nil
	}

	if token, ok := s.searchExact(ctx, symbol); ok {
		return token, nil
	}
	if !strings.HasSuffix(strings.ToUpper(symbol), ".BSE") {
		if token, ok := s.searchExact(ctx, symbol+".BSE"); ok {
			return token, nil
		}
	}
	return "", domain.ErrNotFound
}

// searchExact runs a provider search and returns the token of an exact
// symbol match, if any. The ".BSE" suffix is not part of the upstream
// trading symbol, so it is stripped for comparison.
func (s *MarketService) searchExact(ctx context.Context, symbol string) (string, bool) {
	query := strings.TrimSuffix(strings.ToUpper(symbol), ".BSE")
	scrips, err := s.provider.SearchScrip(ctx, s.exchange, query)
	if err != nil {
		s.logger.WarnContext(ctx, "market_service: scrip search failed",
			slog.String("symbol", symbol),
			slog.String("error", err.Error()),
		)
		return "", false
	}
	for _, sc := range scrips {
		if strings.EqualFold(sc.Symbol, query) {
			return sc.Token, true
		}
	}
	return "", false
}
