package domain

import (
	"context"
	"time"
)

// Bar is one raw candle from the upstream provider.
type Bar struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    int64
}

// QuoteProvider is the upstream data source contract the refresher and
// market service depend on. Implementations signal unavailability with
// ErrNotConnected or ErrUpstream; callers treat any error uniformly as
// missing data.
type QuoteProvider interface {
	// LastPrice returns the latest traded price for the instrument.
	LastPrice(ctx context.Context, exchange, symbol, token string) (float64, error)
	// DailyBars returns daily candles for the token over [from, to].
	// An empty slice (nil error) means the provider reported no data.
	DailyBars(ctx context.Context, exchange, token, interval string, from, to time.Time) ([]Bar, error)
	// SearchScrip maps a free-text query to candidate instruments.
	SearchScrip(ctx context.Context, exchange, query string) ([]Scrip, error)
}
