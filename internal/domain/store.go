package domain

import (
	"context"
	"time"
)

// StrengthRecord is one persisted per-symbol strength observation.
type StrengthRecord struct {
	ID              int64
	CycleID         string
	Symbol          string
	LTP             float64
	TotalVolume     int64
	BuyVolume       int64
	SellVolume      int64
	TradedVolume    int64
	BuyPercent      float64
	SellPercent     float64
	StrengthPercent float64
	Sentiment       Sentiment
	Source          DataSource
	ObservedAt      time.Time
}

// StrengthHistoryStore persists completed refresh cycles for later review.
type StrengthHistoryStore interface {
	InsertCycle(ctx context.Context, cycle StrengthCycle) error
	ListBySymbol(ctx context.Context, symbol string, limit int) ([]StrengthRecord, error)
}
