// Package strength derives a buy/sell pressure summary from one order-book
// depth snapshot. The estimate is based on the visible top orders only; it is
// a pressure heuristic, not a microstructure model.
package strength

import (
	"math"

	"marketpulse/internal/domain"
)

// Sentiment thresholds on the signed strength percentage. Exactly ±5 is
// still Neutral.
const (
	bullishThreshold = 5.0
	bearishThreshold = -5.0
)

// Estimate computes the strength summary for one depth snapshot. It is pure
// and never fails: negative quantities are treated as zero, and an empty book
// yields the all-zero Neutral result.
func Estimate(snap domain.DepthSnapshot) domain.StrengthResult {
	buyVolume := sumQuantities(snap.Buy)
	sellVolume := sumQuantities(snap.Sell)
	totalVolume := buyVolume + sellVolume

	if totalVolume == 0 {
		return domain.StrengthResult{
			TradedVolume: snap.TradedVolume,
			Sentiment:    domain.SentimentNeutral,
		}
	}

	buyPercent := round2(100 * float64(buyVolume) / float64(totalVolume))
	sellPercent := round2(100 * float64(sellVolume) / float64(totalVolume))
	strengthPercent := round2(100 * float64(buyVolume-sellVolume) / float64(totalVolume))

	sentiment := domain.SentimentNeutral
	switch {
	case strengthPercent > bullishThreshold:
		sentiment = domain.SentimentBullish
	case strengthPercent < bearishThreshold:
		sentiment = domain.SentimentBearish
	}

	return domain.StrengthResult{
		TotalVolume:     totalVolume,
		BuyVolume:       buyVolume,
		SellVolume:      sellVolume,
		TradedVolume:    snap.TradedVolume,
		BuyPercent:      buyPercent,
		SellPercent:     sellPercent,
		StrengthPercent: strengthPercent,
		Sentiment:       sentiment,
	}
}

// sumQuantities totals the order quantities on one side, clamping malformed
// (negative) quantities to zero.
func sumQuantities(orders []domain.DepthOrder) int64 {
	var total int64
	for _, o := range orders {
		if o.Quantity > 0 {
			total += o.Quantity
		}
	}
	return total
}

// round2 rounds to two fractional digits for display.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
