package refresher

import (
	"math/rand/v2"

	"marketpulse/internal/domain"
)

const (
	// depthLevels is the best-five convention on each side of the book.
	depthLevels = 5

	// spreadRatio places synthetic orders 0.1% away from the last price.
	spreadRatio = 0.001

	// qtyDivisor derives the average per-order quantity from daily volume.
	qtyDivisor = 500

	// defaultAvgQty is used when no volume is known.
	defaultAvgQty = 1000

	// Fallback ranges for entries with no live data.
	fallbackPriceMin  = 100.0
	fallbackPriceMax  = 3000.0
	fallbackVolumeMin = 10_000
	fallbackVolumeMax = 5_000_000
)

// SynthesizeDepth derives a plausible five-level depth snapshot around the
// given price. Order quantities are drawn uniformly from [avg/2, 3*avg/2]
// where avg scales with the daily volume.
func SynthesizeDepth(price float64, volume int64) domain.DepthSnapshot {
	avgQty := volume / qtyDivisor
	if volume <= 0 {
		avgQty = defaultAvgQty
	} else if avgQty < 1 {
		avgQty = 1
	}

	buyPrice := price * (1 - spreadRatio)
	sellPrice := price * (1 + spreadRatio)

	snap := domain.DepthSnapshot{
		Buy:          make([]domain.DepthOrder, depthLevels),
		Sell:         make([]domain.DepthOrder, depthLevels),
		TradedVolume: volume,
	}
	for i := 0; i < depthLevels; i++ {
		snap.Buy[i] = domain.DepthOrder{Quantity: randomQuantity(avgQty), Price: buyPrice}
		snap.Sell[i] = domain.DepthOrder{Quantity: randomQuantity(avgQty), Price: sellPrice}
	}
	return snap
}

// randomQuantity draws a quantity uniformly from [avg/2, 3*avg/2].
func randomQuantity(avg int64) int64 {
	lo := avg / 2
	hi := avg + avg/2
	return lo + rand.Int64N(hi-lo+1)
}

// fallbackPrice substitutes a plausible trading price when the upstream has
// none for us.
func fallbackPrice() float64 {
	return fallbackPriceMin + rand.Float64()*(fallbackPriceMax-fallbackPriceMin)
}

// fallbackVolume substitutes a plausible daily executed volume.
func fallbackVolume() int64 {
	return fallbackVolumeMin + rand.Int64N(fallbackVolumeMax-fallbackVolumeMin+1)
}
