package refresher

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"marketpulse/internal/domain"
	"marketpulse/internal/watchlist"
)

// fakeProvider serves canned prices and bars per token and records nothing.
type fakeProvider struct {
	prices  map[string]float64
	bars    map[string][]domain.Bar
	err     error
	barsErr error
}

func (f *fakeProvider) LastPrice(ctx context.Context, exchange, symbol, token string) (float64, error) {
	if f.err != nil {
		return 0, f.err
	}
	p, ok := f.prices[token]
	if !ok {
		return 0, domain.ErrNotFound
	}
	return p, nil
}

func (f *fakeProvider) DailyBars(ctx context.Context, exchange, token, interval string, from, to time.Time) ([]domain.Bar, error) {
	if f.barsErr != nil {
		return nil, f.barsErr
	}
	return f.bars[token], nil
}

func (f *fakeProvider) SearchScrip(ctx context.Context, exchange, query string) ([]domain.Scrip, error) {
	return nil, domain.ErrNotConnected
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testWatchlist() *watchlist.Watchlist {
	return watchlist.New([]domain.WatchlistEntry{
		{Symbol: "TCS.BSE", Token: "532540"},
		{Symbol: "INFY.BSE", Token: "500209"},
		{Symbol: "SUZLON.BSE", Token: "532667"},
	})
}

func TestRefreshPreservesWatchlistOrder(t *testing.T) {
	r := New(testWatchlist(), &fakeProvider{err: domain.ErrNotConnected}, "BSE", testLogger())

	results := r.Refresh(context.Background())
	if len(results) != 3 {
		t.Fatalf("len(results) = %d, want 3", len(results))
	}
	want := []string{"TCS.BSE", "INFY.BSE", "SUZLON.BSE"}
	for i, sym := range want {
		if results[i].Symbol != sym {
			t.Errorf("results[%d].Symbol = %q, want %q", i, results[i].Symbol, sym)
		}
	}
}

func TestRefreshDisconnectedFallsBackToSynthetic(t *testing.T) {
	r := New(testWatchlist(), &fakeProvider{err: domain.ErrNotConnected, barsErr: domain.ErrNotConnected}, "BSE", testLogger())

	for _, res := range r.Refresh(context.Background()) {
		if res.Source != domain.DataSourceSynthetic {
			t.Errorf("%s: Source = %q, want synthetic", res.Symbol, res.Source)
		}
		if res.LTP < fallbackPriceMin || res.LTP >= fallbackPriceMax {
			t.Errorf("%s: fallback LTP %v outside [%v, %v)", res.Symbol, res.LTP, fallbackPriceMin, fallbackPriceMax)
		}
		if res.TradedVolume < fallbackVolumeMin || res.TradedVolume > fallbackVolumeMax {
			t.Errorf("%s: fallback volume %d outside range", res.Symbol, res.TradedVolume)
		}
		if res.TotalVolume == 0 {
			t.Errorf("%s: synthetic depth produced empty book", res.Symbol)
		}
	}
}

func TestRefreshUsesRealDataWhenAvailable(t *testing.T) {
	provider := &fakeProvider{
		prices: map[string]float64{
			"532540": 4125.55,
			"500209": 1890.0,
			"532667": 61.2,
		},
		bars: map[string][]domain.Bar{
			"532540": {
				{Timestamp: time.Now().AddDate(0, 0, -2), Volume: 500000},
				{Timestamp: time.Now().AddDate(0, 0, -1), Volume: 750000},
			},
			"500209": {{Timestamp: time.Now().AddDate(0, 0, -1), Volume: 320000}},
			"532667": {{Timestamp: time.Now().AddDate(0, 0, -1), Volume: 9100000}},
		},
	}
	r := New(testWatchlist(), provider, "BSE", testLogger())

	results := r.Refresh(context.Background())
	tcs := results[0]
	if tcs.Source != domain.DataSourceReal {
		t.Errorf("Source = %q, want real", tcs.Source)
	}
	if tcs.LTP != 4125.55 {
		t.Errorf("LTP = %v, want 4125.55", tcs.LTP)
	}
	// Volume must come from the last available bar.
	if tcs.TradedVolume != 750000 {
		t.Errorf("TradedVolume = %d, want 750000", tcs.TradedVolume)
	}
}

func TestRefreshPartialDataIsTaggedSynthetic(t *testing.T) {
	// Price is live but the candle window is empty (new listing).
	provider := &fakeProvider{
		prices: map[string]float64{"532540": 4125.55, "500209": 1890.0, "532667": 61.2},
		bars:   map[string][]domain.Bar{},
	}
	r := New(testWatchlist(), provider, "BSE", testLogger())

	for _, res := range r.Refresh(context.Background()) {
		if res.Source != domain.DataSourceSynthetic {
			t.Errorf("%s: Source = %q, want synthetic when volume fell back", res.Symbol, res.Source)
		}
	}
}

func TestSynthesizeDepthShape(t *testing.T) {
	snap := SynthesizeDepth(1000, 500000)

	if len(snap.Buy) != depthLevels || len(snap.Sell) != depthLevels {
		t.Fatalf("levels = %d/%d, want %d each", len(snap.Buy), len(snap.Sell), depthLevels)
	}
	if snap.TradedVolume != 500000 {
		t.Errorf("TradedVolume = %d, want 500000", snap.TradedVolume)
	}

	avg := int64(500000 / qtyDivisor) // 1000
	for _, o := range snap.Buy {
		if o.Price != 1000*(1-spreadRatio) {
			t.Errorf("buy price = %v, want %v", o.Price, 1000*(1-spreadRatio))
		}
		if o.Quantity < avg/2 || o.Quantity > avg+avg/2 {
			t.Errorf("buy quantity %d outside [%d, %d]", o.Quantity, avg/2, avg+avg/2)
		}
	}
	for _, o := range snap.Sell {
		if o.Price != 1000*(1+spreadRatio) {
			t.Errorf("sell price = %v, want %v", o.Price, 1000*(1+spreadRatio))
		}
	}
}

func TestSynthesizeDepthDefaultsWhenVolumeUnknown(t *testing.T) {
	snap := SynthesizeDepth(250, 0)
	for _, o := range append(snap.Buy, snap.Sell...) {
		if o.Quantity < defaultAvgQty/2 || o.Quantity > defaultAvgQty+defaultAvgQty/2 {
			t.Errorf("quantity %d outside default range", o.Quantity)
		}
	}
}

func TestSynthesizeDepthTinyVolume(t *testing.T) {
	// volume/500 rounds to zero; the average must clamp to 1, never panic.
	snap := SynthesizeDepth(10, 123)
	for _, o := range append(snap.Buy, snap.Sell...) {
		if o.Quantity < 0 || o.Quantity > 2 {
			t.Errorf("quantity %d outside clamp range", o.Quantity)
		}
	}
}
