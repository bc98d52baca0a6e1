package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"marketpulse/internal/domain"
	"marketpulse/internal/notify"
	"marketpulse/internal/refresher"
	"marketpulse/internal/watchlist"
)

// memCache is an in-memory StrengthCache.
type memCache struct {
	mu    sync.Mutex
	cycle domain.StrengthCycle
	set   bool
}

func (m *memCache) SetCycle(ctx context.Context, cycle domain.StrengthCycle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cycle, m.set = cycle, true
	return nil
}

func (m *memCache) GetCycle(ctx context.Context) (domain.StrengthCycle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.set {
		return domain.StrengthCycle{}, domain.ErrNotFound
	}
	return m.cycle, nil
}

// memBus records published payloads per channel.
type memBus struct {
	mu       sync.Mutex
	payloads map[string][][]byte
}

func (m *memBus) Publish(ctx context.Context, channel string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.payloads == nil {
		m.payloads = make(map[string][][]byte)
	}
	m.payloads[channel] = append(m.payloads[channel], payload)
	return nil
}

func (m *memBus) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	ch := make(chan []byte)
	close(ch)
	return ch, nil
}

// recordingSender captures notifications.
type recordingSender struct {
	mu   sync.Mutex
	msgs []string
}

func (r *recordingSender) Send(ctx context.Context, title, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, message)
	return nil
}

func (r *recordingSender) Name() string { return "recording" }

func newTestStrengthService(notifier *notify.Notifier, cache domain.StrengthCache, bus domain.SignalBus) *StrengthService {
	watch := watchlist.New([]domain.WatchlistEntry{
		{Symbol: "TCS.BSE", Token: "532540"},
		{Symbol: "INFY.BSE", Token: "500209"},
	})
	// Disconnected provider: every cycle degrades to synthetic data, which
	// is exactly what the fan-out plumbing under test needs.
	r := refresher.New(watch, disconnectedProvider{}, "BSE", discardLogger())
	return NewStrengthService(r, cache, bus, nil, notifier, discardLogger())
}

type disconnectedProvider struct{}

func (disconnectedProvider) LastPrice(ctx context.Context, exchange, symbol, token string) (float64, error) {
	return 0, domain.ErrNotConnected
}

func (disconnectedProvider) DailyBars(ctx context.Context, exchange, token, interval string, from, to time.Time) ([]domain.Bar, error) {
	return nil, domain.ErrNotConnected
}

func (disconnectedProvider) SearchScrip(ctx context.Context, exchange, query string) ([]domain.Scrip, error) {
	return nil, domain.ErrNotConnected
}

func TestRunCycleCachesAndPublishes(t *testing.T) {
	cache := &memCache{}
	bus := &memBus{}
	svc := newTestStrengthService(nil, cache, bus)

	cycle := svc.RunCycle(context.Background())
	if cycle.CycleID == "" {
		t.Error("cycle id is empty")
	}
	if len(cycle.Results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(cycle.Results))
	}

	cached, err := svc.LatestCycle(context.Background())
	if err != nil {
		t.Fatalf("LatestCycle: %v", err)
	}
	if cached.CycleID != cycle.CycleID {
		t.Errorf("cached cycle = %q, want %q", cached.CycleID, cycle.CycleID)
	}

	if got := len(bus.payloads[StrengthChannel]); got != 1 {
		t.Errorf("published %d payloads on %q, want 1", got, StrengthChannel)
	}
}

func TestSentimentFlipNotifiesOnlyOnChange(t *testing.T) {
	sender := &recordingSender{}
	notifier := notify.NewNotifier([]notify.Sender{sender}, nil, discardLogger())
	svc := newTestStrengthService(notifier, &memCache{}, &memBus{})

	// First cycle establishes a baseline; no notification can fire.
	svc.RunCycle(context.Background())
	if len(sender.msgs) != 0 {
		t.Fatalf("notified on first cycle: %v", sender.msgs)
	}

	// Force a flip by rewriting the remembered sentiments.
	svc.mu.Lock()
	for sym := range svc.lastSentiment {
		svc.lastSentiment[sym] = domain.Sentiment("Flipped")
	}
	svc.mu.Unlock()

	svc.RunCycle(context.Background())
	if len(sender.msgs) != 2 {
		t.Errorf("notifications = %d, want 2 (one per symbol)", len(sender.msgs))
	}
}

func TestHistoryBySymbolDisabled(t *testing.T) {
	svc := newTestStrengthService(nil, &memCache{}, &memBus{})
	if _, err := svc.HistoryBySymbol(context.Background(), "TCS.BSE", 10); err == nil {
		t.Error("expected error when history store is disabled")
	}
}
