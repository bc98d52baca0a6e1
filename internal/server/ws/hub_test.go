package ws

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"marketpulse/internal/domain"
)

// fakeBus hands out one controllable subscription channel.
type fakeBus struct {
	mu  sync.Mutex
	sub chan []byte
}

func newFakeBus() *fakeBus {
	return &fakeBus{sub: make(chan []byte, 8)}
}

func (b *fakeBus) Publish(ctx context.Context, channel string, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sub <- payload
	return nil
}

func (b *fakeBus) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	return b.sub, nil
}

// fakeCache serves a fixed latest cycle.
type fakeCache struct {
	cycle domain.StrengthCycle
	set   bool
}

func (c *fakeCache) SetCycle(ctx context.Context, cycle domain.StrengthCycle) error {
	c.cycle, c.set = cycle, true
	return nil
}

func (c *fakeCache) GetCycle(ctx context.Context) (domain.StrengthCycle, error) {
	if !c.set {
		return domain.StrengthCycle{}, domain.ErrNotFound
	}
	return c.cycle, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// wsEndpoint exposes the hub upgrade handler the way the server mux does.
func wsEndpoint(hub *Hub) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", hub.HandleWS)
	return mux
}

func dial(t *testing.T, serverURL string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(serverURL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func TestHubSendsCachedCycleOnConnect(t *testing.T) {
	bus := newFakeBus()
	cache := &fakeCache{
		cycle: domain.StrengthCycle{CycleID: "cached-1"},
		set:   true,
	}
	hub := NewHub(bus, cache, "strength", discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	srv := httptest.NewServer(wsEndpoint(hub))
	defer srv.Close()

	conn := dial(t, srv.URL)
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}

	var cycle domain.StrengthCycle
	if err := json.Unmarshal(msg, &cycle); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if cycle.CycleID != "cached-1" {
		t.Errorf("snapshot cycle = %q, want cached-1", cycle.CycleID)
	}
}

func TestHubBroadcastsBusPayloads(t *testing.T) {
	bus := newFakeBus()
	hub := NewHub(bus, nil, "strength", discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	srv := httptest.NewServer(wsEndpoint(hub))
	defer srv.Close()

	conn := dial(t, srv.URL)
	defer conn.Close()

	// Wait for registration before publishing.
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	want := []byte(`{"cycleId":"live-1"}`)
	if err := bus.Publish(ctx, "strength", want); err != nil {
		t.Fatalf("publish: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read broadcast: %v", err)
	}
	if string(msg) != string(want) {
		t.Errorf("message = %s, want %s", msg, want)
	}
}

func TestClientCountTracksDisconnects(t *testing.T) {
	bus := newFakeBus()
	hub := NewHub(bus, nil, "strength", discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	srv := httptest.NewServer(wsEndpoint(hub))
	defer srv.Close()

	conn := dial(t, srv.URL)

	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() != 1 {
		if time.Now().After(deadline) {
			t.Fatalf("ClientCount = %d, want 1", hub.ClientCount())
		}
		time.Sleep(10 * time.Millisecond)
	}

	conn.Close()

	deadline = time.Now().Add(2 * time.Second)
	for hub.ClientCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("ClientCount = %d, want 0 after close", hub.ClientCount())
		}
		time.Sleep(10 * time.Millisecond)
	}
}
