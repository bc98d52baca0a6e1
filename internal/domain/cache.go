package domain

import (
	"context"
	"time"
)

// StrengthCache stores the most recent completed refresh cycle so new
// streaming subscribers get an immediate snapshot without waiting a tick.
type StrengthCache interface {
	SetCycle(ctx context.Context, cycle StrengthCycle) error
	GetCycle(ctx context.Context) (StrengthCycle, error)
}

// RateLimiter provides per-key request rate limiting.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// SignalBus provides pub/sub fan-out between the refresh loop and the
// WebSocket hub.
type SignalBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
}
