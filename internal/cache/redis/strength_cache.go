package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"marketpulse/internal/domain"
)

// cycleKey holds the most recent strength cycle as a JSON blob.
const cycleKey = "strength:cycle:latest"

// cycleTTL caps how long a stale cycle is served after the refresh loop
// stops. One minute is sixty missed refreshes at the default cadence.
const cycleTTL = time.Minute

// StrengthCache implements domain.StrengthCache by storing the latest
// strength cycle as JSON under a single key with a short TTL.
type StrengthCache struct {
	rdb *redis.Client
}

// NewStrengthCache creates a StrengthCache backed by the given Client.
func NewStrengthCache(c *Client) *StrengthCache {
	return &StrengthCache{rdb: c.Underlying()}
}

// SetCycle stores the cycle as the latest snapshot.
func (sc *StrengthCache) SetCycle(ctx context.Context, cycle domain.StrengthCycle) error {
	payload, err := json.Marshal(cycle)
	if err != nil {
		return fmt.Errorf("redis: marshal cycle %s: %w", cycle.CycleID, err)
	}
	if err := sc.rdb.Set(ctx, cycleKey, payload, cycleTTL).Err(); err != nil {
		return fmt.Errorf("redis: set cycle %s: %w", cycle.CycleID, err)
	}
	return nil
}

// GetCycle retrieves the latest stored cycle. It returns domain.ErrNotFound
// when no cycle has been stored or the TTL has expired.
func (sc *StrengthCache) GetCycle(ctx context.Context) (domain.StrengthCycle, error) {
	payload, err := sc.rdb.Get(ctx, cycleKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.StrengthCycle{}, domain.ErrNotFound
		}
		return domain.StrengthCycle{}, fmt.Errorf("redis: get cycle: %w", err)
	}

	var cycle domain.StrengthCycle
	if err := json.Unmarshal(payload, &cycle); err != nil {
		return domain.StrengthCycle{}, fmt.Errorf("redis: unmarshal cycle: %w", err)
	}
	return cycle, nil
}

// Compile-time interface check.
var _ domain.StrengthCache = (*StrengthCache)(nil)
