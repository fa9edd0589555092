package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gold-trading-gateway/internal/core/domain"
	"gold-trading-gateway/internal/core/ports"

	goredis "github.com/redis/go-redis/v9"
)

// TickerCache shares the short-TTL spot ticker across instances so a burst of
// ticker reads hits the provider chain at most once per TTL window. It backs
// the live display only and never touches the ledger store.
type TickerCache struct {
	client *goredis.Client
	prefix string
}

// NewTickerCache creates a new Redis-backed ticker cache.
func NewTickerCache(client *goredis.Client) *TickerCache {
	return &TickerCache{
		client: client,
		prefix: "spot:",
	}
}

// Get retrieves the cached tick for a metal. Returns nil, nil on a miss.
func (c *TickerCache) Get(ctx context.Context, metal domain.Metal) (*ports.SpotTick, error) {
	val, err := c.client.Get(ctx, c.prefix+string(metal)).Bytes()
	if err != nil {
		if err == goredis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("redis ticker get: %w", err)
	}

	tick := &ports.SpotTick{}
	if err := json.Unmarshal(val, tick); err != nil {
		return nil, fmt.Errorf("unmarshal cached tick: %w", err)
	}
	return tick, nil
}

// Set stores a tick with TTL.
func (c *TickerCache) Set(ctx context.Context, tick *ports.SpotTick, ttl time.Duration) error {
	data, err := json.Marshal(tick)
	if err != nil {
		return fmt.Errorf("marshal tick: %w", err)
	}
	if err := c.client.Set(ctx, c.prefix+string(tick.Metal), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis ticker set: %w", err)
	}
	return nil
}
