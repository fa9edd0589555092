package service

import (
	"sync"
	"time"

	"gold-trading-gateway/internal/core/domain"
	"gold-trading-gateway/internal/core/ports"
)

// tickCache is the in-process layer of the ticker cache. Freshness is judged
// against the clock passed in by the caller, never time.Now directly.
type tickCache struct {
	mu      sync.RWMutex
	entries map[domain.Metal]tickEntry
}

type tickEntry struct {
	tick    *ports.SpotTick
	fetched time.Time
}

func newTickCache() *tickCache {
	return &tickCache{entries: make(map[domain.Metal]tickEntry)}
}

// fresh returns the cached tick when it is younger than ttl, else nil.
func (c *tickCache) fresh(metal domain.Metal, now time.Time, ttl time.Duration) *ports.SpotTick {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[metal]
	if !ok || now.Sub(entry.fetched) > ttl {
		return nil
	}
	return entry.tick
}

// last returns the most recent tick regardless of age, or nil if none was
// ever stored. Backs the last-value fallback on provider outages.
func (c *tickCache) last(metal domain.Metal) *ports.SpotTick {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[metal]
	if !ok {
		return nil
	}
	return entry.tick
}

func (c *tickCache) store(tick *ports.SpotTick, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[tick.Metal] = tickEntry{tick: tick, fetched: now}
}
