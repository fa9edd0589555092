package ports

import (
	"context"
	"time"

	"gold-trading-gateway/internal/core/domain"

	"github.com/shopspring/decimal"
)

// SpotSource yields the current USD-per-gram spot price for a metal plus the
// name of the upstream feed it came from.
type SpotSource interface {
	FetchSpot(ctx context.Context, metal domain.Metal) (decimal.Decimal, string, error)
}

// TickerCache shares short-TTL spot ticks across instances.
type TickerCache interface {
	// Get returns the cached tick for a metal, or nil, nil on a miss.
	Get(ctx context.Context, metal domain.Metal) (*SpotTick, error)
	Set(ctx context.Context, tick *SpotTick, ttl time.Duration) error
}
