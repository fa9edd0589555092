package pricefeed

import (
	"context"
	"errors"
	"fmt"

	"gold-trading-gateway/internal/core/domain"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Provider fetches a spot price in USD per gram from one external source.
type Provider interface {
	Name() string
	FetchSpot(ctx context.Context, metal domain.Metal) (decimal.Decimal, error)
}

// gramsPerTroyOunce converts the per-ounce quotes upstream feeds use.
var gramsPerTroyOunce = decimal.RequireFromString("31.1034768")

// ErrAllProvidersFailed reports that no provider in the chain returned a price.
var ErrAllProvidersFailed = errors.New("all price providers failed")

// Chain tries an ordered list of providers; the first numeric price wins.
// Any single upstream feed is a single point of failure for the whole trading
// surface, hence the fallback ordering.
type Chain struct {
	providers []Provider
	log       zerolog.Logger
}

// NewChain creates a provider chain in priority order.
func NewChain(log zerolog.Logger, providers ...Provider) *Chain {
	return &Chain{providers: providers, log: log}
}

// FetchSpot returns the first successful quote and the winning source name.
// Provider errors are retried across the chain within this single call.
func (c *Chain) FetchSpot(ctx context.Context, metal domain.Metal) (decimal.Decimal, string, error) {
	var lastErr error
	for _, p := range c.providers {
		price, err := p.FetchSpot(ctx, metal)
		if err != nil {
			c.log.Warn().Err(err).
				Str("provider", p.Name()).
				Str("metal", string(metal)).
				Msg("price provider failed, trying next")
			lastErr = err
			continue
		}
		if !price.IsPositive() {
			c.log.Warn().
				Str("provider", p.Name()).
				Str("price", price.String()).
				Msg("price provider returned non-positive price, trying next")
			lastErr = fmt.Errorf("provider %s: non-positive price %s", p.Name(), price)
			continue
		}
		return price, p.Name(), nil
	}
	if lastErr == nil {
		lastErr = ErrAllProvidersFailed
	}
	return decimal.Zero, "", fmt.Errorf("%w: %v", ErrAllProvidersFailed, lastErr)
}
