package pricefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"gold-trading-gateway/internal/core/domain"

	"github.com/shopspring/decimal"
)

// GoldAPIProvider fetches spot prices from a goldapi.io-style endpoint:
// GET {base}/{symbol}/USD with an x-access-token header, returning a price
// per troy ounce.
type GoldAPIProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewGoldAPIProvider creates a GoldAPI provider.
func NewGoldAPIProvider(baseURL, apiKey string, client *http.Client) *GoldAPIProvider {
	return &GoldAPIProvider{baseURL: baseURL, apiKey: apiKey, client: client}
}

// Name returns the source tag recorded on snapshots.
func (p *GoldAPIProvider) Name() string { return "goldapi" }

type goldAPIResponse struct {
	Price float64 `json:"price"` // USD per troy ounce
}

// FetchSpot fetches the USD-per-gram spot price for a metal.
func (p *GoldAPIProvider) FetchSpot(ctx context.Context, metal domain.Metal) (decimal.Decimal, error) {
	symbol, err := goldAPISymbol(metal)
	if err != nil {
		return decimal.Zero, err
	}

	url := fmt.Sprintf("%s/%s/USD", p.baseURL, symbol)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("goldapi request: %w", err)
	}
	req.Header.Set("x-access-token", p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("goldapi fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("goldapi status %d", resp.StatusCode)
	}

	var body goldAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return decimal.Zero, fmt.Errorf("goldapi decode: %w", err)
	}
	if body.Price <= 0 {
		return decimal.Zero, fmt.Errorf("goldapi returned non-positive price %f", body.Price)
	}

	perOunce := decimal.NewFromFloat(body.Price)
	return perOunce.Div(gramsPerTroyOunce), nil
}

func goldAPISymbol(metal domain.Metal) (string, error) {
	switch metal {
	case domain.MetalGold:
		return "XAU", nil
	case domain.MetalSilver:
		return "XAG", nil
	default:
		return "", fmt.Errorf("unsupported metal %q", metal)
	}
}
