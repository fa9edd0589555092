package pricefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"gold-trading-gateway/internal/core/domain"

	"github.com/shopspring/decimal"
)

// MetalsDevProvider fetches spot prices from a metals.dev-style endpoint:
// GET {base}/latest?api_key=...&currency=USD&unit=toz returning a map of
// per-ounce prices keyed by metal name.
type MetalsDevProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewMetalsDevProvider creates a metals.dev provider.
func NewMetalsDevProvider(baseURL, apiKey string, client *http.Client) *MetalsDevProvider {
	return &MetalsDevProvider{baseURL: baseURL, apiKey: apiKey, client: client}
}

// Name returns the source tag recorded on snapshots.
func (p *MetalsDevProvider) Name() string { return "metals.dev" }

type metalsDevResponse struct {
	Metals map[string]float64 `json:"metals"`
}

// FetchSpot fetches the USD-per-gram spot price for a metal.
func (p *MetalsDevProvider) FetchSpot(ctx context.Context, metal domain.Metal) (decimal.Decimal, error) {
	key, err := metalsDevKey(metal)
	if err != nil {
		return decimal.Zero, err
	}

	q := url.Values{}
	q.Set("api_key", p.apiKey)
	q.Set("currency", "USD")
	q.Set("unit", "toz")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/latest?"+q.Encode(), nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("metals.dev request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("metals.dev fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("metals.dev status %d", resp.StatusCode)
	}

	var body metalsDevResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return decimal.Zero, fmt.Errorf("metals.dev decode: %w", err)
	}

	perOunceFloat, ok := body.Metals[key]
	if !ok || perOunceFloat <= 0 {
		return decimal.Zero, fmt.Errorf("metals.dev: no usable price for %s", key)
	}

	perOunce := decimal.NewFromFloat(perOunceFloat)
	return perOunce.Div(gramsPerTroyOunce), nil
}

func metalsDevKey(metal domain.Metal) (string, error) {
	switch metal {
	case domain.MetalGold:
		return "gold", nil
	case domain.MetalSilver:
		return "silver", nil
	default:
		return "", fmt.Errorf("unsupported metal %q", metal)
	}
}
