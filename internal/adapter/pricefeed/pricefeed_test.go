package pricefeed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gold-trading-gateway/internal/core/domain"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	name  string
	price decimal.Decimal
	err   error
	calls int
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) FetchSpot(_ context.Context, _ domain.Metal) (decimal.Decimal, error) {
	s.calls++
	return s.price, s.err
}

func TestChain_FirstProviderWins(t *testing.T) {
	first := &stubProvider{name: "first", price: decimal.RequireFromString("75.5")}
	second := &stubProvider{name: "second", price: decimal.RequireFromString("80")}
	chain := NewChain(zerolog.Nop(), first, second)

	price, source, err := chain.FetchSpot(context.Background(), domain.MetalGold)
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.RequireFromString("75.5")))
	assert.Equal(t, "first", source)
	assert.Zero(t, second.calls, "second provider should not be consulted")
}

func TestChain_FallsThroughOnError(t *testing.T) {
	first := &stubProvider{name: "first", err: errors.New("timeout")}
	second := &stubProvider{name: "second", price: decimal.RequireFromString("80")}
	chain := NewChain(zerolog.Nop(), first, second)

	price, source, err := chain.FetchSpot(context.Background(), domain.MetalGold)
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.RequireFromString("80")))
	assert.Equal(t, "second", source)
}

func TestChain_SkipsNonPositivePrices(t *testing.T) {
	first := &stubProvider{name: "first", price: decimal.Zero}
	second := &stubProvider{name: "second", price: decimal.RequireFromString("81")}
	chain := NewChain(zerolog.Nop(), first, second)

	price, source, err := chain.FetchSpot(context.Background(), domain.MetalGold)
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.RequireFromString("81")))
	assert.Equal(t, "second", source)
}

func TestChain_AllFail(t *testing.T) {
	first := &stubProvider{name: "first", err: errors.New("down")}
	second := &stubProvider{name: "second", err: errors.New("also down")}
	chain := NewChain(zerolog.Nop(), first, second)

	_, _, err := chain.FetchSpot(context.Background(), domain.MetalGold)
	assert.ErrorIs(t, err, ErrAllProvidersFailed)
}

func TestGoldAPIProvider_FetchSpot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/XAU/USD", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-access-token"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"price": 2488.278144}`))
	}))
	defer srv.Close()

	p := NewGoldAPIProvider(srv.URL, "test-key", &http.Client{Timeout: time.Second})

	price, err := p.FetchSpot(context.Background(), domain.MetalGold)
	require.NoError(t, err)

	// 2488.278144 / 31.1034768 = 80.000 USD per gram
	expected := decimal.NewFromFloat(2488.278144).Div(gramsPerTroyOunce)
	assert.True(t, price.Equal(expected), "got %s", price)
}

func TestGoldAPIProvider_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	p := NewGoldAPIProvider(srv.URL, "bad-key", &http.Client{Timeout: time.Second})

	_, err := p.FetchSpot(context.Background(), domain.MetalGold)
	assert.ErrorContains(t, err, "status 403")
}

func TestMetalsDevProvider_FetchSpot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/latest", r.URL.Path)
		assert.Equal(t, "mk-1", r.URL.Query().Get("api_key"))
		assert.Equal(t, "USD", r.URL.Query().Get("currency"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"metals": {"gold": 2332.76076, "silver": 29.3}}`))
	}))
	defer srv.Close()

	p := NewMetalsDevProvider(srv.URL, "mk-1", &http.Client{Timeout: time.Second})

	price, err := p.FetchSpot(context.Background(), domain.MetalGold)
	require.NoError(t, err)

	expected := decimal.NewFromFloat(2332.76076).Div(gramsPerTroyOunce)
	assert.True(t, price.Equal(expected), "got %s", price)
}

func TestMetalsDevProvider_MissingMetal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"metals": {}}`))
	}))
	defer srv.Close()

	p := NewMetalsDevProvider(srv.URL, "mk-1", &http.Client{Timeout: time.Second})

	_, err := p.FetchSpot(context.Background(), domain.MetalGold)
	assert.ErrorContains(t, err, "no usable price")
}
