package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Settings is the singleton merchant configuration: spread, markups, trade
// bounds and refresh cadence. Read fresh on every settlement or pricing
// operation so administrative changes take effect on the very next trade.
type Settings struct {
	Spread              decimal.Decimal `json:"spread"`
	BuyMarkup           decimal.Decimal `json:"buyMarkup"`
	SellMarkup          decimal.Decimal `json:"sellMarkup"`
	MinTradeAmount      decimal.Decimal `json:"minTradeAmount"` // grams
	MaxTradeAmount      decimal.Decimal `json:"maxTradeAmount"` // grams
	PriceUpdateInterval time.Duration   `json:"priceUpdateInterval"`
	UpdatedAt           time.Time       `json:"updatedAt"`
}

// DefaultSettings returns the documented defaults used when no configuration
// row exists yet: 2% spread, 1% markups, 0.01-10000 g bounds, 30 s refresh.
func DefaultSettings() *Settings {
	return &Settings{
		Spread:              decimal.NewFromFloat(0.02),
		BuyMarkup:           decimal.NewFromFloat(0.01),
		SellMarkup:          decimal.NewFromFloat(0.01),
		MinTradeAmount:      decimal.NewFromFloat(0.01),
		MaxTradeAmount:      decimal.NewFromInt(10000),
		PriceUpdateInterval: 30 * time.Second,
		UpdatedAt:           time.Now().UTC(),
	}
}

var two = decimal.NewFromInt(2)

// Quote derives the buy/sell price pair from a spot price:
//
//	buy  = spot × (1 + spread/2 + buyMarkup)
//	sell = spot × (1 − spread/2 − sellMarkup)
//
// The spread is split evenly across both sides before markups apply.
func (s *Settings) Quote(spot decimal.Decimal) (buy, sell decimal.Decimal) {
	half := s.Spread.Div(two)
	buy = spot.Mul(decimal.NewFromInt(1).Add(half).Add(s.BuyMarkup))
	sell = spot.Mul(decimal.NewFromInt(1).Sub(half).Sub(s.SellMarkup))
	return buy, sell
}

// AmountInBounds reports whether a trade amount is within the configured range.
func (s *Settings) AmountInBounds(grams decimal.Decimal) bool {
	return grams.GreaterThanOrEqual(s.MinTradeAmount) &&
		grams.LessThanOrEqual(s.MaxTradeAmount)
}
