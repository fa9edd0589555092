package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Metal identifies a traded precious metal.
type Metal string

const (
	MetalGold   Metal = "GOLD"
	MetalSilver Metal = "SILVER"
)

// SupportedMetals lists the metals quoted on every pricing refresh.
// Only gold is walletable; silver quotes back the catalog price display.
var SupportedMetals = []Metal{MetalGold}

// PriceSnapshot is an immutable, timestamped record of a computed quote.
// Every executed order references the snapshot it was priced against;
// historical snapshots back the price-history charts. Append-only.
type PriceSnapshot struct {
	ID             uuid.UUID       `json:"id"`
	Metal          Metal           `json:"metal"`
	SpotUSD        decimal.Decimal `json:"spotUSD"` // per gram, source currency
	SpotSAR        decimal.Decimal `json:"spotSAR"` // per gram, quote currency
	BuyPrice       decimal.Decimal `json:"buyPrice"`
	SellPrice      decimal.Decimal `json:"sellPrice"`
	Spread         decimal.Decimal `json:"spread"`
	ConversionRate decimal.Decimal `json:"conversionRate"`
	Source         string          `json:"source"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// Age returns how long ago the snapshot was taken.
func (s *PriceSnapshot) Age(now time.Time) time.Duration {
	return now.Sub(s.CreatedAt)
}
