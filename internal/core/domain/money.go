package domain

import "github.com/shopspring/decimal"

// Persisted decimal columns carry AmountScale fractional digits for gold
// amounts and per-gram prices, and twice that for cash. A cash value is
// always a product of an amount and a price (or a sum of such products), so
// holding both factors to AmountScale keeps every stored cash value exact:
// what a trade computes, returns, and reads back are the same number.
const (
	AmountScale = 6
	CashScale   = 2 * AmountScale
)

// FitsScale reports whether d has at most the given number of decimal places.
func FitsScale(d decimal.Decimal, scale int32) bool {
	return d.Equal(d.Round(scale))
}
