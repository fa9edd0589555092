package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Wallet holds a user's gold-gram and cash balances.
// Both balances are invariantly non-negative; every mutation is paired with
// exactly one Transaction audit entry carrying the same delta.
type Wallet struct {
	ID              uuid.UUID       `json:"id"`
	UserID          uuid.UUID       `json:"userId"`
	GoldBalance     decimal.Decimal `json:"goldBalance"` // grams
	SARBalance      decimal.Decimal `json:"sarBalance"`
	TotalGoldBought decimal.Decimal `json:"totalGoldBought"`
	TotalGoldSold   decimal.Decimal `json:"totalGoldSold"`
	Version         int64           `json:"-"` // optimistic concurrency check
	CreatedAt       time.Time       `json:"createdAt"`
	LastUpdated     time.Time       `json:"lastUpdated"`
}

// NewWallet creates an empty wallet for a user. Wallets are created lazily on
// the first read or trade and never deleted.
func NewWallet(userID uuid.UUID) *Wallet {
	now := time.Now().UTC()
	return &Wallet{
		ID:              uuid.New(),
		UserID:          userID,
		GoldBalance:     decimal.Zero,
		SARBalance:      decimal.Zero,
		TotalGoldBought: decimal.Zero,
		TotalGoldSold:   decimal.Zero,
		Version:         1,
		CreatedAt:       now,
		LastUpdated:     now,
	}
}

// Balances returns a point-in-time snapshot of both balances for audit entries.
func (w *Wallet) Balances() BalanceSnapshot {
	return BalanceSnapshot{Gold: w.GoldBalance, SAR: w.SARBalance}
}

// CanBuy reports whether the cash balance covers the given total.
func (w *Wallet) CanBuy(totalSAR decimal.Decimal) bool {
	return w.SARBalance.GreaterThanOrEqual(totalSAR)
}

// CanSell reports whether the gold balance covers the given amount in grams.
func (w *Wallet) CanSell(grams decimal.Decimal) bool {
	return w.GoldBalance.GreaterThanOrEqual(grams)
}

// ApplyBuy debits cash and credits gold. Callers must have verified
// sufficiency; the cumulative bought total and lastUpdated stamp move with it.
func (w *Wallet) ApplyBuy(grams, totalSAR decimal.Decimal, now time.Time) {
	w.SARBalance = w.SARBalance.Sub(totalSAR)
	w.GoldBalance = w.GoldBalance.Add(grams)
	w.TotalGoldBought = w.TotalGoldBought.Add(grams)
	w.LastUpdated = now
}

// ApplySell debits gold and credits cash.
func (w *Wallet) ApplySell(grams, totalSAR decimal.Decimal, now time.Time) {
	w.GoldBalance = w.GoldBalance.Sub(grams)
	w.SARBalance = w.SARBalance.Add(totalSAR)
	w.TotalGoldSold = w.TotalGoldSold.Add(grams)
	w.LastUpdated = now
}

// ApplyCash adjusts the cash balance by a signed delta (deposit/withdrawal).
func (w *Wallet) ApplyCash(deltaSAR decimal.Decimal, now time.Time) {
	w.SARBalance = w.SARBalance.Add(deltaSAR)
	w.LastUpdated = now
}
