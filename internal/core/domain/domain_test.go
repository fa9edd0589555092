package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestSettings_Quote(t *testing.T) {
	s := &Settings{
		Spread:     dec("0.02"),
		BuyMarkup:  dec("0.01"),
		SellMarkup: dec("0.01"),
	}

	buy, sell := s.Quote(dec("100"))

	// buy = 100 × (1 + 0.01 + 0.01) = 102, sell = 100 × (1 − 0.01 − 0.01) = 98
	assert.True(t, buy.Equal(dec("102")), "buy = %s", buy)
	assert.True(t, sell.Equal(dec("98")), "sell = %s", sell)
}

func TestSettings_Quote_SpreadSplitBeforeMarkup(t *testing.T) {
	s := &Settings{
		Spread:     dec("0.04"),
		BuyMarkup:  dec("0.005"),
		SellMarkup: dec("0.015"),
	}

	buy, sell := s.Quote(dec("200"))

	// buy = 200 × (1 + 0.02 + 0.005) = 205, sell = 200 × (1 − 0.02 − 0.015) = 193
	assert.True(t, buy.Equal(dec("205")), "buy = %s", buy)
	assert.True(t, sell.Equal(dec("193")), "sell = %s", sell)
}

func TestSettings_AmountInBounds(t *testing.T) {
	s := DefaultSettings()

	assert.False(t, s.AmountInBounds(dec("0.001")))
	assert.True(t, s.AmountInBounds(dec("0.01")))
	assert.True(t, s.AmountInBounds(dec("10000")))
	assert.False(t, s.AmountInBounds(dec("10000.01")))
}

func TestDefaultSettings_Values(t *testing.T) {
	s := DefaultSettings()

	assert.True(t, s.Spread.Equal(dec("0.02")))
	assert.True(t, s.BuyMarkup.Equal(dec("0.01")))
	assert.True(t, s.SellMarkup.Equal(dec("0.01")))
	assert.True(t, s.MinTradeAmount.Equal(dec("0.01")))
	assert.True(t, s.MaxTradeAmount.Equal(dec("10000")))
	assert.Equal(t, 30*time.Second, s.PriceUpdateInterval)
}

func TestWallet_ApplyBuy(t *testing.T) {
	w := NewWallet(uuid.New())
	w.SARBalance = dec("1000")
	now := time.Now().UTC()

	require.True(t, w.CanBuy(dec("510")))
	w.ApplyBuy(dec("5"), dec("510"), now)

	assert.True(t, w.GoldBalance.Equal(dec("5")))
	assert.True(t, w.SARBalance.Equal(dec("490")))
	assert.True(t, w.TotalGoldBought.Equal(dec("5")))
	assert.True(t, w.TotalGoldSold.IsZero())
	assert.Equal(t, now, w.LastUpdated)
}

func TestWallet_ApplySell(t *testing.T) {
	w := NewWallet(uuid.New())
	w.GoldBalance = dec("10")
	now := time.Now().UTC()

	require.True(t, w.CanSell(dec("4")))
	w.ApplySell(dec("4"), dec("392"), now)

	assert.True(t, w.GoldBalance.Equal(dec("6")))
	assert.True(t, w.SARBalance.Equal(dec("392")))
	assert.True(t, w.TotalGoldSold.Equal(dec("4")))
}

func TestWallet_Sufficiency(t *testing.T) {
	w := NewWallet(uuid.New())
	w.SARBalance = dec("100")
	w.GoldBalance = dec("1")

	assert.True(t, w.CanBuy(dec("100")))
	assert.False(t, w.CanBuy(dec("100.01")))
	assert.True(t, w.CanSell(dec("1")))
	assert.False(t, w.CanSell(dec("1.000001")))
}

func TestTransaction_ContinuesFrom(t *testing.T) {
	first := &Transaction{
		BalanceBefore: BalanceSnapshot{Gold: dec("0"), SAR: dec("1000")},
		BalanceAfter:  BalanceSnapshot{Gold: dec("5"), SAR: dec("490")},
	}
	second := &Transaction{
		BalanceBefore: BalanceSnapshot{Gold: dec("5"), SAR: dec("490")},
		BalanceAfter:  BalanceSnapshot{Gold: dec("5"), SAR: dec("990")},
	}
	broken := &Transaction{
		BalanceBefore: BalanceSnapshot{Gold: dec("4"), SAR: dec("490")},
	}

	assert.True(t, second.ContinuesFrom(first))
	assert.False(t, broken.ContinuesFrom(first))
}

func TestOrder_Transitions(t *testing.T) {
	pending := &Order{Status: OrderStatusPending}
	executed := &Order{Status: OrderStatusExecuted}

	assert.True(t, pending.IsCancellable())
	assert.False(t, pending.IsTerminal())
	assert.False(t, executed.IsCancellable())
	assert.True(t, executed.IsTerminal())
}

func TestPriceSnapshot_Age(t *testing.T) {
	now := time.Now().UTC()
	snap := &PriceSnapshot{CreatedAt: now.Add(-45 * time.Second)}

	assert.Equal(t, 45*time.Second, snap.Age(now))
}
