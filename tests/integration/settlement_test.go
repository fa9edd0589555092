package integration

import (
	"context"
	"sync"
	"testing"

	"gold-trading-gateway/internal/core/domain"
	"gold-trading-gateway/internal/core/ports"
	"gold-trading-gateway/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// settlementStack wires the real service layer over in-memory stores.
type settlementStack struct {
	trading  ports.TradingService
	funds    ports.FundsService
	pricing  ports.PricingService
	wallets  *inMemoryWalletRepo
	orders   *inMemoryOrderRepo
	txns     *inMemoryTransactionRepo
	settings *inMemorySettingsRepo
}

// newSettlementStack builds the stack with spot 100 USD/g and conversion
// rate 1, so the default settings yield buy 102 and sell 98 exactly.
func newSettlementStack(t *testing.T) *settlementStack {
	t.Helper()

	wallets := newInMemoryWalletRepo()
	orders := newInMemoryOrderRepo()
	txns := newInMemoryTransactionRepo()
	snapshots := newInMemorySnapshotRepo()
	settings := newInMemorySettingsRepo()
	transactor := newInMemoryTransactor()
	locks := service.NewUserLocks()
	log := zerolog.Nop()

	pricing := service.NewPricingService(
		snapshots, settings,
		&fixedSpotSource{price: decimal.NewFromInt(100)},
		nil, // no shared ticker cache in these tests
		decimal.NewFromInt(1),
		log,
	)
	trading := service.NewTradingService(wallets, orders, txns, settings, pricing, transactor, locks, log)
	funds := service.NewFundsService(wallets, txns, transactor, locks, log)

	require.NoError(t, pricing.EnsureHistory(context.Background()))

	return &settlementStack{
		trading:  trading,
		funds:    funds,
		pricing:  pricing,
		wallets:  wallets,
		orders:   orders,
		txns:     txns,
		settings: settings,
	}
}

func TestSettlement_QuoteFormula(t *testing.T) {
	s := newSettlementStack(t)

	quote, err := s.pricing.GetCurrentPrices(context.Background())
	require.NoError(t, err)

	assert.True(t, quote.SpotPrice.Equal(decimal.NewFromInt(100)), "spot %s", quote.SpotPrice)
	assert.True(t, quote.BuyPrice.Equal(decimal.NewFromInt(102)), "buy %s", quote.BuyPrice)
	assert.True(t, quote.SellPrice.Equal(decimal.NewFromInt(98)), "sell %s", quote.SellPrice)
}

func TestSettlement_SnapshotStableWithinInterval(t *testing.T) {
	s := newSettlementStack(t)
	ctx := context.Background()

	first, err := s.pricing.GetCurrentPrices(ctx)
	require.NoError(t, err)
	second, err := s.pricing.GetCurrentPrices(ctx)
	require.NoError(t, err)

	assert.Equal(t, first.SnapshotID, second.SnapshotID)
}

func TestSettlement_ExactTotals(t *testing.T) {
	s := newSettlementStack(t)
	ctx := context.Background()
	userID := uuid.New()

	_, err := s.funds.Deposit(ctx, userID, decimal.NewFromInt(1000))
	require.NoError(t, err)

	amount := decimal.RequireFromString("3.333")
	result, err := s.trading.ExecuteTrade(ctx, ports.TradeRequest{
		UserID: userID, Side: domain.OrderSideBuy, Amount: amount,
	})
	require.NoError(t, err)

	// total = amount × price, exact under decimal arithmetic
	wantTotal := amount.Mul(decimal.NewFromInt(102))
	assert.True(t, result.Order.TotalSAR.Equal(wantTotal),
		"total %s want %s", result.Order.TotalSAR, wantTotal)
	assert.True(t, result.NewBalances.SAR.Equal(decimal.NewFromInt(1000).Sub(wantTotal)))
	assert.True(t, result.NewBalances.Gold.Equal(amount))
}

func TestSettlement_AuditChainContinuity(t *testing.T) {
	s := newSettlementStack(t)
	ctx := context.Background()
	userID := uuid.New()

	_, err := s.funds.Deposit(ctx, userID, decimal.NewFromInt(2000))
	require.NoError(t, err)
	_, err = s.trading.ExecuteTrade(ctx, ports.TradeRequest{
		UserID: userID, Side: domain.OrderSideBuy, Amount: decimal.NewFromInt(5),
	})
	require.NoError(t, err)
	_, err = s.trading.ExecuteTrade(ctx, ports.TradeRequest{
		UserID: userID, Side: domain.OrderSideSell, Amount: decimal.NewFromInt(2),
	})
	require.NoError(t, err)
	_, err = s.funds.Withdraw(ctx, userID, decimal.NewFromInt(100))
	require.NoError(t, err)

	entries := s.txns.allByUser(userID)
	require.Len(t, entries, 4)

	// First entry starts from empty
	assert.True(t, entries[0].BalanceBefore.Gold.IsZero())
	assert.True(t, entries[0].BalanceBefore.SAR.IsZero())

	for i := 1; i < len(entries); i++ {
		assert.True(t, entries[i].ContinuesFrom(&entries[i-1]),
			"entry %d does not continue from entry %d", i, i-1)
	}

	// Every entry's after-state is its before-state plus its deltas.
	for i, e := range entries {
		assert.True(t, e.BalanceAfter.Gold.Equal(e.BalanceBefore.Gold.Add(e.AmountGold)), "entry %d gold", i)
		assert.True(t, e.BalanceAfter.SAR.Equal(e.BalanceBefore.SAR.Add(e.AmountSAR)), "entry %d sar", i)
	}
}

func TestSettlement_BoundsRejectionWritesNothing(t *testing.T) {
	s := newSettlementStack(t)
	ctx := context.Background()
	userID := uuid.New()

	_, err := s.funds.Deposit(ctx, userID, decimal.NewFromInt(1000))
	require.NoError(t, err)

	_, err = s.trading.ExecuteTrade(ctx, ports.TradeRequest{
		UserID: userID, Side: domain.OrderSideBuy, Amount: decimal.RequireFromString("0.001"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TRD_001")

	orders, err := s.orders.ListByUser(ctx, userID, 100, 0)
	require.NoError(t, err)
	assert.Empty(t, orders, "out-of-bounds trades must not produce orders")
	assert.Len(t, s.txns.allByUser(userID), 1, "only the deposit entry exists")
}

func TestSettlement_InsufficiencyLeavesWalletUntouched(t *testing.T) {
	s := newSettlementStack(t)
	ctx := context.Background()
	userID := uuid.New()

	_, err := s.funds.Deposit(ctx, userID, decimal.NewFromInt(100))
	require.NoError(t, err)

	// 5 g × 102 = 510 > 100
	_, err = s.trading.ExecuteTrade(ctx, ports.TradeRequest{
		UserID: userID, Side: domain.OrderSideBuy, Amount: decimal.NewFromInt(5),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TRD_002")

	wallet, err := s.wallets.GetByUserID(ctx, userID)
	require.NoError(t, err)
	assert.True(t, wallet.SARBalance.Equal(decimal.NewFromInt(100)))
	assert.True(t, wallet.GoldBalance.IsZero())

	// The rejection itself is recorded: a FAILED order and a zero-delta
	// FAILED audit entry.
	orders, err := s.orders.ListByUser(ctx, userID, 100, 0)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, domain.OrderStatusFailed, orders[0].Status)

	entries := s.txns.allByUser(userID)
	require.Len(t, entries, 2)
	failed := entries[1]
	assert.Equal(t, domain.TransactionStatusFailed, failed.Status)
	assert.True(t, failed.AmountGold.IsZero())
	assert.True(t, failed.AmountSAR.IsZero())
	assert.True(t, failed.ContinuesFrom(&entries[0]))
}

func TestSettlement_ConcurrentTradesKeepInvariants(t *testing.T) {
	s := newSettlementStack(t)
	ctx := context.Background()
	userID := uuid.New()

	_, err := s.funds.Deposit(ctx, userID, decimal.NewFromInt(10000))
	require.NoError(t, err)

	const workers = 16
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		side := domain.OrderSideBuy
		if i%2 == 1 {
			side = domain.OrderSideSell
		}
		go func(side domain.OrderSide) {
			defer wg.Done()
			// Sells may fail on insufficient holdings; that is a valid
			// outcome, the invariants below are what matters.
			_, _ = s.trading.ExecuteTrade(ctx, ports.TradeRequest{
				UserID: userID, Side: side, Amount: decimal.NewFromInt(1),
			})
		}(side)
	}
	wg.Wait()

	wallet, err := s.wallets.GetByUserID(ctx, userID)
	require.NoError(t, err)
	assert.False(t, wallet.GoldBalance.IsNegative(), "gold balance went negative: %s", wallet.GoldBalance)
	assert.False(t, wallet.SARBalance.IsNegative(), "cash balance went negative: %s", wallet.SARBalance)

	// The audit chain stays contiguous under concurrency because the
	// per-user lock serializes settlement.
	entries := s.txns.allByUser(userID)
	for i := 1; i < len(entries); i++ {
		assert.True(t, entries[i].ContinuesFrom(&entries[i-1]),
			"entry %d does not continue from entry %d", i, i-1)
	}

	// Executed orders reconcile with the final balances.
	bought, sold := decimal.Zero, decimal.Zero
	orders, err := s.orders.ListByUser(ctx, userID, 100, 0)
	require.NoError(t, err)
	for _, o := range orders {
		if o.Status != domain.OrderStatusExecuted {
			continue
		}
		if o.Side == domain.OrderSideBuy {
			bought = bought.Add(o.GoldAmount)
		} else {
			sold = sold.Add(o.GoldAmount)
		}
	}
	assert.True(t, wallet.GoldBalance.Equal(bought.Sub(sold)),
		"gold %s != bought %s - sold %s", wallet.GoldBalance, bought, sold)
	assert.True(t, wallet.TotalGoldBought.Equal(bought))
	assert.True(t, wallet.TotalGoldSold.Equal(sold))
}

func TestSettlement_SettingsChangeAppliesToNextTrade(t *testing.T) {
	s := newSettlementStack(t)
	ctx := context.Background()
	userID := uuid.New()

	_, err := s.funds.Deposit(ctx, userID, decimal.NewFromInt(1000))
	require.NoError(t, err)

	// Tighten the max trade bound; the very next trade must see it.
	newMax := decimal.NewFromInt(2)
	_, err = s.settings.Update(ctx, ports.SettingsPatch{MaxTradeAmount: &newMax})
	require.NoError(t, err)

	_, err = s.trading.ExecuteTrade(ctx, ports.TradeRequest{
		UserID: userID, Side: domain.OrderSideBuy, Amount: decimal.NewFromInt(3),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TRD_001")

	_, err = s.trading.ExecuteTrade(ctx, ports.TradeRequest{
		UserID: userID, Side: domain.OrderSideBuy, Amount: decimal.NewFromInt(2),
	})
	assert.NoError(t, err)
}
