package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gold-trading-gateway/internal/core/domain"
	"gold-trading-gateway/internal/core/ports"
	"gold-trading-gateway/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// maxVersionRetries bounds optimistic-concurrency retries. Conflicts only
// occur across instances; in-process concurrency is serialized by UserLocks.
const maxVersionRetries = 3

// TradingServiceImpl implements ports.TradingService. It is the only writer
// of wallet balances for trading activity.
type TradingServiceImpl struct {
	walletRepo   ports.WalletRepository
	orderRepo    ports.OrderRepository
	txRepo       ports.TransactionRepository
	settingsRepo ports.SettingsRepository
	pricing      ports.PricingService
	transactor   ports.Transactor
	locks        *UserLocks
	log          zerolog.Logger

	now func() time.Time
}

// NewTradingService creates a new TradingServiceImpl.
func NewTradingService(
	walletRepo ports.WalletRepository,
	orderRepo ports.OrderRepository,
	txRepo ports.TransactionRepository,
	settingsRepo ports.SettingsRepository,
	pricing ports.PricingService,
	transactor ports.Transactor,
	locks *UserLocks,
	log zerolog.Logger,
) *TradingServiceImpl {
	return &TradingServiceImpl{
		walletRepo:   walletRepo,
		orderRepo:    orderRepo,
		txRepo:       txRepo,
		settingsRepo: settingsRepo,
		pricing:      pricing,
		transactor:   transactor,
		locks:        locks,
		log:          log,
		now:          time.Now,
	}
}

// ExecuteTrade settles a buy or sell at the current snapshot price.
//
// Validation and sufficiency failures happen before any wallet mutation and
// are never retried. All writes go through one optional-transaction scope in
// the order wallet, order, transaction, so a partial failure on a
// non-atomic store is biased toward moved money with an incomplete audit
// trail, which reconciliation can repair, rather than the reverse.
func (s *TradingServiceImpl) ExecuteTrade(ctx context.Context, req ports.TradeRequest) (*ports.TradeResult, error) {
	if req.Side != domain.OrderSideBuy && req.Side != domain.OrderSideSell {
		return nil, apperror.Validation(fmt.Sprintf("unknown order side %q", req.Side))
	}
	if !req.Amount.IsPositive() {
		return nil, apperror.Validation("trade amount must be positive")
	}
	if !domain.FitsScale(req.Amount, domain.AmountScale) {
		return nil, apperror.Validation(fmt.Sprintf("trade amount supports at most %d decimal places", domain.AmountScale))
	}

	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, apperror.ErrStoreUnavailable(fmt.Errorf("load settings: %w", err))
	}
	if !settings.AmountInBounds(req.Amount) {
		return nil, apperror.ErrAmountOutOfRange(settings.MinTradeAmount.String(), settings.MaxTradeAmount.String())
	}

	// Quote before locking: pricing may itself trigger a synchronous refresh.
	quote, err := s.pricing.GetCurrentPrices(ctx)
	if err != nil {
		return nil, err
	}

	pricePerGram := quote.BuyPrice
	if req.Side == domain.OrderSideSell {
		pricePerGram = quote.SellPrice
	}
	totalSAR := req.Amount.Mul(pricePerGram)

	unlock := s.locks.Lock(req.UserID)
	defer unlock()

	var result *ports.TradeResult
	for attempt := 0; ; attempt++ {
		result, err = s.settle(ctx, req, quote, pricePerGram, totalSAR)
		if !errors.Is(err, ports.ErrVersionConflict) {
			break
		}
		if attempt+1 >= maxVersionRetries {
			return nil, apperror.ErrStoreUnavailable(fmt.Errorf("wallet contention for user %s: %w", req.UserID, err))
		}
		s.log.Warn().
			Str("user_id", req.UserID.String()).
			Int("attempt", attempt+1).
			Msg("wallet version conflict, retrying trade settlement")
	}
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("user_id", req.UserID.String()).
		Str("order_id", result.Order.ID.String()).
		Str("side", string(req.Side)).
		Str("grams", req.Amount.String()).
		Str("total_sar", totalSAR.String()).
		Str("snapshot_id", quote.SnapshotID.String()).
		Msg("trade executed")

	return result, nil
}

// settle runs one settlement attempt inside a coordinator scope.
func (s *TradingServiceImpl) settle(
	ctx context.Context,
	req ports.TradeRequest,
	quote *ports.PriceQuote,
	pricePerGram, totalSAR decimal.Decimal,
) (*ports.TradeResult, error) {
	var (
		result *ports.TradeResult
		bizErr *apperror.AppError
	)

	err := s.transactor.WithinOptionalTx(ctx, func(ctx context.Context, db ports.DB) error {
		wallet, err := s.walletRepo.GetByUserIDForUpdate(ctx, db, req.UserID)
		if err != nil {
			return fmt.Errorf("lock wallet: %w", err)
		}
		if wallet == nil {
			if req.Side == domain.OrderSideSell {
				// Nothing to sell from; do not create an empty wallet here.
				bizErr = apperror.ErrWalletNotFound()
				return nil
			}
			wallet = domain.NewWallet(req.UserID)
			if err := s.walletRepo.Create(ctx, db, wallet); err != nil {
				return fmt.Errorf("create wallet: %w", err)
			}
		}

		now := s.now().UTC()
		before := wallet.Balances()

		sufficient := wallet.CanBuy(totalSAR)
		if req.Side == domain.OrderSideSell {
			sufficient = wallet.CanSell(req.Amount)
		}
		if !sufficient {
			// The wallet stays untouched; the failed attempt is still
			// recorded so the ledger explains every order id a client saw.
			if err := s.recordFailure(ctx, db, req, quote, pricePerGram, totalSAR, before, now); err != nil {
				return err
			}
			if req.Side == domain.OrderSideBuy {
				bizErr = apperror.ErrInsufficientFunds()
			} else {
				bizErr = apperror.ErrInsufficientHoldings()
			}
			return nil
		}

		if req.Side == domain.OrderSideBuy {
			wallet.ApplyBuy(req.Amount, totalSAR, now)
		} else {
			wallet.ApplySell(req.Amount, totalSAR, now)
		}

		if err := s.walletRepo.UpdateBalances(ctx, db, wallet); err != nil {
			return fmt.Errorf("update wallet: %w", err)
		}

		order := &domain.Order{
			ID:           uuid.New(),
			UserID:       req.UserID,
			Side:         req.Side,
			GoldAmount:   req.Amount,
			PricePerGram: pricePerGram,
			TotalSAR:     totalSAR,
			Status:       domain.OrderStatusExecuted,
			SnapshotID:   quote.SnapshotID,
			ExecutionDetails: domain.ExecutionDetails{
				LockedPrice: pricePerGram,
				Spread:      quote.Spread,
			},
			CreatedAt:  now,
			ExecutedAt: &now,
		}
		if err := s.orderRepo.Create(ctx, db, order); err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		txn := buildTradeTransaction(req, order, before, wallet.Balances(), domain.TransactionStatusCompleted, now)
		if err := s.txRepo.Create(ctx, db, txn); err != nil {
			return fmt.Errorf("create transaction: %w", err)
		}

		result = &ports.TradeResult{Order: order, NewBalances: wallet.Balances()}
		return nil
	})
	if err != nil {
		if errors.Is(err, ports.ErrVersionConflict) {
			return nil, err
		}
		return nil, apperror.ErrStoreUnavailable(err)
	}
	if bizErr != nil {
		return nil, bizErr
	}
	return result, nil
}

// recordFailure persists a FAILED order and matching audit entry for a trade
// rejected on sufficiency. Both carry zero balance movement.
func (s *TradingServiceImpl) recordFailure(
	ctx context.Context,
	db ports.DB,
	req ports.TradeRequest,
	quote *ports.PriceQuote,
	pricePerGram, totalSAR decimal.Decimal,
	balances domain.BalanceSnapshot,
	now time.Time,
) error {
	order := &domain.Order{
		ID:           uuid.New(),
		UserID:       req.UserID,
		Side:         req.Side,
		GoldAmount:   req.Amount,
		PricePerGram: pricePerGram,
		TotalSAR:     totalSAR,
		Status:       domain.OrderStatusFailed,
		SnapshotID:   quote.SnapshotID,
		ExecutionDetails: domain.ExecutionDetails{
			LockedPrice: pricePerGram,
			Spread:      quote.Spread,
		},
		CreatedAt: now,
	}
	if err := s.orderRepo.Create(ctx, db, order); err != nil {
		return fmt.Errorf("create failed order: %w", err)
	}

	txn := buildTradeTransaction(req, order, balances, balances, domain.TransactionStatusFailed, now)
	if err := s.txRepo.Create(ctx, db, txn); err != nil {
		return fmt.Errorf("create failed transaction: %w", err)
	}
	return nil
}

func buildTradeTransaction(
	req ports.TradeRequest,
	order *domain.Order,
	before, after domain.BalanceSnapshot,
	status domain.TransactionStatus,
	now time.Time,
) *domain.Transaction {
	txType := domain.TransactionTypeBuy
	amountGold := req.Amount
	amountSAR := order.TotalSAR.Neg()
	if req.Side == domain.OrderSideSell {
		txType = domain.TransactionTypeSell
		amountGold = req.Amount.Neg()
		amountSAR = order.TotalSAR
	}
	if status == domain.TransactionStatusFailed {
		amountGold, amountSAR = decimal.Zero, decimal.Zero
	}

	orderID := order.ID
	return &domain.Transaction{
		ID:            uuid.New(),
		UserID:        req.UserID,
		Type:          txType,
		OrderID:       &orderID,
		AmountGold:    amountGold,
		AmountSAR:     amountSAR,
		Status:        status,
		BalanceBefore: before,
		BalanceAfter:  after,
		CreatedAt:     now,
	}
}
