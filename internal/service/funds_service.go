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

// FundsServiceImpl implements ports.FundsService. It shares the per-user lock
// table with trading so cash movements and settlements never interleave for
// the same wallet.
type FundsServiceImpl struct {
	walletRepo ports.WalletRepository
	txRepo     ports.TransactionRepository
	transactor ports.Transactor
	locks      *UserLocks
	log        zerolog.Logger

	now func() time.Time
}

// NewFundsService creates a new FundsServiceImpl.
func NewFundsService(
	walletRepo ports.WalletRepository,
	txRepo ports.TransactionRepository,
	transactor ports.Transactor,
	locks *UserLocks,
	log zerolog.Logger,
) *FundsServiceImpl {
	return &FundsServiceImpl{
		walletRepo: walletRepo,
		txRepo:     txRepo,
		transactor: transactor,
		locks:      locks,
		log:        log,
		now:        time.Now,
	}
}

// Deposit credits the cash balance.
func (s *FundsServiceImpl) Deposit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*ports.FundsResult, error) {
	if !amount.IsPositive() {
		return nil, apperror.Validation("deposit amount must be positive")
	}
	if !domain.FitsScale(amount, domain.CashScale) {
		return nil, apperror.Validation(fmt.Sprintf("cash amount supports at most %d decimal places", domain.CashScale))
	}
	return s.moveCash(ctx, userID, amount, domain.TransactionTypeDeposit)
}

// Withdraw debits the cash balance. Gold holdings are unaffected.
func (s *FundsServiceImpl) Withdraw(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*ports.FundsResult, error) {
	if !amount.IsPositive() {
		return nil, apperror.Validation("withdrawal amount must be positive")
	}
	if !domain.FitsScale(amount, domain.CashScale) {
		return nil, apperror.Validation(fmt.Sprintf("cash amount supports at most %d decimal places", domain.CashScale))
	}
	return s.moveCash(ctx, userID, amount.Neg(), domain.TransactionTypeWithdrawal)
}

// GetWallet fetches the user's wallet, creating an empty one on first access.
func (s *FundsServiceImpl) GetWallet(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error) {
	wallet, err := s.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, apperror.ErrStoreUnavailable(fmt.Errorf("load wallet: %w", err))
	}
	if wallet != nil {
		return wallet, nil
	}

	unlock := s.locks.Lock(userID)
	defer unlock()

	var created *domain.Wallet
	err = s.transactor.WithinOptionalTx(ctx, func(ctx context.Context, db ports.DB) error {
		// Re-check under the lock; a concurrent request may have won.
		existing, err := s.walletRepo.GetByUserIDForUpdate(ctx, db, userID)
		if err != nil {
			return fmt.Errorf("load wallet: %w", err)
		}
		if existing != nil {
			created = existing
			return nil
		}
		created = domain.NewWallet(userID)
		return s.walletRepo.Create(ctx, db, created)
	})
	if err != nil {
		return nil, apperror.ErrStoreUnavailable(err)
	}
	return created, nil
}

func (s *FundsServiceImpl) moveCash(ctx context.Context, userID uuid.UUID, deltaSAR decimal.Decimal, txType domain.TransactionType) (*ports.FundsResult, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	var (
		result *ports.FundsResult
		bizErr *apperror.AppError
	)

	for attempt := 0; ; attempt++ {
		err := s.transactor.WithinOptionalTx(ctx, func(ctx context.Context, db ports.DB) error {
			wallet, err := s.walletRepo.GetByUserIDForUpdate(ctx, db, userID)
			if err != nil {
				return fmt.Errorf("lock wallet: %w", err)
			}
			if wallet == nil {
				if deltaSAR.IsNegative() {
					bizErr = apperror.ErrWalletNotFound()
					return nil
				}
				wallet = domain.NewWallet(userID)
				if err := s.walletRepo.Create(ctx, db, wallet); err != nil {
					return fmt.Errorf("create wallet: %w", err)
				}
			}

			if deltaSAR.IsNegative() && wallet.SARBalance.LessThan(deltaSAR.Neg()) {
				bizErr = apperror.ErrInsufficientFunds()
				return nil
			}

			now := s.now().UTC()
			before := wallet.Balances()
			wallet.ApplyCash(deltaSAR, now)

			if err := s.walletRepo.UpdateBalances(ctx, db, wallet); err != nil {
				return fmt.Errorf("update wallet: %w", err)
			}

			txn := &domain.Transaction{
				ID:            uuid.New(),
				UserID:        userID,
				Type:          txType,
				AmountGold:    decimal.Zero,
				AmountSAR:     deltaSAR,
				Status:        domain.TransactionStatusCompleted,
				BalanceBefore: before,
				BalanceAfter:  wallet.Balances(),
				CreatedAt:     now,
			}
			if err := s.txRepo.Create(ctx, db, txn); err != nil {
				return fmt.Errorf("create transaction: %w", err)
			}

			result = &ports.FundsResult{Transaction: txn, NewBalances: wallet.Balances()}
			return nil
		})
		if err == nil {
			break
		}
		if errors.Is(err, ports.ErrVersionConflict) && attempt+1 < maxVersionRetries {
			s.log.Warn().
				Str("user_id", userID.String()).
				Int("attempt", attempt+1).
				Msg("wallet version conflict, retrying cash movement")
			continue
		}
		return nil, apperror.ErrStoreUnavailable(err)
	}
	if bizErr != nil {
		return nil, bizErr
	}

	s.log.Info().
		Str("user_id", userID.String()).
		Str("type", string(txType)).
		Str("amount_sar", deltaSAR.Abs().String()).
		Msg("cash movement completed")

	return result, nil
}
