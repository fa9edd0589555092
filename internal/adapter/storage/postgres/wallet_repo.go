package postgres

import (
	"context"
	"errors"
	"fmt"

	"gold-trading-gateway/internal/core/domain"
	"gold-trading-gateway/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// WalletRepo implements ports.WalletRepository.
type WalletRepo struct {
	pool Pool
}

// NewWalletRepo creates a new WalletRepo.
func NewWalletRepo(pool Pool) *WalletRepo {
	return &WalletRepo{pool: pool}
}

const walletColumns = `id, user_id, gold_balance, sar_balance, total_gold_bought, total_gold_sold, version, created_at, last_updated`

// Create inserts a new wallet within the given scope.
func (r *WalletRepo) Create(ctx context.Context, db ports.DB, w *domain.Wallet) error {
	query := `INSERT INTO wallets (id, user_id, gold_balance, sar_balance, total_gold_bought, total_gold_sold, version, created_at, last_updated)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := db.Exec(ctx, query,
		w.ID, w.UserID, w.GoldBalance, w.SARBalance,
		w.TotalGoldBought, w.TotalGoldSold, w.Version, w.CreatedAt, w.LastUpdated,
	)
	if err != nil {
		return fmt.Errorf("insert wallet: %w", err)
	}
	return nil
}

// GetByUserID fetches a wallet by user id (non-locking read).
func (r *WalletRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE user_id = $1`
	return scanWallet(r.pool.QueryRow(ctx, query, userID))
}

// GetByUserIDForUpdate fetches a wallet with a row lock held for the scope.
func (r *WalletRepo) GetByUserIDForUpdate(ctx context.Context, db ports.DB, userID uuid.UUID) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE user_id = $1 FOR UPDATE`
	return scanWallet(db.QueryRow(ctx, query, userID))
}

// UpdateBalances persists all balance fields, checking and advancing the
// version column. A row that moved under us returns ErrVersionConflict.
func (r *WalletRepo) UpdateBalances(ctx context.Context, db ports.DB, w *domain.Wallet) error {
	query := `UPDATE wallets
		SET gold_balance = $1, sar_balance = $2, total_gold_bought = $3, total_gold_sold = $4,
			last_updated = $5, version = version + 1
		WHERE id = $6 AND version = $7`

	tag, err := db.Exec(ctx, query,
		w.GoldBalance, w.SARBalance, w.TotalGoldBought, w.TotalGoldSold,
		w.LastUpdated, w.ID, w.Version,
	)
	if err != nil {
		return fmt.Errorf("update wallet balances: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ports.ErrVersionConflict
	}
	w.Version++
	return nil
}

func scanWallet(row pgx.Row) (*domain.Wallet, error) {
	w := &domain.Wallet{}
	err := row.Scan(
		&w.ID, &w.UserID, &w.GoldBalance, &w.SARBalance,
		&w.TotalGoldBought, &w.TotalGoldSold, &w.Version, &w.CreatedAt, &w.LastUpdated,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan wallet: %w", err)
	}
	return w, nil
}
