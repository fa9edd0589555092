package postgres

import (
	"context"
	"fmt"

	"gold-trading-gateway/internal/core/domain"
	"gold-trading-gateway/internal/core/ports"

	"github.com/google/uuid"
)

// TransactionRepo implements ports.TransactionRepository. The ledger is
// append-only: this repo deliberately has no update or delete methods.
type TransactionRepo struct {
	pool Pool
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(pool Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

const transactionColumns = `id, user_id, type, order_id, amount_gold, amount_sar, status, gold_before, sar_before, gold_after, sar_after, created_at`

// Create appends an audit entry within the given scope.
func (r *TransactionRepo) Create(ctx context.Context, db ports.DB, t *domain.Transaction) error {
	query := `INSERT INTO transactions (id, user_id, type, order_id, amount_gold, amount_sar, status, gold_before, sar_before, gold_after, sar_after, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := db.Exec(ctx, query,
		t.ID, t.UserID, t.Type, t.OrderID, t.AmountGold, t.AmountSAR, t.Status,
		t.BalanceBefore.Gold, t.BalanceBefore.SAR, t.BalanceAfter.Gold, t.BalanceAfter.SAR,
		t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// ListByUser fetches a user's audit entries, newest first.
func (r *TransactionRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txns []domain.Transaction
	for rows.Next() {
		t := domain.Transaction{}
		err := rows.Scan(
			&t.ID, &t.UserID, &t.Type, &t.OrderID, &t.AmountGold, &t.AmountSAR, &t.Status,
			&t.BalanceBefore.Gold, &t.BalanceBefore.SAR, &t.BalanceAfter.Gold, &t.BalanceAfter.SAR,
			&t.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan transaction row: %w", err)
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transaction rows: %w", err)
	}
	return txns, nil
}
