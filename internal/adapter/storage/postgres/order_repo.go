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

// OrderRepo implements ports.OrderRepository.
type OrderRepo struct {
	pool Pool
}

// NewOrderRepo creates a new OrderRepo.
func NewOrderRepo(pool Pool) *OrderRepo {
	return &OrderRepo{pool: pool}
}

const orderColumns = `id, user_id, side, gold_amount, price_per_gram, total_sar, status, snapshot_id, locked_price, locked_spread, created_at, executed_at`

// Create inserts a new order within the given scope.
func (r *OrderRepo) Create(ctx context.Context, db ports.DB, o *domain.Order) error {
	query := `INSERT INTO orders (id, user_id, side, gold_amount, price_per_gram, total_sar, status, snapshot_id, locked_price, locked_spread, created_at, executed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := db.Exec(ctx, query,
		o.ID, o.UserID, o.Side, o.GoldAmount, o.PricePerGram, o.TotalSAR,
		o.Status, o.SnapshotID, o.ExecutionDetails.LockedPrice, o.ExecutionDetails.Spread,
		o.CreatedAt, o.ExecutedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// GetByID fetches an order by id.
func (r *OrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	return scanOrder(r.pool.QueryRow(ctx, query, id))
}

// ListByUser fetches a user's orders, newest first.
func (r *OrderRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o := domain.Order{}
		err := rows.Scan(
			&o.ID, &o.UserID, &o.Side, &o.GoldAmount, &o.PricePerGram, &o.TotalSAR,
			&o.Status, &o.SnapshotID, &o.ExecutionDetails.LockedPrice, &o.ExecutionDetails.Spread,
			&o.CreatedAt, &o.ExecutedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}
	return orders, nil
}

// Cancel transitions an order from PENDING to CANCELLED. Returns false when
// the order is missing or not pending; the row stays untouched either way.
func (r *OrderRepo) Cancel(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `UPDATE orders SET status = $1 WHERE id = $2 AND status = $3`

	tag, err := r.pool.Exec(ctx, query, domain.OrderStatusCancelled, id, domain.OrderStatusPending)
	if err != nil {
		return false, fmt.Errorf("cancel order: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	o := &domain.Order{}
	err := row.Scan(
		&o.ID, &o.UserID, &o.Side, &o.GoldAmount, &o.PricePerGram, &o.TotalSAR,
		&o.Status, &o.SnapshotID, &o.ExecutionDetails.LockedPrice, &o.ExecutionDetails.Spread,
		&o.CreatedAt, &o.ExecutedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}
	return o, nil
}
