package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderSide is the direction of a trade.
type OrderSide string

const (
	OrderSideBuy  OrderSide = "BUY"
	OrderSideSell OrderSide = "SELL"
)

// OrderStatus is the lifecycle state of an order.
// Trades are created directly in EXECUTED; FAILED orders never touched the
// wallet; the only admin-driven transition is PENDING -> CANCELLED.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusExecuted  OrderStatus = "EXECUTED"
	OrderStatusFailed    OrderStatus = "FAILED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// ExecutionDetails captures the locked price and spread at execution time.
type ExecutionDetails struct {
	LockedPrice decimal.Decimal `json:"lockedPrice"` // per gram, quote currency
	Spread      decimal.Decimal `json:"spread"`
}

// Order is one trade attempt, bound to the price snapshot it executed against.
// Immutable once executed.
type Order struct {
	ID               uuid.UUID        `json:"id"`
	UserID           uuid.UUID        `json:"userId"`
	Side             OrderSide        `json:"side"`
	GoldAmount       decimal.Decimal  `json:"goldAmount"` // grams
	PricePerGram     decimal.Decimal  `json:"pricePerGram"`
	TotalSAR         decimal.Decimal  `json:"totalSAR"`
	Status           OrderStatus      `json:"status"`
	SnapshotID       uuid.UUID        `json:"snapshotId"`
	ExecutionDetails ExecutionDetails `json:"executionDetails"`
	CreatedAt        time.Time        `json:"createdAt"`
	ExecutedAt       *time.Time       `json:"executedAt,omitempty"`
}

// IsCancellable reports whether the admin cancel transition applies.
func (o *Order) IsCancellable() bool {
	return o.Status == OrderStatusPending
}

// IsTerminal reports whether the order reached a final state.
func (o *Order) IsTerminal() bool {
	return o.Status == OrderStatusExecuted ||
		o.Status == OrderStatusFailed ||
		o.Status == OrderStatusCancelled
}
