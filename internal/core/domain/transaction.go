package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType names the balance-affecting event recorded by an audit entry.
type TransactionType string

const (
	TransactionTypeBuy        TransactionType = "BUY"
	TransactionTypeSell       TransactionType = "SELL"
	TransactionTypeDeposit    TransactionType = "DEPOSIT"
	TransactionTypeWithdrawal TransactionType = "WITHDRAWAL"
	TransactionTypeDelivery   TransactionType = "DELIVERY_RESERVATION"
)

// TransactionStatus is the outcome recorded on an audit entry.
type TransactionStatus string

const (
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
)

// BalanceSnapshot captures both wallet balances at a moment in time.
type BalanceSnapshot struct {
	Gold decimal.Decimal `json:"gold"`
	SAR  decimal.Decimal `json:"sar"`
}

// Transaction is an append-only audit entry for one balance-affecting event.
// For a given wallet, balanceAfter of entry n equals balanceBefore of entry
// n+1 when ordered by creation time. Entries are never mutated or deleted.
type Transaction struct {
	ID            uuid.UUID         `json:"id"`
	UserID        uuid.UUID         `json:"userId"`
	Type          TransactionType   `json:"type"`
	OrderID       *uuid.UUID        `json:"orderId,omitempty"`
	AmountGold    decimal.Decimal   `json:"amountGold"` // signed delta, grams
	AmountSAR     decimal.Decimal   `json:"amountSAR"`  // signed delta
	Status        TransactionStatus `json:"status"`
	BalanceBefore BalanceSnapshot   `json:"balanceBefore"`
	BalanceAfter  BalanceSnapshot   `json:"balanceAfter"`
	CreatedAt     time.Time         `json:"createdAt"`
}

// ContinuesFrom reports whether this entry's before-state matches the
// after-state of the previous entry for the same wallet.
func (t *Transaction) ContinuesFrom(prev *Transaction) bool {
	return t.BalanceBefore.Gold.Equal(prev.BalanceAfter.Gold) &&
		t.BalanceBefore.SAR.Equal(prev.BalanceAfter.SAR)
}
