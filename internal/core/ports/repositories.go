package ports

import (
	"context"
	"errors"

	"gold-trading-gateway/internal/core/domain"

	"github.com/google/uuid"
)

// ErrVersionConflict is returned by WalletRepository.UpdateBalances when the
// wallet row changed under the caller (optimistic concurrency check failed).
var ErrVersionConflict = errors.New("wallet version conflict")

// UserRepository defines persistence operations for user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

// WalletRepository defines persistence operations for wallets.
// Methods accepting a DB run inside an optional-transaction scope.
type WalletRepository interface {
	Create(ctx context.Context, db DB, wallet *domain.Wallet) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error)
	// GetByUserIDForUpdate locks the wallet row for the duration of the scope.
	GetByUserIDForUpdate(ctx context.Context, db DB, userID uuid.UUID) (*domain.Wallet, error)
	// UpdateBalances persists all balance fields, checking and advancing the
	// version column. Returns ErrVersionConflict on a lost update.
	UpdateBalances(ctx context.Context, db DB, wallet *domain.Wallet) error
}

// OrderRepository defines persistence operations for orders.
type OrderRepository interface {
	Create(ctx context.Context, db DB, order *domain.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.Order, error)
	// Cancel transitions an order from PENDING to CANCELLED. Any other source
	// state leaves the row untouched and reports no rows affected.
	Cancel(ctx context.Context, id uuid.UUID) (bool, error)
}

// TransactionRepository defines persistence for the append-only audit ledger.
// Entries are write-once: there are deliberately no update or delete methods.
type TransactionRepository interface {
	Create(ctx context.Context, db DB, txn *domain.Transaction) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.Transaction, error)
}

// SnapshotRepository defines persistence for price snapshots (append-only).
type SnapshotRepository interface {
	Create(ctx context.Context, snapshot *domain.PriceSnapshot) error
	Latest(ctx context.Context, metal domain.Metal) (*domain.PriceSnapshot, error)
	ListRecent(ctx context.Context, metal domain.Metal, limit int) ([]domain.PriceSnapshot, error)
}

// SettingsRepository manages the singleton merchant configuration row.
type SettingsRepository interface {
	// Get returns the configuration, creating it with documented defaults on
	// first access.
	Get(ctx context.Context) (*domain.Settings, error)
	// Update applies an allow-listed partial update and returns the result.
	Update(ctx context.Context, patch SettingsPatch) (*domain.Settings, error)
}
