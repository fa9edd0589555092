package ports

import (
	"context"
	"time"

	"gold-trading-gateway/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- Pricing ---

// PriceQuote is the persisted-snapshot view served to trading and the UI.
type PriceQuote struct {
	Metal      domain.Metal    `json:"metal"`
	SpotPrice  decimal.Decimal `json:"spotPrice"` // per gram, quote currency
	BuyPrice   decimal.Decimal `json:"buyPrice"`
	SellPrice  decimal.Decimal `json:"sellPrice"`
	Spread     decimal.Decimal `json:"spread"`
	Timestamp  time.Time       `json:"timestamp"`
	SnapshotID uuid.UUID       `json:"snapshotId"`
}

// SpotTick is the short-TTL ticker view: same shape, no snapshot binding.
type SpotTick struct {
	Metal     domain.Metal    `json:"metal"`
	SpotPrice decimal.Decimal `json:"spotPrice"`
	BuyPrice  decimal.Decimal `json:"buyPrice"`
	SellPrice decimal.Decimal `json:"sellPrice"`
	Spread    decimal.Decimal `json:"spread"`
	Timestamp time.Time       `json:"timestamp"`
}

// PricingService produces buy/sell quotes in the platform currency.
type PricingService interface {
	// Refresh computes and persists a fresh snapshot for each supported metal.
	Refresh(ctx context.Context) ([]*domain.PriceSnapshot, error)
	// GetCurrentPrices returns the latest snapshot if it is younger than the
	// configured refresh interval, refreshing synchronously otherwise.
	GetCurrentPrices(ctx context.Context) (*PriceQuote, error)
	// GetSpotOnly serves the live ticker from a ~1 s cache; it never persists
	// and never fails while a previously cached value exists.
	GetSpotOnly(ctx context.Context) (*SpotTick, error)
}

// --- Trading (settlement) ---

// TradeRequest is the validated input for trade execution.
type TradeRequest struct {
	UserID uuid.UUID
	Side   domain.OrderSide
	Amount decimal.Decimal // grams
}

// TradeResult carries the executed order and the post-trade balances.
type TradeResult struct {
	Order       *domain.Order          `json:"order"`
	NewBalances domain.BalanceSnapshot `json:"newBalances"`
}

// TradingService is the only writer of wallet balances for trading activity.
type TradingService interface {
	ExecuteTrade(ctx context.Context, req TradeRequest) (*TradeResult, error)
}

// --- Funds (cash deposit/withdraw) ---

// FundsResult carries the audit entry and post-operation balances.
type FundsResult struct {
	Transaction *domain.Transaction    `json:"transaction"`
	NewBalances domain.BalanceSnapshot `json:"newBalances"`
}

// FundsService mutates the cash side of a wallet outside of trading.
type FundsService interface {
	Deposit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*FundsResult, error)
	Withdraw(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*FundsResult, error)
	// GetWallet fetches the user's wallet, creating it lazily if absent.
	GetWallet(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error)
}

// --- Administration ---

// SettingsPatch is the allow-listed partial update for merchant settings.
// nil fields are left unchanged; unknown keys are rejected at the boundary.
type SettingsPatch struct {
	Spread              *decimal.Decimal
	BuyMarkup           *decimal.Decimal
	SellMarkup          *decimal.Decimal
	MinTradeAmount      *decimal.Decimal
	MaxTradeAmount      *decimal.Decimal
	PriceUpdateInterval *time.Duration
}

// IsEmpty reports whether the patch changes nothing.
func (p SettingsPatch) IsEmpty() bool {
	return p.Spread == nil && p.BuyMarkup == nil && p.SellMarkup == nil &&
		p.MinTradeAmount == nil && p.MaxTradeAmount == nil && p.PriceUpdateInterval == nil
}

// AdminService covers the administrative surface: settings and order cancel.
type AdminService interface {
	GetSettings(ctx context.Context) (*domain.Settings, error)
	UpdateSettings(ctx context.Context, patch SettingsPatch) (*domain.Settings, error)
	// CancelOrder moves a PENDING order to CANCELLED; the only admin-driven
	// order transition.
	CancelOrder(ctx context.Context, orderID uuid.UUID) error
}

// --- Reporting ---

// ReportingService serves statements and price-history charts.
type ReportingService interface {
	ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.Transaction, error)
	ListOrders(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.Order, error)
	PriceHistory(ctx context.Context, metal domain.Metal, limit int) ([]domain.PriceSnapshot, error)
}

// --- Authentication ---

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	UserID uuid.UUID
}

// HashService handles password hashing (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// TokenService handles JWT token operations.
type TokenService interface {
	Generate(userID uuid.UUID) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// AuthService defines authentication business logic.
type AuthService interface {
	Register(ctx context.Context, username, password string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (string, time.Time, error) // token, expiry, error
}
