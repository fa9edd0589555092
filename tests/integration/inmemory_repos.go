package integration

import (
	"context"
	"sort"
	"sync"

	"gold-trading-gateway/internal/core/domain"
	"gold-trading-gateway/internal/core/ports"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// In-memory ports implementations backing the integration tests. They mirror
// the persistence semantics the postgres repos promise: version-checked
// wallet updates, append-only transactions and snapshots, PENDING-only order
// cancellation, and a settings singleton created with defaults on first read.

// --- Transactor ---

// inMemoryTransactor runs every unit of work on the no-scope path, the same
// degraded mode a store without transaction support gets. The settlement
// properties asserted by these tests must hold there too.
type inMemoryTransactor struct{}

func newInMemoryTransactor() *inMemoryTransactor { return &inMemoryTransactor{} }

func (t *inMemoryTransactor) WithinOptionalTx(ctx context.Context, fn func(ctx context.Context, db ports.DB) error) error {
	return fn(ctx, nil)
}

// --- Users ---

type inMemoryUserRepo struct {
	mu         sync.RWMutex
	byID       map[uuid.UUID]domain.User
	byUsername map[string]uuid.UUID
}

func newInMemoryUserRepo() *inMemoryUserRepo {
	return &inMemoryUserRepo{
		byID:       make(map[uuid.UUID]domain.User),
		byUsername: make(map[string]uuid.UUID),
	}
}

func (r *inMemoryUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[user.ID] = *user
	r.byUsername[user.Username] = user.ID
	return nil
}

func (r *inMemoryUserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if u, ok := r.byID[id]; ok {
		cp := u
		return &cp, nil
	}
	return nil, nil
}

func (r *inMemoryUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if id, ok := r.byUsername[username]; ok {
		u := r.byID[id]
		return &u, nil
	}
	return nil, nil
}

// --- Wallets ---

type inMemoryWalletRepo struct {
	mu       sync.RWMutex
	byUserID map[uuid.UUID]domain.Wallet
}

func newInMemoryWalletRepo() *inMemoryWalletRepo {
	return &inMemoryWalletRepo{byUserID: make(map[uuid.UUID]domain.Wallet)}
}

func (r *inMemoryWalletRepo) Create(_ context.Context, _ ports.DB, wallet *domain.Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byUserID[wallet.UserID]; exists {
		return nil // ON CONFLICT DO NOTHING
	}
	r.byUserID[wallet.UserID] = *wallet
	return nil
}

func (r *inMemoryWalletRepo) GetByUserID(_ context.Context, userID uuid.UUID) (*domain.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if w, ok := r.byUserID[userID]; ok {
		cp := w
		return &cp, nil
	}
	return nil, nil
}

func (r *inMemoryWalletRepo) GetByUserIDForUpdate(ctx context.Context, _ ports.DB, userID uuid.UUID) (*domain.Wallet, error) {
	return r.GetByUserID(ctx, userID)
}

func (r *inMemoryWalletRepo) UpdateBalances(_ context.Context, _ ports.DB, wallet *domain.Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.byUserID[wallet.UserID]
	if !ok || current.Version != wallet.Version {
		return ports.ErrVersionConflict
	}
	wallet.Version++
	r.byUserID[wallet.UserID] = *wallet
	return nil
}

// --- Orders ---

type inMemoryOrderRepo struct {
	mu   sync.RWMutex
	byID map[uuid.UUID]domain.Order
	seq  []uuid.UUID // insertion order
}

func newInMemoryOrderRepo() *inMemoryOrderRepo {
	return &inMemoryOrderRepo{byID: make(map[uuid.UUID]domain.Order)}
}

func (r *inMemoryOrderRepo) Create(_ context.Context, _ ports.DB, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[order.ID] = *order
	r.seq = append(r.seq, order.ID)
	return nil
}

func (r *inMemoryOrderRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if o, ok := r.byID[id]; ok {
		cp := o
		return &cp, nil
	}
	return nil, nil
}

func (r *inMemoryOrderRepo) ListByUser(_ context.Context, userID uuid.UUID, limit, offset int) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var all []domain.Order
	for i := len(r.seq) - 1; i >= 0; i-- {
		o := r.byID[r.seq[i]]
		if o.UserID == userID {
			all = append(all, o)
		}
	}
	return page(all, limit, offset), nil
}

func (r *inMemoryOrderRepo) Cancel(_ context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.byID[id]
	if !ok || o.Status != domain.OrderStatusPending {
		return false, nil
	}
	o.Status = domain.OrderStatusCancelled
	r.byID[id] = o
	return true, nil
}

// --- Transactions (append-only) ---

type inMemoryTransactionRepo struct {
	mu      sync.RWMutex
	entries []domain.Transaction
}

func newInMemoryTransactionRepo() *inMemoryTransactionRepo {
	return &inMemoryTransactionRepo{}
}

func (r *inMemoryTransactionRepo) Create(_ context.Context, _ ports.DB, txn *domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *txn)
	return nil
}

func (r *inMemoryTransactionRepo) ListByUser(_ context.Context, userID uuid.UUID, limit, offset int) ([]domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var all []domain.Transaction
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].UserID == userID {
			all = append(all, r.entries[i])
		}
	}
	return page(all, limit, offset), nil
}

// allByUser returns the user's entries oldest first, for chain assertions.
func (r *inMemoryTransactionRepo) allByUser(userID uuid.UUID) []domain.Transaction {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var all []domain.Transaction
	for _, e := range r.entries {
		if e.UserID == userID {
			all = append(all, e)
		}
	}
	return all
}

// --- Snapshots (append-only) ---

type inMemorySnapshotRepo struct {
	mu      sync.RWMutex
	entries []domain.PriceSnapshot
}

func newInMemorySnapshotRepo() *inMemorySnapshotRepo {
	return &inMemorySnapshotRepo{}
}

func (r *inMemorySnapshotRepo) Create(_ context.Context, snapshot *domain.PriceSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *snapshot)
	return nil
}

func (r *inMemorySnapshotRepo) Latest(_ context.Context, metal domain.Metal) (*domain.PriceSnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var latest *domain.PriceSnapshot
	for i := range r.entries {
		e := r.entries[i]
		if e.Metal != metal {
			continue
		}
		if latest == nil || e.CreatedAt.After(latest.CreatedAt) {
			cp := e
			latest = &cp
		}
	}
	return latest, nil
}

func (r *inMemorySnapshotRepo) ListRecent(_ context.Context, metal domain.Metal, limit int) ([]domain.PriceSnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var all []domain.PriceSnapshot
	for _, e := range r.entries {
		if e.Metal == metal {
			all = append(all, e)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// --- Settings singleton ---

type inMemorySettingsRepo struct {
	mu       sync.Mutex
	settings *domain.Settings
}

func newInMemorySettingsRepo() *inMemorySettingsRepo {
	return &inMemorySettingsRepo{}
}

func (r *inMemorySettingsRepo) Get(_ context.Context) (*domain.Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.settings == nil {
		r.settings = domain.DefaultSettings()
	}
	cp := *r.settings
	return &cp, nil
}

func (r *inMemorySettingsRepo) Update(ctx context.Context, patch ports.SettingsPatch) (*domain.Settings, error) {
	if _, err := r.Get(ctx); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if patch.Spread != nil {
		r.settings.Spread = *patch.Spread
	}
	if patch.BuyMarkup != nil {
		r.settings.BuyMarkup = *patch.BuyMarkup
	}
	if patch.SellMarkup != nil {
		r.settings.SellMarkup = *patch.SellMarkup
	}
	if patch.MinTradeAmount != nil {
		r.settings.MinTradeAmount = *patch.MinTradeAmount
	}
	if patch.MaxTradeAmount != nil {
		r.settings.MaxTradeAmount = *patch.MaxTradeAmount
	}
	if patch.PriceUpdateInterval != nil {
		r.settings.PriceUpdateInterval = *patch.PriceUpdateInterval
	}
	cp := *r.settings
	return &cp, nil
}

// --- Spot source ---

// fixedSpotSource serves a constant USD-per-gram price.
type fixedSpotSource struct {
	price decimal.Decimal
}

func (s *fixedSpotSource) FetchSpot(_ context.Context, _ domain.Metal) (decimal.Decimal, string, error) {
	return s.price, "fixed", nil
}

// --- helpers ---

func page[T any](all []T, limit, offset int) []T {
	if offset >= len(all) {
		return []T{}
	}
	all = all[offset:]
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all
}
