package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gold-trading-gateway/internal/core/domain"
	"gold-trading-gateway/internal/core/ports"

	"github.com/jackc/pgx/v5"
)

// SettingsRepo implements ports.SettingsRepository over the one-row settings
// table. The row is created with documented defaults on first access.
type SettingsRepo struct {
	pool Pool
}

// NewSettingsRepo creates a new SettingsRepo.
func NewSettingsRepo(pool Pool) *SettingsRepo {
	return &SettingsRepo{pool: pool}
}

const settingsColumns = `spread, buy_markup, sell_markup, min_trade_amount, max_trade_amount, price_update_interval_seconds, updated_at`

// Get returns the merchant settings, creating the default row if absent.
func (r *SettingsRepo) Get(ctx context.Context) (*domain.Settings, error) {
	query := `SELECT ` + settingsColumns + ` FROM settings WHERE id = 1`

	s := &domain.Settings{}
	var intervalSeconds int64
	err := r.pool.QueryRow(ctx, query).Scan(
		&s.Spread, &s.BuyMarkup, &s.SellMarkup,
		&s.MinTradeAmount, &s.MaxTradeAmount, &intervalSeconds, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return r.createDefaults(ctx)
		}
		return nil, fmt.Errorf("get settings: %w", err)
	}
	s.PriceUpdateInterval = time.Duration(intervalSeconds) * time.Second
	return s, nil
}

// Update applies an allow-listed partial update and returns the result.
// An empty patch is a plain read.
func (r *SettingsRepo) Update(ctx context.Context, patch ports.SettingsPatch) (*domain.Settings, error) {
	if patch.IsEmpty() {
		return r.Get(ctx)
	}

	// Ensure the row exists before patching it.
	if _, err := r.Get(ctx); err != nil {
		return nil, err
	}

	var sets []string
	var args []any
	argIdx := 1

	add := func(column string, value any) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argIdx))
		args = append(args, value)
		argIdx++
	}

	if patch.Spread != nil {
		add("spread", *patch.Spread)
	}
	if patch.BuyMarkup != nil {
		add("buy_markup", *patch.BuyMarkup)
	}
	if patch.SellMarkup != nil {
		add("sell_markup", *patch.SellMarkup)
	}
	if patch.MinTradeAmount != nil {
		add("min_trade_amount", *patch.MinTradeAmount)
	}
	if patch.MaxTradeAmount != nil {
		add("max_trade_amount", *patch.MaxTradeAmount)
	}
	if patch.PriceUpdateInterval != nil {
		add("price_update_interval_seconds", int64(patch.PriceUpdateInterval.Seconds()))
	}
	add("updated_at", time.Now().UTC())

	query := fmt.Sprintf("UPDATE settings SET %s WHERE id = 1", strings.Join(sets, ", "))
	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("update settings: %w", err)
	}

	return r.Get(ctx)
}

func (r *SettingsRepo) createDefaults(ctx context.Context) (*domain.Settings, error) {
	defaults := domain.DefaultSettings()

	query := `INSERT INTO settings (id, spread, buy_markup, sell_markup, min_trade_amount, max_trade_amount, price_update_interval_seconds, updated_at)
		VALUES (1, $1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING`

	_, err := r.pool.Exec(ctx, query,
		defaults.Spread, defaults.BuyMarkup, defaults.SellMarkup,
		defaults.MinTradeAmount, defaults.MaxTradeAmount,
		int64(defaults.PriceUpdateInterval.Seconds()), defaults.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create default settings: %w", err)
	}
	return defaults, nil
}
