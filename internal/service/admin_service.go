package service

import (
	"context"
	"fmt"
	"time"

	"gold-trading-gateway/internal/core/domain"
	"gold-trading-gateway/internal/core/ports"
	"gold-trading-gateway/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var one = decimal.NewFromInt(1)

// AdminServiceImpl implements ports.AdminService.
type AdminServiceImpl struct {
	settingsRepo ports.SettingsRepository
	orderRepo    ports.OrderRepository
	log          zerolog.Logger
}

// NewAdminService creates a new AdminServiceImpl.
func NewAdminService(settingsRepo ports.SettingsRepository, orderRepo ports.OrderRepository, log zerolog.Logger) *AdminServiceImpl {
	return &AdminServiceImpl{settingsRepo: settingsRepo, orderRepo: orderRepo, log: log}
}

// GetSettings returns the merchant configuration, creating defaults on first
// access.
func (s *AdminServiceImpl) GetSettings(ctx context.Context) (*domain.Settings, error) {
	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, apperror.ErrStoreUnavailable(fmt.Errorf("load settings: %w", err))
	}
	return settings, nil
}

// UpdateSettings applies an allow-listed partial update. Fields left nil in
// the patch keep their stored values; the next trade prices against the new
// configuration immediately.
func (s *AdminServiceImpl) UpdateSettings(ctx context.Context, patch ports.SettingsPatch) (*domain.Settings, error) {
	if patch.IsEmpty() {
		return nil, apperror.Validation("no updatable settings fields provided")
	}
	if err := validatePatch(ctx, s.settingsRepo, patch); err != nil {
		return nil, err
	}

	settings, err := s.settingsRepo.Update(ctx, patch)
	if err != nil {
		return nil, apperror.ErrStoreUnavailable(fmt.Errorf("update settings: %w", err))
	}

	s.log.Info().
		Str("spread", settings.Spread.String()).
		Str("buy_markup", settings.BuyMarkup.String()).
		Str("sell_markup", settings.SellMarkup.String()).
		Str("min_trade", settings.MinTradeAmount.String()).
		Str("max_trade", settings.MaxTradeAmount.String()).
		Dur("price_update_interval", settings.PriceUpdateInterval).
		Msg("merchant settings updated")

	return settings, nil
}

// CancelOrder moves a PENDING order to CANCELLED.
func (s *AdminServiceImpl) CancelOrder(ctx context.Context, orderID uuid.UUID) error {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return apperror.ErrStoreUnavailable(fmt.Errorf("load order: %w", err))
	}
	if order == nil {
		return apperror.ErrOrderNotFound()
	}
	if !order.IsCancellable() {
		return apperror.ErrOrderNotCancellable()
	}

	cancelled, err := s.orderRepo.Cancel(ctx, orderID)
	if err != nil {
		return apperror.ErrStoreUnavailable(fmt.Errorf("cancel order: %w", err))
	}
	if !cancelled {
		// Lost a race with execution or another cancel.
		return apperror.ErrOrderNotCancellable()
	}

	s.log.Info().Str("order_id", orderID.String()).Msg("order cancelled")
	return nil
}

// validatePatch checks per-field constraints and the min/max relation against
// the effective post-patch values.
func validatePatch(ctx context.Context, repo ports.SettingsRepository, patch ports.SettingsPatch) error {
	if patch.Spread != nil && (patch.Spread.IsNegative() || patch.Spread.GreaterThanOrEqual(one)) {
		return apperror.Validation("spread must be in [0, 1)")
	}
	if patch.BuyMarkup != nil && patch.BuyMarkup.IsNegative() {
		return apperror.Validation("buy markup must be non-negative")
	}
	if patch.SellMarkup != nil && patch.SellMarkup.IsNegative() {
		return apperror.Validation("sell markup must be non-negative")
	}
	if patch.MinTradeAmount != nil && !patch.MinTradeAmount.IsPositive() {
		return apperror.Validation("minimum trade amount must be positive")
	}
	if patch.MaxTradeAmount != nil && !patch.MaxTradeAmount.IsPositive() {
		return apperror.Validation("maximum trade amount must be positive")
	}
	if patch.PriceUpdateInterval != nil && *patch.PriceUpdateInterval < time.Second {
		return apperror.Validation("price update interval must be at least 1s")
	}

	if patch.MinTradeAmount != nil || patch.MaxTradeAmount != nil {
		current, err := repo.Get(ctx)
		if err != nil {
			return apperror.ErrStoreUnavailable(fmt.Errorf("load settings: %w", err))
		}
		min, max := current.MinTradeAmount, current.MaxTradeAmount
		if patch.MinTradeAmount != nil {
			min = *patch.MinTradeAmount
		}
		if patch.MaxTradeAmount != nil {
			max = *patch.MaxTradeAmount
		}
		if min.GreaterThan(max) {
			return apperror.Validation("minimum trade amount must not exceed maximum")
		}
	}
	return nil
}
