package service

import (
	"context"
	"fmt"

	"gold-trading-gateway/internal/core/domain"
	"gold-trading-gateway/internal/core/ports"
	"gold-trading-gateway/pkg/apperror"

	"github.com/google/uuid"
)

const (
	defaultPageSize    = 20
	maxPageSize        = 100
	defaultHistorySize = 48
	maxHistorySize     = 500
)

// ReportingServiceImpl implements ports.ReportingService. Read-only views
// over the ledger and the snapshot history.
type ReportingServiceImpl struct {
	txRepo       ports.TransactionRepository
	orderRepo    ports.OrderRepository
	snapshotRepo ports.SnapshotRepository
}

// NewReportingService creates a new ReportingServiceImpl.
func NewReportingService(
	txRepo ports.TransactionRepository,
	orderRepo ports.OrderRepository,
	snapshotRepo ports.SnapshotRepository,
) *ReportingServiceImpl {
	return &ReportingServiceImpl{
		txRepo:       txRepo,
		orderRepo:    orderRepo,
		snapshotRepo: snapshotRepo,
	}
}

// ListTransactions returns the user's audit entries, newest first.
func (s *ReportingServiceImpl) ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.Transaction, error) {
	limit, offset = clampPage(limit, offset)
	txns, err := s.txRepo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, apperror.ErrStoreUnavailable(fmt.Errorf("list transactions: %w", err))
	}
	return txns, nil
}

// ListOrders returns the user's orders, newest first.
func (s *ReportingServiceImpl) ListOrders(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.Order, error) {
	limit, offset = clampPage(limit, offset)
	orders, err := s.orderRepo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, apperror.ErrStoreUnavailable(fmt.Errorf("list orders: %w", err))
	}
	return orders, nil
}

// PriceHistory returns recent snapshots for charting, newest first.
func (s *ReportingServiceImpl) PriceHistory(ctx context.Context, metal domain.Metal, limit int) ([]domain.PriceSnapshot, error) {
	if limit <= 0 {
		limit = defaultHistorySize
	}
	if limit > maxHistorySize {
		limit = maxHistorySize
	}
	snaps, err := s.snapshotRepo.ListRecent(ctx, metal, limit)
	if err != nil {
		return nil, apperror.ErrStoreUnavailable(fmt.Errorf("list snapshots: %w", err))
	}
	return snaps, nil
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
