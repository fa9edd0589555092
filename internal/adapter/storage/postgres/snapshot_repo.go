package postgres

import (
	"context"
	"errors"
	"fmt"

	"gold-trading-gateway/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// SnapshotRepo implements ports.SnapshotRepository (append-only).
type SnapshotRepo struct {
	pool Pool
}

// NewSnapshotRepo creates a new SnapshotRepo.
func NewSnapshotRepo(pool Pool) *SnapshotRepo {
	return &SnapshotRepo{pool: pool}
}

const snapshotColumns = `id, metal, spot_usd, spot_sar, buy_price, sell_price, spread, conversion_rate, source, created_at`

// Create appends a price snapshot.
func (r *SnapshotRepo) Create(ctx context.Context, s *domain.PriceSnapshot) error {
	query := `INSERT INTO price_snapshots (id, metal, spot_usd, spot_sar, buy_price, sell_price, spread, conversion_rate, source, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.pool.Exec(ctx, query,
		s.ID, s.Metal, s.SpotUSD, s.SpotSAR, s.BuyPrice, s.SellPrice,
		s.Spread, s.ConversionRate, s.Source, s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert price snapshot: %w", err)
	}
	return nil
}

// Latest fetches the most recent snapshot for a metal. Returns nil, nil when
// none exists yet (cold start).
func (r *SnapshotRepo) Latest(ctx context.Context, metal domain.Metal) (*domain.PriceSnapshot, error) {
	query := `SELECT ` + snapshotColumns + ` FROM price_snapshots WHERE metal = $1 ORDER BY created_at DESC LIMIT 1`

	s := &domain.PriceSnapshot{}
	err := r.pool.QueryRow(ctx, query, metal).Scan(
		&s.ID, &s.Metal, &s.SpotUSD, &s.SpotSAR, &s.BuyPrice, &s.SellPrice,
		&s.Spread, &s.ConversionRate, &s.Source, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get latest snapshot: %w", err)
	}
	return s, nil
}

// ListRecent fetches up to limit snapshots for a metal, newest first.
func (r *SnapshotRepo) ListRecent(ctx context.Context, metal domain.Metal, limit int) ([]domain.PriceSnapshot, error) {
	query := `SELECT ` + snapshotColumns + ` FROM price_snapshots WHERE metal = $1 ORDER BY created_at DESC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, metal, limit)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []domain.PriceSnapshot
	for rows.Next() {
		s := domain.PriceSnapshot{}
		err := rows.Scan(
			&s.ID, &s.Metal, &s.SpotUSD, &s.SpotSAR, &s.BuyPrice, &s.SellPrice,
			&s.Spread, &s.ConversionRate, &s.Source, &s.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}
		snaps = append(snaps, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot rows: %w", err)
	}
	return snaps, nil
}
