package service

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"gold-trading-gateway/internal/core/domain"
	"gold-trading-gateway/internal/core/ports"
	"gold-trading-gateway/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	// spotTickTTL bounds how long a ticker read may reuse a cached tick.
	spotTickTTL = time.Second

	// syntheticHistoryPoints is the number of backdated snapshots seeded on a
	// cold start so price charts are never empty.
	syntheticHistoryPoints = 24
	syntheticHistoryStep   = 30 * time.Minute
)

// fallbackSpotUSD is the conservative last-resort USD-per-gram price used
// when every upstream provider fails. Pricing degrades to stale-but-present
// rather than erroring out the whole trading surface.
var fallbackSpotUSD = decimal.RequireFromString("80")

// PricingServiceImpl implements ports.PricingService.
type PricingServiceImpl struct {
	snapshotRepo ports.SnapshotRepository
	settingsRepo ports.SettingsRepository
	source       ports.SpotSource
	tickerCache  ports.TickerCache
	rate         decimal.Decimal
	log          zerolog.Logger

	now func() time.Time // injectable clock for the tick cache

	ticks *tickCache
}

// NewPricingService creates a new PricingServiceImpl.
func NewPricingService(
	snapshotRepo ports.SnapshotRepository,
	settingsRepo ports.SettingsRepository,
	source ports.SpotSource,
	tickerCache ports.TickerCache,
	conversionRate decimal.Decimal,
	log zerolog.Logger,
) *PricingServiceImpl {
	return &PricingServiceImpl{
		snapshotRepo: snapshotRepo,
		settingsRepo: settingsRepo,
		source:       source,
		tickerCache:  tickerCache,
		rate:         conversionRate,
		log:          log,
		now:          time.Now,
		ticks:        newTickCache(),
	}
}

// Refresh computes and persists a fresh snapshot for each supported metal.
// Provider failures degrade to the hardcoded fallback price with a warning;
// only store errors fail the refresh.
func (s *PricingServiceImpl) Refresh(ctx context.Context) ([]*domain.PriceSnapshot, error) {
	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, apperror.ErrStoreUnavailable(fmt.Errorf("load settings: %w", err))
	}

	snapshots := make([]*domain.PriceSnapshot, 0, len(domain.SupportedMetals))
	for _, metal := range domain.SupportedMetals {
		spotUSD, source, err := s.source.FetchSpot(ctx, metal)
		if err != nil {
			s.log.Warn().Err(err).
				Str("metal", string(metal)).
				Str("fallback_price_usd", fallbackSpotUSD.String()).
				Msg("all price providers failed, using hardcoded fallback price")
			spotUSD, source = fallbackSpotUSD, "fallback"
		}

		snap := s.buildSnapshot(metal, spotUSD, source, settings)
		if err := s.snapshotRepo.Create(ctx, snap); err != nil {
			return nil, apperror.ErrStoreUnavailable(fmt.Errorf("persist snapshot: %w", err))
		}

		s.log.Info().
			Str("metal", string(metal)).
			Str("source", source).
			Str("spot_sar", snap.SpotSAR.String()).
			Str("buy", snap.BuyPrice.String()).
			Str("sell", snap.SellPrice.String()).
			Msg("price snapshot refreshed")

		snapshots = append(snapshots, snap)
	}
	return snapshots, nil
}

// GetCurrentPrices returns the latest snapshot quote, refreshing synchronously
// when the stored snapshot is older than the configured update interval.
// Every executed trade is priced from the snapshot returned here.
func (s *PricingServiceImpl) GetCurrentPrices(ctx context.Context) (*ports.PriceQuote, error) {
	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, apperror.ErrStoreUnavailable(fmt.Errorf("load settings: %w", err))
	}

	latest, err := s.snapshotRepo.Latest(ctx, domain.MetalGold)
	if err != nil {
		return nil, apperror.ErrStoreUnavailable(fmt.Errorf("load latest snapshot: %w", err))
	}
	if latest != nil && latest.Age(s.now()) <= settings.PriceUpdateInterval {
		return quoteFromSnapshot(latest), nil
	}

	snaps, err := s.Refresh(ctx)
	if err != nil {
		// A stale snapshot beats no price at all.
		if latest != nil {
			s.log.Warn().Err(err).Msg("refresh failed, serving stale snapshot")
			return quoteFromSnapshot(latest), nil
		}
		return nil, apperror.ErrPriceUnavailable(err)
	}

	for _, snap := range snaps {
		if snap.Metal == domain.MetalGold {
			return quoteFromSnapshot(snap), nil
		}
	}
	return nil, apperror.ErrPriceUnavailable(fmt.Errorf("no gold snapshot in refresh result"))
}

// GetSpotOnly serves the live ticker. It reads through a short in-process
// cache and the shared Redis cache, and never persists a snapshot. Once any
// tick has been served it keeps serving the last known value on provider
// outages instead of failing.
func (s *PricingServiceImpl) GetSpotOnly(ctx context.Context) (*ports.SpotTick, error) {
	now := s.now()

	if tick := s.ticks.fresh(domain.MetalGold, now, spotTickTTL); tick != nil {
		return tick, nil
	}

	if s.tickerCache != nil {
		tick, err := s.tickerCache.Get(ctx, domain.MetalGold)
		if err != nil {
			s.log.Warn().Err(err).Msg("ticker cache read failed, falling through to provider")
		}
		if tick != nil {
			s.ticks.store(tick, now)
			return tick, nil
		}
	}

	tick, err := s.fetchTick(ctx, domain.MetalGold, now)
	if err != nil {
		if last := s.ticks.last(domain.MetalGold); last != nil {
			s.log.Warn().Err(err).Msg("spot fetch failed, serving last known tick")
			return last, nil
		}
		if latest, snapErr := s.snapshotRepo.Latest(ctx, domain.MetalGold); snapErr == nil && latest != nil {
			return tickFromSnapshot(latest), nil
		}
		return nil, apperror.ErrPriceUnavailable(err)
	}

	s.ticks.store(tick, now)
	if s.tickerCache != nil {
		if err := s.tickerCache.Set(ctx, tick, spotTickTTL); err != nil {
			s.log.Warn().Err(err).Msg("ticker cache write failed")
		}
	}
	return tick, nil
}

// EnsureHistory seeds a short synthetic snapshot history when the store holds
// no snapshots yet, so price charts have something to draw on a fresh deploy.
func (s *PricingServiceImpl) EnsureHistory(ctx context.Context) error {
	recent, err := s.snapshotRepo.ListRecent(ctx, domain.MetalGold, 1)
	if err != nil {
		return fmt.Errorf("check snapshot history: %w", err)
	}
	if len(recent) > 0 {
		return nil
	}

	snaps, err := s.Refresh(ctx)
	if err != nil {
		return err
	}

	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	for _, base := range snaps {
		for i := 1; i <= syntheticHistoryPoints; i++ {
			// Small random walk around the live price, stepping into the past.
			jitter := decimal.NewFromFloat(1 + (rand.Float64()-0.5)/100)
			spotSAR := base.SpotSAR.Mul(jitter).Round(domain.AmountScale)
			buy, sell := settings.Quote(spotSAR)

			snap := &domain.PriceSnapshot{
				ID:             uuid.New(),
				Metal:          base.Metal,
				SpotUSD:        spotSAR.Div(s.rate).Round(domain.AmountScale),
				SpotSAR:        spotSAR,
				BuyPrice:       buy.Round(domain.AmountScale),
				SellPrice:      sell.Round(domain.AmountScale),
				Spread:         settings.Spread,
				ConversionRate: s.rate,
				Source:         "seed",
				CreatedAt:      base.CreatedAt.Add(-time.Duration(i) * syntheticHistoryStep),
			}
			if err := s.snapshotRepo.Create(ctx, snap); err != nil {
				return fmt.Errorf("seed snapshot history: %w", err)
			}
		}
		s.log.Info().
			Str("metal", string(base.Metal)).
			Int("points", syntheticHistoryPoints).
			Msg("seeded synthetic price history")
	}
	return nil
}

// StartRefreshLoop refreshes snapshots in the background until ctx is
// cancelled. The cadence is re-read from settings on every cycle so an admin
// change to the interval takes effect without a restart.
func (s *PricingServiceImpl) StartRefreshLoop(ctx context.Context) {
	go func() {
		for {
			interval := domain.DefaultSettings().PriceUpdateInterval
			if settings, err := s.settingsRepo.Get(ctx); err == nil {
				interval = settings.PriceUpdateInterval
			}

			timer := time.NewTimer(interval)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}

			refreshCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
			if _, err := s.Refresh(refreshCtx); err != nil {
				s.log.Error().Err(err).Msg("background price refresh failed")
			}
			cancel()
		}
	}()
}

func (s *PricingServiceImpl) buildSnapshot(metal domain.Metal, spotUSD decimal.Decimal, source string, settings *domain.Settings) *domain.PriceSnapshot {
	// Prices are held to the persisted column scale here, before anything
	// downstream sees them. Trades multiply these against user amounts, so a
	// price with extra digits would make the stored total differ from the
	// computed one.
	spotUSD = spotUSD.Round(domain.AmountScale)
	spotSAR := spotUSD.Mul(s.rate).Round(domain.AmountScale)
	buy, sell := settings.Quote(spotSAR)
	buy = buy.Round(domain.AmountScale)
	sell = sell.Round(domain.AmountScale)
	return &domain.PriceSnapshot{
		ID:             uuid.New(),
		Metal:          metal,
		SpotUSD:        spotUSD,
		SpotSAR:        spotSAR,
		BuyPrice:       buy,
		SellPrice:      sell,
		Spread:         settings.Spread,
		ConversionRate: s.rate,
		Source:         source,
		CreatedAt:      s.now().UTC(),
	}
}

func (s *PricingServiceImpl) fetchTick(ctx context.Context, metal domain.Metal, now time.Time) (*ports.SpotTick, error) {
	spotUSD, _, err := s.source.FetchSpot(ctx, metal)
	if err != nil {
		return nil, err
	}

	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	spotSAR := spotUSD.Mul(s.rate)
	buy, sell := settings.Quote(spotSAR)
	return &ports.SpotTick{
		Metal:     metal,
		SpotPrice: spotSAR,
		BuyPrice:  buy,
		SellPrice: sell,
		Spread:    settings.Spread,
		Timestamp: now.UTC(),
	}, nil
}

func quoteFromSnapshot(snap *domain.PriceSnapshot) *ports.PriceQuote {
	return &ports.PriceQuote{
		Metal:      snap.Metal,
		SpotPrice:  snap.SpotSAR,
		BuyPrice:   snap.BuyPrice,
		SellPrice:  snap.SellPrice,
		Spread:     snap.Spread,
		Timestamp:  snap.CreatedAt,
		SnapshotID: snap.ID,
	}
}

func tickFromSnapshot(snap *domain.PriceSnapshot) *ports.SpotTick {
	return &ports.SpotTick{
		Metal:     snap.Metal,
		SpotPrice: snap.SpotSAR,
		BuyPrice:  snap.BuyPrice,
		SellPrice: snap.SellPrice,
		Spread:    snap.Spread,
		Timestamp: snap.CreatedAt,
	}
}
