package pricing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/folio-service/folio_service/internal/adapters/pricefeed"
	"github.com/folio-service/folio_service/internal/domain/entities"
	"github.com/folio-service/folio_service/internal/domain/repositories"
	apperrors "github.com/folio-service/folio_service/pkg/errors"
	"github.com/folio-service/folio_service/pkg/metrics"
)

// Service drives the price time-series store: direct point recording, the
// recurring daily sweep, and the historical backfill.
type Service struct {
	prices         repositories.PriceRepository
	assets         repositories.AssetRepository
	holdings       repositories.HoldingRepository
	feed           pricefeed.Feed
	backfillMonths int
	logger         *zap.Logger
}

// NewService creates a new pricing service
func NewService(
	prices repositories.PriceRepository,
	assets repositories.AssetRepository,
	holdings repositories.HoldingRepository,
	feed pricefeed.Feed,
	backfillMonths int,
	logger *zap.Logger,
) *Service {
	return &Service{
		prices:         prices,
		assets:         assets,
		holdings:       holdings,
		feed:           feed,
		backfillMonths: backfillMonths,
		logger:         logger,
	}
}

// ItemFailure records one skipped asset/date during a sweep.
type ItemFailure struct {
	AssetID int64     `json:"asset_id"`
	Date    time.Time `json:"date"`
	Reason  string    `json:"reason"`
}

// RunSummary reports the outcome of an ingestion job. Failures never abort
// a run; they are collected here instead.
type RunSummary struct {
	Job           string        `json:"job"`
	AssetsSwept   int           `json:"assets_swept"`
	PointsWritten int           `json:"points_written"`
	Failures      []ItemFailure `json:"failures,omitempty"`
	StartedAt     time.Time     `json:"started_at"`
	Duration      time.Duration `json:"duration"`
}

// RecordPrice upserts one (asset, date) history point and refreshes the
// asset's latest-price snapshot from the max-date history row.
func (s *Service) RecordPrice(ctx context.Context, assetID int64, price decimal.Decimal, currency string, date time.Time) error {
	if price.IsNegative() {
		return apperrors.InvalidInput("price cannot be negative")
	}
	if currency == "" {
		currency = entities.DefaultCurrency
	}

	now := time.Now().UTC()
	point := &entities.PriceHistoryPoint{
		AssetID:   assetID,
		Price:     price,
		Currency:  currency,
		Date:      dateOnly(date),
		CreatedAt: now,
	}
	if err := s.prices.UpsertHistory(ctx, point); err != nil {
		return fmt.Errorf("record price: %w", err)
	}
	metrics.PricePointsIngested.WithLabelValues("manual").Inc()

	return s.refreshSnapshot(ctx, assetID)
}

// GetHistory returns the asset's price series ordered by date ascending.
func (s *Service) GetHistory(ctx context.Context, assetID int64) ([]*entities.PriceHistoryPoint, error) {
	return s.prices.History(ctx, assetID)
}

// DailyUpdate fetches one price per cataloged asset for today and records
// it. Each asset is independent: a feed or store failure is logged, counted
// in the summary, and the sweep moves on.
func (s *Service) DailyUpdate(ctx context.Context) (*RunSummary, error) {
	started := time.Now().UTC()
	summary := &RunSummary{Job: "daily_update", StartedAt: started}

	assetIDs, err := s.assets.ListIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}

	today := dateOnly(started)
	for _, assetID := range assetIDs {
		summary.AssetsSwept++

		price, err := s.feed.Quote(ctx, assetID, today)
		if err != nil {
			s.recordFailure(summary, assetID, today, apperrors.UpstreamFailure(err, "price feed quote failed"))
			continue
		}

		point := &entities.PriceHistoryPoint{
			AssetID:   assetID,
			Price:     price,
			Currency:  entities.DefaultCurrency,
			Date:      today,
			CreatedAt: time.Now().UTC(),
		}
		if err := s.prices.UpsertHistory(ctx, point); err != nil {
			s.recordFailure(summary, assetID, today, err)
			continue
		}
		if err := s.refreshSnapshot(ctx, assetID); err != nil {
			s.recordFailure(summary, assetID, today, err)
			continue
		}

		summary.PointsWritten++
		metrics.PricePointsIngested.WithLabelValues(summary.Job).Inc()
	}

	summary.Duration = time.Since(started)
	metrics.PriceJobDuration.WithLabelValues(summary.Job).Observe(summary.Duration.Seconds())

	s.logger.Info("daily price update finished",
		zap.Int("assets", summary.AssetsSwept),
		zap.Int("points", summary.PointsWritten),
		zap.Int("failures", len(summary.Failures)),
		zap.Duration("duration", summary.Duration),
	)

	return summary, nil
}

// Backfill writes one history point per held asset per day across the
// closed window [today - backfillMonths, today]. Every point is its own
// upsert, so an interrupted run leaves valid partial progress and a re-run
// converges to the same end state. The context is checked between date
// iterations to keep the job abortable.
func (s *Service) Backfill(ctx context.Context, userID uuid.UUID) (*RunSummary, error) {
	started := time.Now().UTC()
	summary := &RunSummary{Job: "backfill", StartedAt: started}

	assetIDs, err := s.holdings.AssetIDsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list held assets: %w", err)
	}

	today := dateOnly(started)
	windowStart := today.AddDate(0, -s.backfillMonths, 0)

	for _, assetID := range assetIDs {
		summary.AssetsSwept++

		for date := windowStart; !date.After(today); date = date.AddDate(0, 0, 1) {
			if err := ctx.Err(); err != nil {
				summary.Duration = time.Since(started)
				return summary, err
			}

			price, err := s.feed.Quote(ctx, assetID, date)
			if err != nil {
				s.recordFailure(summary, assetID, date, apperrors.UpstreamFailure(err, "price feed quote failed"))
				continue
			}

			// Backfilled rows carry the historical date as created_at;
			// that is what tells them apart from live ingestion.
			point := &entities.PriceHistoryPoint{
				AssetID:   assetID,
				Price:     price,
				Currency:  entities.DefaultCurrency,
				Date:      date,
				CreatedAt: date,
			}
			if err := s.prices.UpsertHistory(ctx, point); err != nil {
				s.recordFailure(summary, assetID, date, err)
				continue
			}

			summary.PointsWritten++
			metrics.PricePointsIngested.WithLabelValues(summary.Job).Inc()
		}

		if err := s.refreshSnapshot(ctx, assetID); err != nil {
			s.recordFailure(summary, assetID, today, err)
		}
	}

	summary.Duration = time.Since(started)
	metrics.PriceJobDuration.WithLabelValues(summary.Job).Observe(summary.Duration.Seconds())

	s.logger.Info("price backfill finished",
		zap.String("user_id", userID.String()),
		zap.Int("assets", summary.AssetsSwept),
		zap.Int("points", summary.PointsWritten),
		zap.Int("failures", len(summary.Failures)),
		zap.Duration("duration", summary.Duration),
	)

	return summary, nil
}

// refreshSnapshot overwrites the asset's latest-price row with the price of
// its max-date history point. Driving the snapshot off the stored maximum
// rather than the point just written means an out-of-order backfill can
// never regress a newer price.
func (s *Service) refreshSnapshot(ctx context.Context, assetID int64) error {
	latest, err := s.prices.LatestByDate(ctx, assetID)
	if err != nil {
		return fmt.Errorf("find latest price: %w", err)
	}
	if latest == nil {
		return nil
	}
	if err := s.prices.UpsertDaily(ctx, assetID, latest.Price, latest.Currency, time.Now().UTC()); err != nil {
		return fmt.Errorf("refresh snapshot: %w", err)
	}
	return nil
}

func (s *Service) recordFailure(summary *RunSummary, assetID int64, date time.Time, err error) {
	summary.Failures = append(summary.Failures, ItemFailure{
		AssetID: assetID,
		Date:    date,
		Reason:  err.Error(),
	})
	metrics.PriceIngestionFailures.WithLabelValues(summary.Job).Inc()
	s.logger.Warn("price ingestion skipped asset",
		zap.String("job", summary.Job),
		zap.Int64("asset_id", assetID),
		zap.Time("date", date),
		zap.Error(err),
	)
}

// dateOnly truncates a timestamp to its UTC calendar date.
func dateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
