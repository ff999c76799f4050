package valuation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/folio-service/folio_service/internal/domain/entities"
	"github.com/folio-service/folio_service/internal/domain/repositories"
	"github.com/folio-service/folio_service/pkg/metrics"
)

// Service computes and caches per-user portfolio aggregates. Reads never
// trigger a computation; recalculation is an explicit operation.
type Service struct {
	holdings repositories.HoldingRepository
	metrics  repositories.MetricsRepository
	logger   *zap.Logger
}

// NewService creates a new valuation service
func NewService(holdings repositories.HoldingRepository, metricsRepo repositories.MetricsRepository, logger *zap.Logger) *Service {
	return &Service{
		holdings: holdings,
		metrics:  metricsRepo,
		logger:   logger,
	}
}

// Recalculate reads the user's positions with their latest prices, sums the
// type-specific contributions, and writes the aggregate in one idempotent
// upsert. Concurrent calls for the same user are safe; the last writer
// wins and each written row reflects a consistent read of the join.
func (s *Service) Recalculate(ctx context.Context, userID uuid.UUID) (*entities.PortfolioMetrics, error) {
	started := time.Now()

	positions, err := s.holdings.ListPositions(ctx, userID)
	if err != nil {
		metrics.RecalculationsTotal.WithLabelValues("failure").Inc()
		return nil, fmt.Errorf("read positions: %w", err)
	}

	totalBasis := decimal.Zero
	totalValue := decimal.Zero
	for _, position := range positions {
		totalBasis = totalBasis.Add(position.BasisContribution())
		totalValue = totalValue.Add(position.ValueContribution())
	}

	aggregate := &entities.PortfolioMetrics{
		UserID:      userID,
		TotalBasis:  totalBasis,
		TotalValue:  totalValue,
		PnL:         totalValue.Sub(totalBasis),
		LastUpdated: time.Now().UTC(),
	}

	if err := s.metrics.Upsert(ctx, aggregate); err != nil {
		metrics.RecalculationsTotal.WithLabelValues("failure").Inc()
		return nil, fmt.Errorf("write portfolio metrics: %w", err)
	}

	metrics.RecalculationsTotal.WithLabelValues("success").Inc()
	metrics.RecalculationDuration.Observe(time.Since(started).Seconds())

	s.logger.Info("portfolio recalculated",
		zap.String("user_id", userID.String()),
		zap.Int("positions", len(positions)),
		zap.String("total_basis", aggregate.TotalBasis.String()),
		zap.String("total_value", aggregate.TotalValue.String()),
		zap.String("pnl", aggregate.PnL.String()),
	)

	return aggregate, nil
}

// GetPortfolioValue returns the cached aggregate. A user that has never
// been recalculated gets the zero-value default with a zero LastUpdated
// sentinel rather than an on-demand computation.
func (s *Service) GetPortfolioValue(ctx context.Context, userID uuid.UUID) (*entities.PortfolioMetrics, error) {
	cached, err := s.metrics.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("read portfolio metrics: %w", err)
	}
	if cached == nil {
		return &entities.PortfolioMetrics{
			UserID:     userID,
			TotalBasis: decimal.Zero,
			TotalValue: decimal.Zero,
			PnL:        decimal.Zero,
		}, nil
	}
	return cached, nil
}
