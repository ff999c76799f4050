package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/folio-service/folio_service/internal/domain/entities"
)

// MetricsRepository is the per-user portfolio metrics cache.
type MetricsRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewMetricsRepository creates a new metrics repository
func NewMetricsRepository(db *sqlx.DB, logger *zap.Logger) *MetricsRepository {
	return &MetricsRepository{db: db, logger: logger}
}

// Upsert writes the user's aggregate in a single insert-or-update, safe to
// call repeatedly and concurrently for the same user (last writer wins).
func (r *MetricsRepository) Upsert(ctx context.Context, metrics *entities.PortfolioMetrics) error {
	query := `
		INSERT INTO portfolio_metrics (user_id, total_basis, total_value, pnl, last_updated)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE SET
			total_basis = EXCLUDED.total_basis,
			total_value = EXCLUDED.total_value,
			pnl = EXCLUDED.pnl,
			last_updated = EXCLUDED.last_updated
	`

	_, err := r.db.ExecContext(ctx, query,
		metrics.UserID,
		metrics.TotalBasis,
		metrics.TotalValue,
		metrics.PnL,
		metrics.LastUpdated,
	)
	if err != nil {
		r.logger.Error("failed to upsert portfolio metrics",
			zap.Error(err),
			zap.String("user_id", metrics.UserID.String()),
		)
		return fmt.Errorf("failed to upsert portfolio metrics: %w", err)
	}

	return nil
}

// Get returns the cached aggregate, or nil when the user has never been
// recalculated.
func (r *MetricsRepository) Get(ctx context.Context, userID uuid.UUID) (*entities.PortfolioMetrics, error) {
	query := `
		SELECT user_id, total_basis, total_value, pnl, last_updated
		FROM portfolio_metrics
		WHERE user_id = $1
	`

	metrics := &entities.PortfolioMetrics{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&metrics.UserID,
		&metrics.TotalBasis,
		&metrics.TotalValue,
		&metrics.PnL,
		&metrics.LastUpdated,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get portfolio metrics: %w", err)
	}

	return metrics, nil
}
