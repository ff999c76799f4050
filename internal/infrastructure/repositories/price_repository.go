package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/folio-service/folio_service/internal/domain/entities"
)

// PriceRepository is the price time-series store: the append-only daily
// history and the latest-price snapshot.
type PriceRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewPriceRepository creates a new price repository
func NewPriceRepository(db *sqlx.DB, logger *zap.Logger) *PriceRepository {
	return &PriceRepository{db: db, logger: logger}
}

// UpsertHistory writes one (asset, date) history point. Re-ingesting the
// same date overwrites price and created_at instead of duplicating.
func (r *PriceRepository) UpsertHistory(ctx context.Context, point *entities.PriceHistoryPoint) error {
	query := `
		INSERT INTO price_history (asset_id, price, currency, date, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (asset_id, date) DO UPDATE SET
			price = EXCLUDED.price,
			created_at = EXCLUDED.created_at
	`

	_, err := r.db.ExecContext(ctx, query,
		point.AssetID,
		point.Price,
		point.Currency,
		point.Date,
		point.CreatedAt,
	)
	if err != nil {
		r.logger.Error("failed to upsert price history",
			zap.Error(err),
			zap.Int64("asset_id", point.AssetID),
			zap.Time("date", point.Date),
		)
		return fmt.Errorf("failed to upsert price history: %w", err)
	}

	return nil
}

// LatestByDate returns the max-date history point for the asset, or nil
// when the asset has no history yet. The snapshot refresh is driven off
// this row, never off the point just written, so an out-of-order backfill
// cannot regress a newer price.
func (r *PriceRepository) LatestByDate(ctx context.Context, assetID int64) (*entities.PriceHistoryPoint, error) {
	query := `
		SELECT id, asset_id, price, currency, date, created_at
		FROM price_history
		WHERE asset_id = $1
		ORDER BY date DESC
		LIMIT 1
	`

	point := &entities.PriceHistoryPoint{}
	err := r.db.QueryRowContext(ctx, query, assetID).Scan(
		&point.ID,
		&point.AssetID,
		&point.Price,
		&point.Currency,
		&point.Date,
		&point.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest price: %w", err)
	}

	return point, nil
}

// UpsertDaily overwrites the asset's latest-price snapshot row.
func (r *PriceRepository) UpsertDaily(ctx context.Context, assetID int64, price decimal.Decimal, currency string, updatedAt time.Time) error {
	query := `
		INSERT INTO daily_prices (asset_id, price, currency, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (asset_id) DO UPDATE SET
			price = EXCLUDED.price,
			currency = EXCLUDED.currency,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query, assetID, price, currency, updatedAt)
	if err != nil {
		r.logger.Error("failed to upsert daily price",
			zap.Error(err),
			zap.Int64("asset_id", assetID),
		)
		return fmt.Errorf("failed to upsert daily price: %w", err)
	}

	return nil
}

// History returns the asset's price points ordered by date ascending.
// Assets without history yield an empty slice.
func (r *PriceRepository) History(ctx context.Context, assetID int64) ([]*entities.PriceHistoryPoint, error) {
	query := `
		SELECT id, asset_id, price, currency, date, created_at
		FROM price_history
		WHERE asset_id = $1
		ORDER BY date ASC
	`

	rows, err := r.db.QueryContext(ctx, query, assetID)
	if err != nil {
		return nil, fmt.Errorf("failed to query price history: %w", err)
	}
	defer rows.Close()

	points := []*entities.PriceHistoryPoint{}
	for rows.Next() {
		point := &entities.PriceHistoryPoint{}
		err := rows.Scan(
			&point.ID,
			&point.AssetID,
			&point.Price,
			&point.Currency,
			&point.Date,
			&point.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan price point: %w", err)
		}
		points = append(points, point)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return points, nil
}
