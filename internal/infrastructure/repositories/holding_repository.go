package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/folio-service/folio_service/internal/domain/entities"
	apperrors "github.com/folio-service/folio_service/pkg/errors"
)

// HoldingRepository is the per-user holdings ledger.
type HoldingRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewHoldingRepository creates a new holding repository
func NewHoldingRepository(db *sqlx.DB, logger *zap.Logger) *HoldingRepository {
	return &HoldingRepository{db: db, logger: logger}
}

// UpsertFungible merges a purchase into the user's single fungible row for
// the asset. The merge arithmetic runs inside the conflict clause so two
// concurrent adds serialize in the store instead of racing a read-modify-
// write in application code. Quantity must be strictly positive (enforced
// by the service layer), which keeps the weighted-average divisor nonzero.
func (r *HoldingRepository) UpsertFungible(ctx context.Context, userID uuid.UUID, assetID int64, quantity, costBasis decimal.Decimal) error {
	query := `
		INSERT INTO holdings (user_id, asset_id, quantity_owned, cost_basis)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, asset_id) WHERE token_id IS NULL DO UPDATE SET
			quantity_owned = holdings.quantity_owned + EXCLUDED.quantity_owned,
			cost_basis = (holdings.cost_basis * holdings.quantity_owned + EXCLUDED.cost_basis * EXCLUDED.quantity_owned)
				/ (holdings.quantity_owned + EXCLUDED.quantity_owned),
			updated_at = now()
	`

	_, err := r.db.ExecContext(ctx, query, userID, assetID, quantity, costBasis)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ConstraintViolation(err, "fungible holding upsert rejected")
		}
		r.logger.Error("failed to upsert fungible holding",
			zap.Error(err),
			zap.String("user_id", userID.String()),
			zap.Int64("asset_id", assetID),
		)
		return fmt.Errorf("failed to upsert fungible holding: %w", err)
	}

	r.logger.Info("fungible holding upserted",
		zap.String("user_id", userID.String()),
		zap.Int64("asset_id", assetID),
		zap.String("quantity", quantity.String()),
	)

	return nil
}

// InsertNonFungible records ownership of one specific token id. Re-adding
// an owned token is a silent no-op and never touches the stored cost basis.
func (r *HoldingRepository) InsertNonFungible(ctx context.Context, userID uuid.UUID, assetID int64, tokenID string, costBasis decimal.Decimal) error {
	query := `
		INSERT INTO holdings (user_id, asset_id, token_id, cost_basis)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, asset_id, token_id) WHERE token_id IS NOT NULL DO NOTHING
	`

	result, err := r.db.ExecContext(ctx, query, userID, assetID, tokenID, costBasis)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ConstraintViolation(err, "non-fungible holding insert rejected")
		}
		r.logger.Error("failed to insert non-fungible holding",
			zap.Error(err),
			zap.String("user_id", userID.String()),
			zap.Int64("asset_id", assetID),
			zap.String("token_id", tokenID),
		)
		return fmt.Errorf("failed to insert non-fungible holding: %w", err)
	}

	if inserted, _ := result.RowsAffected(); inserted > 0 {
		r.logger.Info("non-fungible holding recorded",
			zap.String("user_id", userID.String()),
			zap.Int64("asset_id", assetID),
			zap.String("token_id", tokenID),
		)
	}

	return nil
}

// Delete removes one holding by surrogate key. Deleting an absent id is a
// no-op so retries stay safe.
func (r *HoldingRepository) Delete(ctx context.Context, holdingID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM holdings WHERE id = $1`, holdingID)
	if err != nil {
		return fmt.Errorf("failed to delete holding: %w", err)
	}
	return nil
}

// DeleteAllByUser removes every holding row of the user.
func (r *HoldingRepository) DeleteAllByUser(ctx context.Context, userID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM holdings WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete holdings: %w", err)
	}

	removed, _ := result.RowsAffected()
	r.logger.Info("holdings removed",
		zap.String("user_id", userID.String()),
		zap.Int64("count", removed),
	)

	return nil
}

// ListPositions returns the user's holdings joined with catalog metadata
// and the latest price snapshot. Assets without a snapshot row carry a nil
// latest price.
func (r *HoldingRepository) ListPositions(ctx context.Context, userID uuid.UUID) ([]*entities.Position, error) {
	query := `
		SELECT h.id, a.id, a.asset_type, a.smart_contract_address, a.chain,
		       a.token_name, a.token_description,
		       h.quantity_owned, h.token_id, h.cost_basis, h.updated_at,
		       dp.price
		FROM holdings h
		INNER JOIN assets a ON a.id = h.asset_id
		LEFT JOIN daily_prices dp ON dp.asset_id = h.asset_id
		WHERE h.user_id = $1
		ORDER BY h.id
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		r.logger.Error("failed to query positions",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("failed to query positions: %w", err)
	}
	defer rows.Close()

	positions := []*entities.Position{}
	for rows.Next() {
		var (
			position    entities.Position
			quantity    decimal.NullDecimal
			tokenID     sql.NullString
			latestPrice decimal.NullDecimal
		)
		err := rows.Scan(
			&position.HoldingID,
			&position.AssetID,
			&position.AssetType,
			&position.SmartContractAddress,
			&position.Chain,
			&position.TokenName,
			&position.TokenDescription,
			&quantity,
			&tokenID,
			&position.CostBasis,
			&position.UpdatedAt,
			&latestPrice,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}

		if quantity.Valid {
			position.QuantityOwned = &quantity.Decimal
		}
		if tokenID.Valid {
			position.TokenID = &tokenID.String
		}
		if latestPrice.Valid {
			position.LatestPrice = &latestPrice.Decimal
		}

		positions = append(positions, &position)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return positions, nil
}

// AssetIDsByUser returns the distinct asset ids the user holds.
func (r *HoldingRepository) AssetIDsByUser(ctx context.Context, userID uuid.UUID) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT asset_id FROM holdings WHERE user_id = $1 ORDER BY asset_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query held assets: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan asset id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return ids, nil
}
