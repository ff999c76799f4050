package repositories

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/folio-service/folio_service/internal/domain/entities"
)

// AssetRepository is the canonical asset catalog.
type AssetRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewAssetRepository creates a new asset repository
func NewAssetRepository(db *sqlx.DB, logger *zap.Logger) *AssetRepository {
	return &AssetRepository{db: db, logger: logger}
}

// ResolveOrRegister looks up the catalog row for the asset's contract
// address, inserting it first when absent. The single upsert-returning
// statement keeps concurrent first registrations of the same address from
// creating duplicates; the touch of updated_at on conflict exists only to
// make RETURNING yield the existing row.
func (r *AssetRepository) ResolveOrRegister(ctx context.Context, asset *entities.Asset) (*entities.Asset, error) {
	query := `
		INSERT INTO assets (asset_type, smart_contract_address, chain, token_name, token_description)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (smart_contract_address) DO UPDATE SET updated_at = now()
		RETURNING id, asset_type, smart_contract_address, chain, token_name, token_description, created_at, updated_at
	`

	resolved := &entities.Asset{}
	err := r.db.QueryRowContext(ctx, query,
		asset.AssetType,
		asset.SmartContractAddress,
		asset.Chain,
		asset.TokenName,
		asset.TokenDescription,
	).Scan(
		&resolved.ID,
		&resolved.AssetType,
		&resolved.SmartContractAddress,
		&resolved.Chain,
		&resolved.TokenName,
		&resolved.TokenDescription,
		&resolved.CreatedAt,
		&resolved.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("failed to resolve asset",
			zap.Error(err),
			zap.String("contract_address", asset.SmartContractAddress),
		)
		return nil, fmt.Errorf("failed to resolve asset: %w", err)
	}

	if resolved.CreatedAt.Equal(resolved.UpdatedAt) {
		r.logger.Info("asset registered",
			zap.Int64("asset_id", resolved.ID),
			zap.String("contract_address", resolved.SmartContractAddress),
			zap.String("asset_type", string(resolved.AssetType)),
		)
	}

	return resolved, nil
}

// ListIDs returns the ids of every cataloged asset.
func (r *AssetRepository) ListIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM assets ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
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
