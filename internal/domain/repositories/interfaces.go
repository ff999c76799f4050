package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/folio-service/folio_service/internal/domain/entities"
)

// UserRepository anchors externally-issued identities to local user rows.
type UserRepository interface {
	// EnsureBySubject returns the user for the given external subject,
	// creating the row atomically on first sight.
	EnsureBySubject(ctx context.Context, subject string) (*entities.User, error)
}

// AssetRepository is the canonical asset catalog.
type AssetRepository interface {
	// ResolveOrRegister returns the catalog row for the contract address,
	// inserting it first if absent. Concurrent first registrations of the
	// same address must resolve to a single row.
	ResolveOrRegister(ctx context.Context, asset *entities.Asset) (*entities.Asset, error)

	// ListIDs returns the ids of every cataloged asset.
	ListIDs(ctx context.Context) ([]int64, error)
}

// HoldingRepository is the per-user holdings ledger.
type HoldingRepository interface {
	// UpsertFungible merges a purchase into the user's single fungible row
	// for the asset: quantities add, cost basis becomes the running
	// weighted average. Inserts the row when absent.
	UpsertFungible(ctx context.Context, userID uuid.UUID, assetID int64, quantity, costBasis decimal.Decimal) error

	// InsertNonFungible records ownership of one specific token. A repeat
	// insert of the same (user, asset, token) is a no-op that leaves the
	// original cost basis untouched.
	InsertNonFungible(ctx context.Context, userID uuid.UUID, assetID int64, tokenID string, costBasis decimal.Decimal) error

	// Delete removes one holding by surrogate key; absent ids are a no-op.
	Delete(ctx context.Context, holdingID int64) error

	// DeleteAllByUser removes every holding of the user.
	DeleteAllByUser(ctx context.Context, userID uuid.UUID) error

	// ListPositions returns the user's holdings joined with catalog
	// metadata and the latest price snapshot (nil where no price exists).
	ListPositions(ctx context.Context, userID uuid.UUID) ([]*entities.Position, error)

	// AssetIDsByUser returns the distinct asset ids the user holds.
	AssetIDsByUser(ctx context.Context, userID uuid.UUID) ([]int64, error)
}

// PriceRepository is the price time-series store: the append-only daily
// history plus the latest-price snapshot.
type PriceRepository interface {
	// UpsertHistory writes one (asset, date) point, overwriting price and
	// created_at on conflict.
	UpsertHistory(ctx context.Context, point *entities.PriceHistoryPoint) error

	// LatestByDate returns the history point with the maximum date for the
	// asset, or nil when the asset has no history.
	LatestByDate(ctx context.Context, assetID int64) (*entities.PriceHistoryPoint, error)

	// UpsertDaily overwrites the asset's snapshot row.
	UpsertDaily(ctx context.Context, assetID int64, price decimal.Decimal, currency string, updatedAt time.Time) error

	// History returns the asset's points ordered by date ascending.
	History(ctx context.Context, assetID int64) ([]*entities.PriceHistoryPoint, error)
}

// MetricsRepository is the per-user portfolio metrics cache.
type MetricsRepository interface {
	// Upsert writes the user's aggregate in a single insert-or-update.
	Upsert(ctx context.Context, metrics *entities.PortfolioMetrics) error

	// Get returns the cached aggregate, or nil when the user has never
	// been recalculated.
	Get(ctx context.Context, userID uuid.UUID) (*entities.PortfolioMetrics, error)
}
