package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AssetType distinguishes quantity-based tokens from unit-based tokens.
// The tags mirror the contract standards they originate from.
type AssetType string

const (
	AssetTypeFungible    AssetType = "ERC-20"
	AssetTypeNonFungible AssetType = "ERC-721"
)

// Valid reports whether the asset type is one of the supported tags.
func (t AssetType) Valid() bool {
	return t == AssetTypeFungible || t == AssetTypeNonFungible
}

// Asset is a row in the canonical asset catalog, deduplicated by contract
// address. The catalog is append-only; holdings reference it but never
// remove from it.
type Asset struct {
	ID                   int64     `json:"id" db:"id"`
	AssetType            AssetType `json:"asset_type" db:"asset_type"`
	SmartContractAddress string    `json:"smart_contract_address" db:"smart_contract_address"`
	Chain                string    `json:"chain" db:"chain"`
	TokenName            string    `json:"token_name" db:"token_name"`
	TokenDescription     string    `json:"token_description" db:"token_description"`
	CreatedAt            time.Time `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time `json:"updated_at" db:"updated_at"`
}

// Holding is a user's position in a catalog asset. QuantityOwned is set only
// for fungible assets, TokenID only for non-fungible ones; the storage layer
// keeps both columns nullable and the unique indexes enforce one row per
// (user, asset) for fungibles and one per (user, asset, token) for
// non-fungibles.
type Holding struct {
	ID            int64            `json:"id" db:"id"`
	UserID        uuid.UUID        `json:"user_id" db:"user_id"`
	AssetID       int64            `json:"asset_id" db:"asset_id"`
	QuantityOwned *decimal.Decimal `json:"quantity_owned,omitempty" db:"quantity_owned"`
	TokenID       *string          `json:"token_id,omitempty" db:"token_id"`
	CostBasis     decimal.Decimal  `json:"cost_basis" db:"cost_basis"`
	CreatedAt     time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at" db:"updated_at"`
}

// Position is one row of a user's holdings listing: the holding joined with
// its catalog metadata and, when one exists, the latest observed price.
type Position struct {
	HoldingID            int64            `json:"holding_id" db:"holding_id"`
	AssetID              int64            `json:"asset_id" db:"asset_id"`
	AssetType            AssetType        `json:"asset_type" db:"asset_type"`
	SmartContractAddress string           `json:"smart_contract_address" db:"smart_contract_address"`
	Chain                string           `json:"chain" db:"chain"`
	TokenName            string           `json:"token_name" db:"token_name"`
	TokenDescription     string           `json:"token_description" db:"token_description"`
	QuantityOwned        *decimal.Decimal `json:"quantity_owned,omitempty" db:"quantity_owned"`
	TokenID              *string          `json:"token_id,omitempty" db:"token_id"`
	CostBasis            decimal.Decimal  `json:"cost_basis" db:"cost_basis"`
	UpdatedAt            time.Time        `json:"updated_at" db:"updated_at"`
	LatestPrice          *decimal.Decimal `json:"latest_price,omitempty" db:"latest_price"`
}

// BasisContribution is the position's share of the portfolio cost basis.
// Fungible positions contribute unit basis times quantity; non-fungible
// positions carry their basis per unit.
func (p *Position) BasisContribution() decimal.Decimal {
	if p.AssetType == AssetTypeFungible {
		if p.QuantityOwned == nil {
			return decimal.Zero
		}
		return p.CostBasis.Mul(*p.QuantityOwned)
	}
	return p.CostBasis
}

// ValueContribution is the position's share of the portfolio market value.
// A position whose asset has no recorded price yet contributes zero.
func (p *Position) ValueContribution() decimal.Decimal {
	if p.LatestPrice == nil {
		return decimal.Zero
	}
	if p.AssetType == AssetTypeFungible {
		if p.QuantityOwned == nil {
			return decimal.Zero
		}
		return p.LatestPrice.Mul(*p.QuantityOwned)
	}
	return *p.LatestPrice
}

// MergeFungible folds an additional purchase into an existing fungible
// position, producing the summed quantity and the running weighted-average
// unit cost. Callers must guarantee addQty > 0 so the merged quantity stays
// strictly positive.
func MergeFungible(oldQty, oldBasis, addQty, addBasis decimal.Decimal) (newQty, newBasis decimal.Decimal) {
	newQty = oldQty.Add(addQty)
	newBasis = oldBasis.Mul(oldQty).Add(addBasis.Mul(addQty)).Div(newQty)
	return newQty, newBasis
}

// DailyPrice is the latest-price snapshot: at most one row per asset,
// always overwritten with the price of the newest history row regardless
// of which calendar date produced it.
type DailyPrice struct {
	AssetID   int64           `json:"asset_id" db:"asset_id"`
	Price     decimal.Decimal `json:"price" db:"price"`
	Currency  string          `json:"currency" db:"currency"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}

// PriceHistoryPoint is one row of the append-only daily price series,
// unique per (asset, calendar date). Backfilled rows are recognizable by
// CreatedAt equalling the historical date instead of the ingestion time.
type PriceHistoryPoint struct {
	ID        int64           `json:"id" db:"id"`
	AssetID   int64           `json:"asset_id" db:"asset_id"`
	Price     decimal.Decimal `json:"price" db:"price"`
	Currency  string          `json:"currency" db:"currency"`
	Date      time.Time       `json:"date" db:"date"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

// PortfolioMetrics is the cached per-user aggregate written by the
// valuation engine. A zero-value LastUpdated marks "never recalculated".
type PortfolioMetrics struct {
	UserID      uuid.UUID       `json:"user_id" db:"user_id"`
	TotalBasis  decimal.Decimal `json:"total_basis" db:"total_basis"`
	TotalValue  decimal.Decimal `json:"total_value" db:"total_value"`
	PnL         decimal.Decimal `json:"pnl" db:"pnl"`
	LastUpdated time.Time       `json:"last_updated" db:"last_updated"`
}

// User anchors the foreign-key graph. Identity issuance is external; the
// service only records the opaque subject the identity provider hands it.
type User struct {
	ID              uuid.UUID `json:"id" db:"id"`
	ExternalSubject string    `json:"external_subject" db:"external_subject"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// DefaultCurrency is carried on every price row. Conversion between
// currencies is out of scope; the value is stored and echoed verbatim.
const DefaultCurrency = "USD"
