package holdings

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/folio-service/folio_service/internal/domain/entities"
	"github.com/folio-service/folio_service/internal/domain/repositories"
	apperrors "github.com/folio-service/folio_service/pkg/errors"
)

// defaultChain is used when a request does not name a chain.
// TODO: drop once add requests carry the chain end to end.
const defaultChain = "Ethereum"

// Service manages the holdings ledger: adding positions (with catalog
// registration on first sight of an asset), removals, and the joined
// listing.
type Service struct {
	assets   repositories.AssetRepository
	holdings repositories.HoldingRepository
	logger   *zap.Logger
}

// NewService creates a new holdings service
func NewService(assets repositories.AssetRepository, holdings repositories.HoldingRepository, logger *zap.Logger) *Service {
	return &Service{
		assets:   assets,
		holdings: holdings,
		logger:   logger,
	}
}

// AddHoldingInput carries one add request. Quantity applies to fungible
// assets only, TokenID to non-fungible ones.
type AddHoldingInput struct {
	AssetType            entities.AssetType `json:"asset_type"`
	SmartContractAddress string             `json:"smart_contract_address"`
	Chain                string             `json:"chain"`
	TokenDescription     string             `json:"token_description"`
	Quantity             *decimal.Decimal   `json:"quantity,omitempty"`
	TokenID              *string            `json:"token_id,omitempty"`
	CostBasis            decimal.Decimal    `json:"cost_basis"`
}

func (in *AddHoldingInput) validate() error {
	if strings.TrimSpace(in.SmartContractAddress) == "" {
		return apperrors.InvalidInput("smart contract address is required")
	}
	if !in.AssetType.Valid() {
		return apperrors.InvalidInputf("unsupported asset type %q", in.AssetType)
	}
	if in.CostBasis.IsNegative() {
		return apperrors.InvalidInput("cost basis cannot be negative")
	}

	switch in.AssetType {
	case entities.AssetTypeFungible:
		if in.Quantity == nil {
			return apperrors.InvalidInput("quantity is required for fungible assets")
		}
		if !in.Quantity.IsPositive() {
			return apperrors.InvalidInput("quantity must be positive")
		}
	case entities.AssetTypeNonFungible:
		if in.TokenID == nil || strings.TrimSpace(*in.TokenID) == "" {
			return apperrors.InvalidInput("token id is required for non-fungible assets")
		}
	}

	return nil
}

// AddHolding validates the request, resolves (or registers) the asset in
// the catalog, and records the position. Invalid combinations are rejected
// before any write. Fungible repeats merge into the existing row with a
// weighted-average cost basis; non-fungible repeats of the same token are
// silently idempotent.
func (s *Service) AddHolding(ctx context.Context, userID uuid.UUID, in *AddHoldingInput) error {
	if err := in.validate(); err != nil {
		return err
	}

	chain := in.Chain
	if chain == "" {
		chain = defaultChain
	}

	asset, err := s.assets.ResolveOrRegister(ctx, &entities.Asset{
		AssetType:            in.AssetType,
		SmartContractAddress: in.SmartContractAddress,
		Chain:                chain,
		TokenName:            placeholderTokenName(),
		TokenDescription:     in.TokenDescription,
	})
	if err != nil {
		return fmt.Errorf("resolve asset: %w", err)
	}

	switch in.AssetType {
	case entities.AssetTypeFungible:
		if err := s.holdings.UpsertFungible(ctx, userID, asset.ID, *in.Quantity, in.CostBasis); err != nil {
			return fmt.Errorf("record fungible holding: %w", err)
		}
	case entities.AssetTypeNonFungible:
		if err := s.holdings.InsertNonFungible(ctx, userID, asset.ID, *in.TokenID, in.CostBasis); err != nil {
			return fmt.Errorf("record non-fungible holding: %w", err)
		}
	}

	s.logger.Info("holding added",
		zap.String("user_id", userID.String()),
		zap.Int64("asset_id", asset.ID),
		zap.String("asset_type", string(in.AssetType)),
	)

	return nil
}

// RemoveHolding deletes one holding by id. Removing an id that no longer
// exists is a success so retries stay idempotent.
func (s *Service) RemoveHolding(ctx context.Context, holdingID int64) error {
	return s.holdings.Delete(ctx, holdingID)
}

// RemoveAllHoldings deletes every holding of the user. Cached portfolio
// metrics are left untouched until the next recalculation.
func (s *Service) RemoveAllHoldings(ctx context.Context, userID uuid.UUID) error {
	return s.holdings.DeleteAllByUser(ctx, userID)
}

// ListHoldings returns the user's positions with asset metadata and the
// latest price where one exists. An empty portfolio is an empty slice.
func (s *Service) ListHoldings(ctx context.Context, userID uuid.UUID) ([]*entities.Position, error) {
	return s.holdings.ListPositions(ctx, userID)
}

// placeholderTokenName generates the short display code used until asset
// metadata is fetched from the contract itself.
// TODO: replace with a metadata lookup against the contract.
func placeholderTokenName() string {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	b := make([]byte, 3)
	for i := range b {
		b[i] = letters[rand.Intn(len(letters))]
	}
	return string(b)
}
