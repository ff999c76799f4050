package valuation

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/folio-service/folio_service/internal/domain/entities"
)

// Mock implementations for testing
type MockHoldingRepository struct {
	mock.Mock
}

func (m *MockHoldingRepository) UpsertFungible(ctx context.Context, userID uuid.UUID, assetID int64, quantity, costBasis decimal.Decimal) error {
	args := m.Called(ctx, userID, assetID, quantity, costBasis)
	return args.Error(0)
}

func (m *MockHoldingRepository) InsertNonFungible(ctx context.Context, userID uuid.UUID, assetID int64, tokenID string, costBasis decimal.Decimal) error {
	args := m.Called(ctx, userID, assetID, tokenID, costBasis)
	return args.Error(0)
}

func (m *MockHoldingRepository) Delete(ctx context.Context, holdingID int64) error {
	args := m.Called(ctx, holdingID)
	return args.Error(0)
}

func (m *MockHoldingRepository) DeleteAllByUser(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockHoldingRepository) ListPositions(ctx context.Context, userID uuid.UUID) ([]*entities.Position, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Position), args.Error(1)
}

func (m *MockHoldingRepository) AssetIDsByUser(ctx context.Context, userID uuid.UUID) ([]int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]int64), args.Error(1)
}

type MockMetricsRepository struct {
	mock.Mock
}

func (m *MockMetricsRepository) Upsert(ctx context.Context, metrics *entities.PortfolioMetrics) error {
	args := m.Called(ctx, metrics)
	return args.Error(0)
}

func (m *MockMetricsRepository) Get(ctx context.Context, userID uuid.UUID) (*entities.PortfolioMetrics, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.PortfolioMetrics), args.Error(1)
}

// Test helpers

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func fungiblePosition(qty, basis string, price *string) *entities.Position {
	q := dec(qty)
	p := &entities.Position{
		AssetType:     entities.AssetTypeFungible,
		QuantityOwned: &q,
		CostBasis:     dec(basis),
	}
	if price != nil {
		lp := dec(*price)
		p.LatestPrice = &lp
	}
	return p
}

func nonFungiblePosition(tokenID, basis string, price *string) *entities.Position {
	p := &entities.Position{
		AssetType: entities.AssetTypeNonFungible,
		TokenID:   &tokenID,
		CostBasis: dec(basis),
	}
	if price != nil {
		lp := dec(*price)
		p.LatestPrice = &lp
	}
	return p
}

func strptr(s string) *string { return &s }

func TestRecalculate_MixedPortfolio(t *testing.T) {
	holdings := &MockHoldingRepository{}
	metricsRepo := &MockMetricsRepository{}
	svc := NewService(holdings, metricsRepo, zap.NewNop())
	userID := uuid.New()

	// 2 fungible units at basis 3 priced 5, one token at basis 100 priced 150
	holdings.On("ListPositions", mock.Anything, userID).Return([]*entities.Position{
		fungiblePosition("2", "3", strptr("5")),
		nonFungiblePosition("77", "100", strptr("150")),
	}, nil)
	metricsRepo.On("Upsert", mock.Anything, mock.MatchedBy(func(m *entities.PortfolioMetrics) bool {
		return m.UserID == userID &&
			m.TotalBasis.Equal(dec("106")) &&
			m.TotalValue.Equal(dec("160")) &&
			m.PnL.Equal(dec("54"))
	})).Return(nil)

	result, err := svc.Recalculate(context.Background(), userID)
	require.NoError(t, err)

	assert.True(t, result.TotalBasis.Equal(dec("106")))
	assert.True(t, result.TotalValue.Equal(dec("160")))
	assert.True(t, result.PnL.Equal(dec("54")))
	assert.False(t, result.LastUpdated.IsZero())
	metricsRepo.AssertExpectations(t)
}

func TestRecalculate_MissingPriceContributesZeroValue(t *testing.T) {
	holdings := &MockHoldingRepository{}
	metricsRepo := &MockMetricsRepository{}
	svc := NewService(holdings, metricsRepo, zap.NewNop())
	userID := uuid.New()

	holdings.On("ListPositions", mock.Anything, userID).Return([]*entities.Position{
		fungiblePosition("4", "25", nil),
	}, nil)
	metricsRepo.On("Upsert", mock.Anything, mock.Anything).Return(nil)

	result, err := svc.Recalculate(context.Background(), userID)
	require.NoError(t, err)

	assert.True(t, result.TotalBasis.Equal(dec("100")))
	assert.True(t, result.TotalValue.IsZero())
	assert.True(t, result.PnL.Equal(dec("-100")))
}

func TestRecalculate_EmptyPortfolioWritesZeros(t *testing.T) {
	holdings := &MockHoldingRepository{}
	metricsRepo := &MockMetricsRepository{}
	svc := NewService(holdings, metricsRepo, zap.NewNop())
	userID := uuid.New()

	holdings.On("ListPositions", mock.Anything, userID).Return([]*entities.Position{}, nil)
	metricsRepo.On("Upsert", mock.Anything, mock.MatchedBy(func(m *entities.PortfolioMetrics) bool {
		return m.TotalBasis.IsZero() && m.TotalValue.IsZero() && m.PnL.IsZero()
	})).Return(nil)

	_, err := svc.Recalculate(context.Background(), userID)
	require.NoError(t, err)
	metricsRepo.AssertExpectations(t)
}

func TestGetPortfolioValue_DefaultWhenNeverRecalculated(t *testing.T) {
	holdings := &MockHoldingRepository{}
	metricsRepo := &MockMetricsRepository{}
	svc := NewService(holdings, metricsRepo, zap.NewNop())
	userID := uuid.New()

	metricsRepo.On("Get", mock.Anything, userID).Return(nil, nil)

	result, err := svc.GetPortfolioValue(context.Background(), userID)
	require.NoError(t, err)

	assert.True(t, result.TotalBasis.IsZero())
	assert.True(t, result.TotalValue.IsZero())
	assert.True(t, result.PnL.IsZero())
	assert.True(t, result.LastUpdated.IsZero(), "sentinel for never recalculated")
}

func TestGetPortfolioValue_ServesCacheWithoutRecomputing(t *testing.T) {
	holdings := &MockHoldingRepository{}
	metricsRepo := &MockMetricsRepository{}
	svc := NewService(holdings, metricsRepo, zap.NewNop())
	userID := uuid.New()

	// Stale metrics survive holding removals until the next recalculation.
	cached := &entities.PortfolioMetrics{
		UserID:      userID,
		TotalBasis:  dec("106"),
		TotalValue:  dec("160"),
		PnL:         dec("54"),
		LastUpdated: time.Now().Add(-time.Hour),
	}
	metricsRepo.On("Get", mock.Anything, userID).Return(cached, nil)

	result, err := svc.GetPortfolioValue(context.Background(), userID)
	require.NoError(t, err)

	assert.True(t, result.TotalValue.Equal(dec("160")))
	holdings.AssertNotCalled(t, "ListPositions", mock.Anything, mock.Anything)
}
