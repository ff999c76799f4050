package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/folio-service/folio_service/internal/domain/entities"
	"github.com/folio-service/folio_service/internal/domain/services/holdings"
	"github.com/folio-service/folio_service/pkg/logger"
)

type memAssetRepo struct {
	nextID int64
	byAddr map[string]*entities.Asset
}

func newMemAssetRepo() *memAssetRepo {
	return &memAssetRepo{nextID: 1, byAddr: make(map[string]*entities.Asset)}
}

func (r *memAssetRepo) ResolveOrRegister(_ context.Context, asset *entities.Asset) (*entities.Asset, error) {
	if existing, ok := r.byAddr[asset.SmartContractAddress]; ok {
		return existing, nil
	}
	stored := *asset
	stored.ID = r.nextID
	r.nextID++
	r.byAddr[asset.SmartContractAddress] = &stored
	return &stored, nil
}

func (r *memAssetRepo) ListIDs(context.Context) ([]int64, error) {
	ids := make([]int64, 0, len(r.byAddr))
	for _, a := range r.byAddr {
		ids = append(ids, a.ID)
	}
	return ids, nil
}

type memHoldingRepo struct {
	positions []*entities.Position
}

func (r *memHoldingRepo) UpsertFungible(_ context.Context, userID uuid.UUID, assetID int64, quantity, costBasis decimal.Decimal) error {
	r.positions = append(r.positions, &entities.Position{
		HoldingID:     int64(len(r.positions) + 1),
		AssetID:       assetID,
		AssetType:     entities.AssetTypeFungible,
		QuantityOwned: &quantity,
		CostBasis:     costBasis,
	})
	return nil
}

func (r *memHoldingRepo) InsertNonFungible(_ context.Context, userID uuid.UUID, assetID int64, tokenID string, costBasis decimal.Decimal) error {
	r.positions = append(r.positions, &entities.Position{
		HoldingID: int64(len(r.positions) + 1),
		AssetID:   assetID,
		AssetType: entities.AssetTypeNonFungible,
		TokenID:   &tokenID,
		CostBasis: costBasis,
	})
	return nil
}

func (r *memHoldingRepo) Delete(_ context.Context, holdingID int64) error {
	kept := r.positions[:0]
	for _, p := range r.positions {
		if p.HoldingID != holdingID {
			kept = append(kept, p)
		}
	}
	r.positions = kept
	return nil
}

func (r *memHoldingRepo) DeleteAllByUser(context.Context, uuid.UUID) error {
	r.positions = nil
	return nil
}

func (r *memHoldingRepo) ListPositions(context.Context, uuid.UUID) ([]*entities.Position, error) {
	return r.positions, nil
}

func (r *memHoldingRepo) AssetIDsByUser(context.Context, uuid.UUID) ([]int64, error) {
	seen := make(map[int64]bool)
	var ids []int64
	for _, p := range r.positions {
		if !seen[p.AssetID] {
			seen[p.AssetID] = true
			ids = append(ids, p.AssetID)
		}
	}
	return ids, nil
}

func setupHoldingRouter(t *testing.T, authenticated bool) (*gin.Engine, *memHoldingRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	holdingRepo := &memHoldingRepo{}
	svc := holdings.NewService(newMemAssetRepo(), holdingRepo, zap.NewNop())
	h := NewHoldingHandlers(svc, logger.NewLogger(zap.NewNop()))

	router := gin.New()
	if authenticated {
		userID := uuid.New()
		router.Use(func(c *gin.Context) {
			c.Set("user_id", userID)
			c.Next()
		})
	}
	router.POST("/assets", h.AddHolding)
	router.GET("/assets", h.ListHoldings)
	router.DELETE("/assets", h.RemoveAllHoldings)
	router.DELETE("/assets/:id", h.RemoveHolding)

	return router, holdingRepo
}

func TestAddHoldingFungible(t *testing.T) {
	router, repo := setupHoldingRouter(t, true)

	body, _ := json.Marshal(map[string]interface{}{
		"asset_type":             "ERC-20",
		"smart_contract_address": "0xabc",
		"quantity":               "10",
		"cost_basis":             "5",
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/assets", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, repo.positions, 1)
	assert.True(t, repo.positions[0].QuantityOwned.Equal(decimal.NewFromInt(10)))
}

func TestAddHoldingRejectsUnknownAssetType(t *testing.T) {
	router, repo := setupHoldingRouter(t, true)

	body, _ := json.Marshal(map[string]interface{}{
		"asset_type":             "ERC-1155",
		"smart_contract_address": "0xabc",
		"cost_basis":             "5",
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/assets", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, repo.positions)
}

func TestAddHoldingRejectsMalformedBody(t *testing.T) {
	router, _ := setupHoldingRouter(t, true)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/assets", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAddHoldingRequiresAuth(t *testing.T) {
	router, _ := setupHoldingRouter(t, false)

	body, _ := json.Marshal(map[string]interface{}{
		"asset_type":             "ERC-20",
		"smart_contract_address": "0xabc",
		"quantity":               "1",
		"cost_basis":             "1",
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/assets", bytes.NewReader(body))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRemoveHoldingInvalidID(t *testing.T) {
	router, _ := setupHoldingRouter(t, true)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/assets/not-a-number", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRemoveHoldingIdempotent(t *testing.T) {
	router, _ := setupHoldingRouter(t, true)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/assets/999", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestListHoldings(t *testing.T) {
	router, repo := setupHoldingRouter(t, true)

	qty := decimal.NewFromInt(2)
	repo.positions = append(repo.positions, &entities.Position{
		HoldingID:     1,
		AssetID:       1,
		AssetType:     entities.AssetTypeFungible,
		QuantityOwned: &qty,
		CostBasis:     decimal.NewFromInt(3),
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/assets", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
}

func TestRemoveAllHoldings(t *testing.T) {
	router, repo := setupHoldingRouter(t, true)

	qty := decimal.NewFromInt(2)
	repo.positions = append(repo.positions, &entities.Position{HoldingID: 1, AssetID: 1, AssetType: entities.AssetTypeFungible, QuantityOwned: &qty})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/assets", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, repo.positions)
}
