package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/folio-service/folio_service/internal/domain/services/pricing"
	"github.com/folio-service/folio_service/internal/domain/services/valuation"
	"github.com/folio-service/folio_service/pkg/logger"
)

// PortfolioHandlers handles portfolio aggregate endpoints
type PortfolioHandlers struct {
	valuation *valuation.Service
	pricing   *pricing.Service
	logger    *logger.Logger
}

// NewPortfolioHandlers creates new portfolio handlers
func NewPortfolioHandlers(valuationService *valuation.Service, pricingService *pricing.Service, log *logger.Logger) *PortfolioHandlers {
	return &PortfolioHandlers{
		valuation: valuationService,
		pricing:   pricingService,
		logger:    log,
	}
}

// GetPortfolioValue returns the cached aggregate without recomputing.
// Users that were never recalculated get zeros.
func (h *PortfolioHandlers) GetPortfolioValue(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondUnauthorized(c, "User authentication required")
		return
	}

	metrics, err := h.valuation.GetPortfolioValue(c.Request.Context(), userID)
	if err != nil {
		h.logger.Errorw("Failed to read portfolio value", "error", err, "user_id", userID)
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, metrics)
}

// Recalculate recomputes the user's aggregate from current holdings and
// prices, persists it, and returns the fresh value.
func (h *PortfolioHandlers) Recalculate(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondUnauthorized(c, "User authentication required")
		return
	}

	metrics, err := h.valuation.Recalculate(c.Request.Context(), userID)
	if err != nil {
		h.logger.Errorw("Failed to recalculate portfolio", "error", err, "user_id", userID)
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, metrics)
}

// Backfill seeds historical price points for every asset the user holds.
// The run summary reports partial progress when individual points fail.
func (h *PortfolioHandlers) Backfill(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondUnauthorized(c, "User authentication required")
		return
	}

	summary, err := h.pricing.Backfill(c.Request.Context(), userID)
	if err != nil {
		h.logger.Errorw("Backfill failed", "error", err, "user_id", userID)
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}
