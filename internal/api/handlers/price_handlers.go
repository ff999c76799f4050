package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/folio-service/folio_service/internal/domain/services/pricing"
	"github.com/folio-service/folio_service/pkg/logger"
)

// PriceHandlers handles the price history endpoints
type PriceHandlers struct {
	pricing *pricing.Service
	logger  *logger.Logger
}

// NewPriceHandlers creates new price handlers
func NewPriceHandlers(pricingService *pricing.Service, log *logger.Logger) *PriceHandlers {
	return &PriceHandlers{
		pricing: pricingService,
		logger:  log,
	}
}

// GetHistory returns the asset's daily price series ordered by date
// ascending. Assets without history return an empty list, not 404.
func (h *PriceHandlers) GetHistory(c *gin.Context) {
	if _, err := getUserID(c); err != nil {
		respondUnauthorized(c, "User authentication required")
		return
	}

	assetID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondBadRequest(c, "Invalid asset id")
		return
	}

	points, err := h.pricing.GetHistory(c.Request.Context(), assetID)
	if err != nil {
		h.logger.Errorw("Failed to read price history", "error", err, "asset_id", assetID)
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"asset_id": assetID, "history": points, "count": len(points)})
}
