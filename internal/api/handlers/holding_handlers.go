package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/folio-service/folio_service/internal/domain/services/holdings"
	"github.com/folio-service/folio_service/pkg/logger"
)

// HoldingHandlers handles the per-user holdings endpoints
type HoldingHandlers struct {
	holdings *holdings.Service
	logger   *logger.Logger
}

// NewHoldingHandlers creates new holding handlers
func NewHoldingHandlers(holdingsService *holdings.Service, log *logger.Logger) *HoldingHandlers {
	return &HoldingHandlers{
		holdings: holdingsService,
		logger:   log,
	}
}

// AddHolding records a purchase for the authenticated user. The asset is
// registered in the catalog on first sight of its contract address.
func (h *HoldingHandlers) AddHolding(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondUnauthorized(c, "User authentication required")
		return
	}

	var input holdings.AddHoldingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	if err := h.holdings.AddHolding(c.Request.Context(), userID, &input); err != nil {
		h.logger.Errorw("Failed to add holding", "error", err, "user_id", userID)
		respondServiceError(c, err)
		return
	}

	c.Status(http.StatusCreated)
}

// RemoveHolding deletes one holding by id. Unknown ids succeed so client
// retries stay idempotent.
func (h *HoldingHandlers) RemoveHolding(c *gin.Context) {
	if _, err := getUserID(c); err != nil {
		respondUnauthorized(c, "User authentication required")
		return
	}

	holdingID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondBadRequest(c, "Invalid holding id")
		return
	}

	if err := h.holdings.RemoveHolding(c.Request.Context(), holdingID); err != nil {
		h.logger.Errorw("Failed to remove holding", "error", err, "holding_id", holdingID)
		respondServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// RemoveAllHoldings clears the authenticated user's portfolio.
func (h *HoldingHandlers) RemoveAllHoldings(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondUnauthorized(c, "User authentication required")
		return
	}

	if err := h.holdings.RemoveAllHoldings(c.Request.Context(), userID); err != nil {
		h.logger.Errorw("Failed to remove holdings", "error", err, "user_id", userID)
		respondServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListHoldings returns the user's positions with catalog metadata and the
// latest price snapshot where one exists.
func (h *HoldingHandlers) ListHoldings(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondUnauthorized(c, "User authentication required")
		return
	}

	positions, err := h.holdings.ListHoldings(c.Request.Context(), userID)
	if err != nil {
		h.logger.Errorw("Failed to list holdings", "error", err, "user_id", userID)
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"holdings": positions, "count": len(positions)})
}
