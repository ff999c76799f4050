package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/folio-service/folio_service/pkg/health"
	"github.com/folio-service/folio_service/pkg/version"
)

var startTime = time.Now()

// HealthHandlers handles liveness, readiness, and version endpoints
type HealthHandlers struct {
	checker *health.HealthChecker
}

// NewHealthHandlers creates new health handlers
func NewHealthHandlers(checker *health.HealthChecker) *HealthHandlers {
	return &HealthHandlers{checker: checker}
}

// Health runs every registered check and reports per-component results.
func (h *HealthHandlers) Health(c *gin.Context) {
	checks := h.checker.CheckAll(c.Request.Context())

	status := health.StatusHealthy
	httpStatus := http.StatusOK
	for _, result := range checks {
		if result.Status != health.StatusHealthy {
			status = health.StatusUnhealthy
			httpStatus = http.StatusServiceUnavailable
			break
		}
	}

	c.JSON(httpStatus, gin.H{
		"status":    status,
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(startTime).String(),
		"version":   version.Get().Version,
		"checks":    checks,
	})
}

// Ready reports whether the service can serve traffic.
func (h *HealthHandlers) Ready(c *gin.Context) {
	if !h.checker.Healthy(c.Request.Context()) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// Live reports process liveness only; no dependencies are checked.
func (h *HealthHandlers) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

// Version returns build information.
func (h *HealthHandlers) Version(c *gin.Context) {
	c.JSON(http.StatusOK, version.Get())
}
