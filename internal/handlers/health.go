package handlers

import (
	"context"
	"net/http"
	"time"

	"catalog-sync-service/internal/repository"
	"github.com/gin-gonic/gin"
)

const serviceName = "catalog-sync-service"

// HealthCheck returns service health status (basic)
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": serviceName,
	})
}

type HealthHandler struct {
	repo repository.CatalogRepository
}

func NewHealthHandler(repo repository.CatalogRepository) *HealthHandler {
	return &HealthHandler{repo: repo}
}

// ReadinessCheck reports ready once every catalog table exists
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.repo.VerifyTables(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":    "unhealthy",
			"service":   serviceName,
			"timestamp": time.Now().UTC(),
			"error":     err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "ready",
		"service":   serviceName,
		"timestamp": time.Now().UTC(),
		"checks": gin.H{
			"tables": "present",
		},
	})
}
