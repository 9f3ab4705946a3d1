package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/huxiangculture/platform/pkg/database"
)

type HealthHandler struct {
	db *gorm.DB
}

func NewHealthHandler(db *gorm.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// Index describes the API surface, useful as a smoke check for deployments.
func (h *HealthHandler) Index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "湖湘文化数字化平台 API 接口",
		"version": "1.0.0",
		"endpoints": gin.H{
			"auth":      "/api/auth",
			"resources": "/api/resources",
			"community": "/api/community",
			"health":    "/health",
			"metrics":   "/metrics",
		},
	})
}

func (h *HealthHandler) Health(c *gin.Context) {
	status, dbStatus := "healthy", "connected"
	code := http.StatusOK

	if err := database.Ping(h.db); err != nil {
		status, dbStatus = "unhealthy", "error"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":    status,
		"database":  dbStatus,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
