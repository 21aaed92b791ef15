// internal/handlers/health.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/javajoker/atelier-backend/internal/services"
)

const version = "1.0.0"

type HealthHandler struct {
	db      *gorm.DB
	configs *services.StageConfigService
}

func NewHealthHandler(db *gorm.DB, configs *services.StageConfigService) *HealthHandler {
	return &HealthHandler{db: db, configs: configs}
}

// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	status := http.StatusOK
	body := gin.H{
		"status":   "healthy",
		"version":  version,
		"database": "up",
	}

	if sqlDB, err := h.db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
		status = http.StatusServiceUnavailable
		body["status"] = "unhealthy"
		body["database"] = "down"
	}

	if missing := h.configs.MissingStages(); len(missing) > 0 {
		body["missing_stage_configs"] = missing
	}

	c.JSON(status, body)
}
