// internal/handlers/stage_config.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/atelier-backend/internal/i18n"
	"github.com/javajoker/atelier-backend/internal/services"
	"github.com/javajoker/atelier-backend/internal/utils"
)

type StageConfigHandler struct {
	configService *services.StageConfigService
}

func NewStageConfigHandler(configService *services.StageConfigService) *StageConfigHandler {
	return &StageConfigHandler{configService: configService}
}

// GET /stage-configs
func (h *StageConfigHandler) ListStageConfigs(c *gin.Context) {
	utils.SuccessResponse(c, gin.H{
		"stage_configs": h.configService.List(),
	})
}

// GET /stage-configs/:stage_name
func (h *StageConfigHandler) GetStageConfig(c *gin.Context) {
	cfg, err := h.configService.Get(c.Param("stage_name"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, cfg)
}

// PUT /stage-configs/:stage_name
func (h *StageConfigHandler) UpdateStageConfig(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.UpdateStageConfigRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.configService.Update(c.Request.Context(), c.Param("stage_name"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	message := i18n.T(lang, i18n.KeyStageConfigUpdated)
	if result.RecalculationError != "" {
		message = i18n.T(lang, i18n.KeyScheduleRecalcDegraded)
	}
	utils.SuccessResponse(c, gin.H{
		"message":             message,
		"stage_config":        result.Config,
		"recalculation":       result.Recalculation,
		"recalculation_error": result.RecalculationError,
	})
}
