// internal/handlers/lifecycle.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/atelier-backend/internal/i18n"
	"github.com/javajoker/atelier-backend/internal/services"
	"github.com/javajoker/atelier-backend/internal/utils"
)

type LifecycleHandler struct {
	lifecycleService *services.LifecycleService
}

func NewLifecycleHandler(lifecycleService *services.LifecycleService) *LifecycleHandler {
	return &LifecycleHandler{lifecycleService: lifecycleService}
}

// POST /products/:id/pipeline
func (h *LifecycleHandler) InitializePipeline(c *gin.Context) {
	productID, ok := parseUUIDParam(c, "id", "product")
	if !ok {
		return
	}

	result, err := h.lifecycleService.InitializePipeline(c.Request.Context(), productID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":  i18n.T(utils.GetLangFromContext(c), i18n.KeyPipelineCreated),
		"pipeline": result,
	})
}

// GET /products/:id/stages
func (h *LifecycleHandler) GetStages(c *gin.Context) {
	productID, ok := parseUUIDParam(c, "id", "product")
	if !ok {
		return
	}

	stages, err := h.lifecycleService.ListStages(c.Request.Context(), productID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"stages": stages,
	})
}

// POST /products/:id/advance
func (h *LifecycleHandler) AdvanceStage(c *gin.Context) {
	productID, ok := parseUUIDParam(c, "id", "product")
	if !ok {
		return
	}

	result, err := h.lifecycleService.Advance(c.Request.Context(), productID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":  i18n.T(utils.GetLangFromContext(c), i18n.KeyStageAdvanced),
		"pipeline": result,
	})
}

// POST /products/:id/move
func (h *LifecycleHandler) MoveToStage(c *gin.Context) {
	productID, ok := parseUUIDParam(c, "id", "product")
	if !ok {
		return
	}

	var req services.MoveStageRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.lifecycleService.MoveToStage(c.Request.Context(), productID, req.StageName)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":  i18n.T(utils.GetLangFromContext(c), i18n.KeyStageMoved, req.StageName),
		"pipeline": result,
	})
}

// PUT /stages/:id/status
func (h *LifecycleHandler) UpdateStageStatus(c *gin.Context) {
	stageID, ok := parseUUIDParam(c, "id", "stage")
	if !ok {
		return
	}

	var req services.UpdateStageStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	stage, err := h.lifecycleService.UpdateStatus(c.Request.Context(), stageID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyStageStatusUpdated),
		"stage":   stage,
	})
}
