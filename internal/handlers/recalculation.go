// internal/handlers/recalculation.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/atelier-backend/internal/i18n"
	"github.com/javajoker/atelier-backend/internal/services"
	"github.com/javajoker/atelier-backend/internal/utils"
)

type RecalculationHandler struct {
	recalculator services.Recalculator
}

func NewRecalculationHandler(recalculator services.Recalculator) *RecalculationHandler {
	return &RecalculationHandler{recalculator: recalculator}
}

// POST /schedule/recalculate
func (h *RecalculationHandler) Recalculate(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var selector services.RecalculationSelector
	if err := c.ShouldBindJSON(&selector); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	result, err := h.recalculator.Recalculate(c.Request.Context(), selector)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, result)
}
