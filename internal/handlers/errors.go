// internal/handlers/errors.go
package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/atelier-backend/internal/i18n"
	"github.com/javajoker/atelier-backend/internal/services"
	"github.com/javajoker/atelier-backend/internal/utils"
	"github.com/javajoker/atelier-backend/internal/workflow"
)

// respondError maps service and workflow errors onto the response envelope.
func respondError(c *gin.Context, err error) {
	lang := utils.GetLangFromContext(c)

	var missing *workflow.ConfigurationMissingError
	var unknown *workflow.UnknownStageError
	switch {
	case errors.Is(err, workflow.ErrInvalidSelector):
		utils.ErrorResponse(c, http.StatusBadRequest, "INVALID_SELECTOR", i18n.T(lang, i18n.KeyScheduleInvalidTarget), nil)
	case errors.As(err, &unknown):
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyStageUnknown, unknown.StageName), nil)
	case errors.Is(err, workflow.ErrUnknownStage):
		utils.BadRequestResponse(c, err.Error(), nil)
	case errors.Is(err, workflow.ErrInvalidStatus):
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "status"), nil)

	case errors.Is(err, services.ErrProductNotFound):
		utils.NotFoundResponse(c, "product")
	case errors.Is(err, workflow.ErrStageNotFound):
		utils.NotFoundResponse(c, "stage")
	case errors.Is(err, services.ErrCollectionNotFound):
		utils.NotFoundResponse(c, "collection")
	case errors.Is(err, services.ErrNotificationNotFound):
		utils.NotFoundResponse(c, "notification")

	case errors.Is(err, workflow.ErrNoNextStage):
		utils.ConflictResponse(c, "NO_NEXT_STAGE", i18n.T(lang, i18n.KeyStageNoNext))
	case errors.Is(err, workflow.ErrConcurrentModification):
		utils.ConflictResponse(c, "CONFLICT", i18n.T(lang, i18n.KeyStageConcurrent))
	case errors.Is(err, workflow.ErrPipelineExists):
		utils.ConflictResponse(c, "PIPELINE_EXISTS", i18n.T(lang, i18n.KeyPipelineExists))

	case errors.As(err, &missing):
		utils.UnprocessableResponse(c, "CONFIGURATION_MISSING",
			i18n.T(lang, i18n.KeyConfigurationMissing, missing.StageName),
			gin.H{"stage_name": missing.StageName})
	case errors.Is(err, workflow.ErrConfigurationMissing):
		utils.UnprocessableResponse(c, "CONFIGURATION_MISSING", err.Error(), nil)
	case errors.Is(err, workflow.ErrNoStages):
		utils.UnprocessableResponse(c, "NO_STAGES", i18n.T(lang, i18n.KeyPipelineMissing), nil)

	default:
		logrus.WithError(err).WithField("path", c.FullPath()).Error("Request failed")
		utils.InternalErrorResponse(c, err.Error())
	}
}

// parseUUIDParam reads a path UUID, answering 400 when it is malformed.
func parseUUIDParam(c *gin.Context, name, resource string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		lang := utils.GetLangFromContext(c)
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalidID, resource), nil)
		return uuid.Nil, false
	}
	return id, true
}

// parseUUIDQuery reads an optional UUID filter.
func parseUUIDQuery(c *gin.Context, name string) (*uuid.UUID, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", name, err)
	}
	return &id, nil
}

// bindJSON decodes and validates the body, writing the 400 itself on failure.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		lang := utils.GetLangFromContext(c)
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return false
	}
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return false
	}
	return true
}
