// internal/utils/validator.go
package utils

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/javajoker/atelier-backend/internal/models"
	"github.com/javajoker/atelier-backend/internal/workflow"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterValidation("stage_name", validateStageName)
	validate.RegisterValidation("stage_status", validateStageStatus)
	validate.RegisterValidation("priority", validatePriority)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func validateStageName(fl validator.FieldLevel) bool {
	return workflow.IsKnownStage(fl.Field().String())
}

func validateStageStatus(fl validator.FieldLevel) bool {
	return models.StageStatus(fl.Field().String()).IsValid()
}

func validatePriority(fl validator.FieldLevel) bool {
	switch models.Priority(fl.Field().String()) {
	case models.PriorityLow, models.PriorityMedium, models.PriorityHigh, models.PriorityUrgent:
		return true
	}
	return false
}

// Validation tags for common fields
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

func GetValidationErrors(err error) []ValidationError {
	var validationErrors []ValidationError

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		for _, e := range validationErrs {
			validationErrors = append(validationErrors, ValidationError{
				Field:   strings.ToLower(e.Field()),
				Tag:     e.Tag(),
				Message: getValidationMessage(e),
			})
		}
	}

	return validationErrors
}

func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "min", "gte":
		return e.Field() + " must be at least " + e.Param()
	case "max", "lte":
		return e.Field() + " must be at most " + e.Param()
	case "stage_name":
		return e.Field() + " must be one of: " + strings.Join(workflow.Pipeline(), ", ")
	case "stage_status":
		return e.Field() + " must be one of: pendente, em_andamento, concluida, atrasada"
	case "priority":
		return e.Field() + " must be one of: baixa, media, alta, urgente"
	default:
		return e.Field() + " is invalid"
	}
}
