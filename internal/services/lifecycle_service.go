// internal/services/lifecycle_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/atelier-backend/internal/database"
	"github.com/javajoker/atelier-backend/internal/i18n"
	"github.com/javajoker/atelier-backend/internal/models"
	"github.com/javajoker/atelier-backend/internal/utils"
	"github.com/javajoker/atelier-backend/internal/workflow"
)

// LifecycleService applies stage transitions. Every mutation runs in one
// transaction under the product's lock and bumps products.stage_version.
type LifecycleService struct {
	WorkflowDeps
}

type MoveStageRequest struct {
	StageName string `json:"stage_name" validate:"required,stage_name"`
}

type UpdateStageStatusRequest struct {
	Status           string  `json:"status" validate:"required,stage_status"`
	ActualDate       *string `json:"actual_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	ResponsibleParty *string `json:"responsible_party,omitempty" validate:"omitempty,max=255"`
	Notes            *string `json:"notes,omitempty"`
}

// TransitionResult is the product's pipeline after a committed transition.
type TransitionResult struct {
	ProductID    uuid.UUID                `json:"product_id"`
	CurrentStage *models.ProductionStage  `json:"current_stage"`
	Stages       []models.ProductionStage `json:"stages"`
}

func NewLifecycleService(deps WorkflowDeps) *LifecycleService {
	return &LifecycleService{WorkflowDeps: deps}
}

// InitializePipeline creates the six stages for a product, stage 1 in
// progress, and schedules them from today.
func (s *LifecycleService) InitializePipeline(ctx context.Context, productID uuid.UUID) (*TransitionResult, error) {
	unlock := s.Locks.Lock(productID)
	defer unlock()

	today := s.Clock.Today()
	var result *TransitionResult
	err := database.WithTransaction(ctx, s.DB, func(tx *gorm.DB) error {
		product, existing, err := loadProductStages(tx, productID)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return workflow.ErrPipelineExists
		}

		stages, err := s.Scheduler.Plan(workflow.NewPipeline(product.ID), s.Configs.Snapshot(), product.Priority, today)
		if err != nil {
			return err
		}
		if err := tx.Create(&stages).Error; err != nil {
			return fmt.Errorf("failed to create stages: %w", err)
		}
		if err := bumpStageVersion(tx, product); err != nil {
			return err
		}

		result = newTransitionResult(product.ID, stages)
		return s.Notifications.Record(tx, NotificationRequest{
			Type:        models.NotificationPipelineCreated,
			TitleKey:    i18n.KeyNotificationPipelineTitle,
			MessageKey:  i18n.KeyNotificationPipelineMessage,
			MessageArgs: []interface{}{product.Name, product.Code},
			ProductID:   &product.ID,
			StageName:   result.CurrentStage.StageName,
		})
	})
	if err != nil {
		s.recordFailure("initialize", productID, err)
		return nil, err
	}

	s.recordSuccess("initialize", productID, result)
	return result, nil
}

func (s *LifecycleService) ListStages(ctx context.Context, productID uuid.UUID) ([]models.ProductionStage, error) {
	_, stages, err := loadProductStages(s.DB.WithContext(ctx), productID)
	if err != nil {
		return nil, err
	}
	return stages, nil
}

// Advance completes the current stage and starts the next one. At the final
// stage it returns workflow.ErrNoNextStage and writes nothing. Downstream
// expected dates are left as scheduled.
func (s *LifecycleService) Advance(ctx context.Context, productID uuid.UUID) (*TransitionResult, error) {
	return s.transition(ctx, "advance", productID, workflow.PlanAdvance, i18n.KeyNotificationAdvancedTitle, models.NotificationStageAdvanced)
}

// MoveToStage makes stageName the single active stage regardless of order.
func (s *LifecycleService) MoveToStage(ctx context.Context, productID uuid.UUID, stageName string) (*TransitionResult, error) {
	if !workflow.IsKnownStage(stageName) {
		return nil, &workflow.UnknownStageError{StageName: stageName}
	}
	plan := func(stages []models.ProductionStage, today time.Time) ([]workflow.StageChange, error) {
		return workflow.PlanMove(stages, stageName, today)
	}
	return s.transition(ctx, "move", productID, plan, i18n.KeyNotificationMovedTitle, models.NotificationStageMoved)
}

type planFunc func(stages []models.ProductionStage, today time.Time) ([]workflow.StageChange, error)

func (s *LifecycleService) transition(ctx context.Context, op string, productID uuid.UUID, plan planFunc, titleKey string, kind models.NotificationType) (*TransitionResult, error) {
	unlock := s.Locks.Lock(productID)
	defer unlock()

	today := s.Clock.Today()
	var result *TransitionResult
	err := database.WithTransaction(ctx, s.DB, func(tx *gorm.DB) error {
		product, stages, err := loadProductStages(tx, productID)
		if err != nil {
			return err
		}
		if len(stages) == 0 {
			return workflow.ErrNoStages
		}

		changes, err := plan(stages, today)
		if err != nil {
			return err
		}
		if err := applyStageChanges(tx, changes); err != nil {
			return err
		}
		if err := bumpStageVersion(tx, product); err != nil {
			return err
		}

		result = newTransitionResult(product.ID, workflow.Apply(stages, changes))
		return s.Notifications.Record(tx, NotificationRequest{
			Type:        kind,
			TitleKey:    titleKey,
			MessageKey:  i18n.KeyNotificationStageMessage,
			MessageArgs: []interface{}{product.Name, product.Code, result.CurrentStage.StageName},
			ProductID:   &product.ID,
			StageName:   result.CurrentStage.StageName,
			Data:        changeData(changes),
		})
	})
	if err != nil {
		s.recordFailure(op, productID, err)
		return nil, err
	}

	s.recordSuccess(op, productID, result)
	return result, nil
}

// UpdateStatus writes the given status and optional fields on one stage with
// no ordering rules. It is the only path that stores atrasada.
func (s *LifecycleService) UpdateStatus(ctx context.Context, stageID uuid.UUID, req *UpdateStageStatusRequest) (*models.ProductionStage, error) {
	if !models.StageStatus(req.Status).IsValid() {
		return nil, workflow.ErrInvalidStatus
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	updates := map[string]interface{}{"status": req.Status}
	if req.ActualDate != nil {
		actual, err := time.Parse("2006-01-02", *req.ActualDate)
		if err != nil {
			return nil, fmt.Errorf("invalid actual_date: %w", err)
		}
		updates["actual_date"] = workflow.Day(actual)
	}
	if req.ResponsibleParty != nil {
		if name := strings.TrimSpace(*req.ResponsibleParty); name != "" {
			updates["responsible_party"] = name
		} else {
			updates["responsible_party"] = nil
		}
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}

	var stage models.ProductionStage
	if err := s.DB.WithContext(ctx).First(&stage, "id = ?", stageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, workflow.ErrStageNotFound
		}
		return nil, fmt.Errorf("failed to load stage: %w", err)
	}

	unlock := s.Locks.Lock(stage.ProductID)
	defer unlock()

	err := database.WithTransaction(ctx, s.DB, func(tx *gorm.DB) error {
		product, stages, err := loadProductStages(tx, stage.ProductID)
		if err != nil {
			return err
		}

		// The status read before locking may be stale
		previous := stage.Status
		for _, st := range stages {
			if st.ID == stage.ID {
				previous = st.Status
				break
			}
		}
		if err := tx.Model(&models.ProductionStage{}).Where("id = ?", stage.ID).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update stage: %w", err)
		}
		if err := tx.First(&stage, "id = ?", stage.ID).Error; err != nil {
			return fmt.Errorf("failed to reload stage: %w", err)
		}
		if err := bumpStageVersion(tx, product); err != nil {
			return err
		}

		return s.Notifications.Record(tx, NotificationRequest{
			Type:        models.NotificationStageUpdated,
			TitleKey:    i18n.KeyNotificationUpdatedTitle,
			MessageKey:  i18n.KeyNotificationStatusMessage,
			MessageArgs: []interface{}{product.Name, product.Code, stage.StageName, stage.Status},
			ProductID:   &product.ID,
			StageName:   stage.StageName,
			Data: map[string]interface{}{
				"from": previous,
				"to":   stage.Status,
			},
		})
	})
	if err != nil {
		s.recordFailure("update_status", stage.ProductID, err)
		return nil, err
	}

	s.Metrics.RecordStageTransition("update_status", stage.StageName)
	logrus.WithFields(logrus.Fields{
		"product_id": stage.ProductID,
		"stage":      stage.StageName,
		"status":     stage.Status,
	}).Info("Production stage status updated")
	return &stage, nil
}

func applyStageChanges(tx *gorm.DB, changes []workflow.StageChange) error {
	for _, ch := range changes {
		updates := map[string]interface{}{"status": string(ch.To)}
		if ch.ClearActual {
			updates["actual_date"] = nil
		}
		if ch.ActualDate != nil {
			updates["actual_date"] = *ch.ActualDate
		}
		if err := tx.Model(&models.ProductionStage{}).Where("id = ?", ch.StageID).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update stage %s: %w", ch.StageName, err)
		}
	}
	return nil
}

func newTransitionResult(productID uuid.UUID, stages []models.ProductionStage) *TransitionResult {
	sorted := workflow.SortStages(stages)
	return &TransitionResult{
		ProductID:    productID,
		CurrentStage: workflow.CurrentStage(sorted),
		Stages:       sorted,
	}
}

func changeData(changes []workflow.StageChange) map[string]interface{} {
	rows := make([]map[string]interface{}, 0, len(changes))
	for _, ch := range changes {
		rows = append(rows, map[string]interface{}{
			"stage": ch.StageName,
			"from":  ch.From,
			"to":    ch.To,
		})
	}
	return map[string]interface{}{"changes": rows}
}

func (s *LifecycleService) recordSuccess(op string, productID uuid.UUID, result *TransitionResult) {
	s.Metrics.RecordStageTransition(op, result.CurrentStage.StageName)
	logrus.WithFields(logrus.Fields{
		"operation":  op,
		"product_id": productID,
		"stage":      result.CurrentStage.StageName,
		"status":     result.CurrentStage.Status,
	}).Info("Production stage transition applied")
}

func (s *LifecycleService) recordFailure(op string, productID uuid.UUID, err error) {
	s.Metrics.RecordStageMutationError(op, failureReason(err))
	entry := logrus.WithError(err).WithFields(logrus.Fields{
		"operation":  op,
		"product_id": productID,
	})
	if errors.Is(err, workflow.ErrNoNextStage) {
		entry.Info("Production stage transition rejected")
		return
	}
	entry.Warn("Production stage transition failed")
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, workflow.ErrNoNextStage):
		return "no_next_stage"
	case errors.Is(err, workflow.ErrConcurrentModification):
		return "conflict"
	case errors.Is(err, workflow.ErrConfigurationMissing):
		return "configuration_missing"
	case errors.Is(err, ErrProductNotFound), errors.Is(err, workflow.ErrStageNotFound):
		return "not_found"
	case errors.Is(err, workflow.ErrNoStages), errors.Is(err, workflow.ErrPipelineExists):
		return "pipeline_state"
	default:
		return "internal"
	}
}
