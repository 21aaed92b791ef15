// internal/services/stage_config_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/atelier-backend/internal/database"
	"github.com/javajoker/atelier-backend/internal/i18n"
	"github.com/javajoker/atelier-backend/internal/metrics"
	"github.com/javajoker/atelier-backend/internal/models"
	"github.com/javajoker/atelier-backend/internal/utils"
	"github.com/javajoker/atelier-backend/internal/workflow"
)

// ConfigSource hands out a consistent view of stage configuration.
type ConfigSource interface {
	Snapshot() workflow.ConfigSet
}

// StageConfigService is the stage configuration store. Reads come from an
// immutable ConfigSet that is replaced only after a write commits.
type StageConfigService struct {
	db              *gorm.DB
	notifications   *NotificationService
	metrics         *metrics.Metrics
	recalculator    Recalculator
	triggerOnChange bool

	mu      sync.RWMutex
	configs workflow.ConfigSet

	// serializes writers so the swap order matches the commit order
	writeMu sync.Mutex
}

type UpdateStageConfigRequest struct {
	DurationDays       int     `json:"duration_days" validate:"required,min=1,max=30"`
	PriorityMultiplier float64 `json:"priority_multiplier" validate:"required,gte=0.1,lte=5"`
}

type StageConfigUpdateResult struct {
	Config             models.StageConfig   `json:"config"`
	Recalculation      *RecalculationResult `json:"recalculation,omitempty"`
	RecalculationError string               `json:"recalculation_error,omitempty"`
}

func NewStageConfigService(db *gorm.DB, notifications *NotificationService, m *metrics.Metrics) *StageConfigService {
	return &StageConfigService{
		db:            db,
		notifications: notifications,
		metrics:       m,
		configs:       workflow.NewConfigSet(nil),
	}
}

// SetRecalculator installs the schedule recalculation run after every update.
// A nil recalculator or trigger=false disables it.
func (s *StageConfigService) SetRecalculator(r Recalculator, trigger bool) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.recalculator = r
	s.triggerOnChange = trigger
}

// Load replaces the in-memory view with the stored rows.
func (s *StageConfigService) Load(ctx context.Context) error {
	var rows []models.StageConfig
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return fmt.Errorf("failed to load stage configs: %w", err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	s.configs = workflow.NewConfigSet(rows)
	s.mu.Unlock()

	if missing := s.MissingStages(); len(missing) > 0 {
		logrus.WithField("stages", missing).Warn("Stage configuration incomplete, scheduling will fail for these stages")
	}
	return nil
}

func (s *StageConfigService) Snapshot() workflow.ConfigSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.configs
}

func (s *StageConfigService) List() []models.StageConfig {
	return s.Snapshot().List()
}

func (s *StageConfigService) Get(stageName string) (models.StageConfig, error) {
	if !workflow.IsKnownStage(stageName) {
		return models.StageConfig{}, &workflow.UnknownStageError{StageName: stageName}
	}
	cfg, ok := s.Snapshot().Get(stageName)
	if !ok {
		return models.StageConfig{}, &workflow.ConfigurationMissingError{StageName: stageName}
	}
	return cfg, nil
}

// Update persists new values for stageName, publishes them to readers and then
// triggers a full schedule recalculation. A failed recalculation is reported in
// the result; the configuration write stands.
func (s *StageConfigService) Update(ctx context.Context, stageName string, req *UpdateStageConfigRequest) (*StageConfigUpdateResult, error) {
	if !workflow.IsKnownStage(stageName) {
		return nil, &workflow.UnknownStageError{StageName: stageName}
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var saved models.StageConfig
	err := database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		err := tx.Where("stage_name = ?", stageName).First(&saved).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to load stage config: %w", err)
		}
		if err != nil {
			saved = models.StageConfig{StageName: stageName}
		}

		saved.DurationDays = req.DurationDays
		saved.PriorityMultiplier = req.PriorityMultiplier
		if err := tx.Save(&saved).Error; err != nil {
			return fmt.Errorf("failed to save stage config: %w", err)
		}

		return s.notifications.Record(tx, NotificationRequest{
			Type:        models.NotificationConfigUpdated,
			TitleKey:    i18n.KeyNotificationConfigTitle,
			MessageKey:  i18n.KeyNotificationConfigMessage,
			MessageArgs: []interface{}{stageName, saved.DurationDays, saved.PriorityMultiplier},
			StageName:   stageName,
			Data: map[string]interface{}{
				"duration_days":       saved.DurationDays,
				"priority_multiplier": saved.PriorityMultiplier,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.configs = s.configs.With(saved)
	s.mu.Unlock()

	s.metrics.RecordStageConfigUpdate(stageName)
	logrus.WithFields(logrus.Fields{
		"stage":               stageName,
		"duration_days":       saved.DurationDays,
		"priority_multiplier": saved.PriorityMultiplier,
	}).Info("Stage configuration updated")

	result := &StageConfigUpdateResult{Config: saved}
	if s.triggerOnChange && s.recalculator != nil {
		rec, err := s.recalculator.Recalculate(context.WithoutCancel(ctx), RecalculationSelector{RecalculateAll: true})
		if err != nil {
			logrus.WithError(err).WithField("stage", stageName).Warn("Schedule recalculation after config update failed")
			result.RecalculationError = err.Error()
		} else {
			result.Recalculation = rec
		}
	}
	return result, nil
}

// MissingStages lists pipeline stages that have no configuration row.
func (s *StageConfigService) MissingStages() []string {
	configs := s.Snapshot()
	var missing []string
	for _, name := range workflow.Pipeline() {
		if _, ok := configs.Get(name); !ok {
			missing = append(missing, name)
		}
	}
	return missing
}
