// internal/services/recalculation_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/atelier-backend/internal/database"
	"github.com/javajoker/atelier-backend/internal/i18n"
	"github.com/javajoker/atelier-backend/internal/metrics"
	"github.com/javajoker/atelier-backend/internal/models"
	"github.com/javajoker/atelier-backend/internal/workflow"
)

// Recalculator recomputes expected dates for the products a selector names.
type Recalculator interface {
	Recalculate(ctx context.Context, selector RecalculationSelector) (*RecalculationResult, error)
}

// RecalculationSelector names exactly one target.
type RecalculationSelector struct {
	ProductID      *uuid.UUID `json:"product_id,omitempty"`
	CollectionID   *uuid.UUID `json:"collection_id,omitempty"`
	RecalculateAll bool       `json:"recalculate_all,omitempty"`
}

func (s RecalculationSelector) Validate() error {
	n := 0
	if s.ProductID != nil {
		n++
	}
	if s.CollectionID != nil {
		n++
	}
	if s.RecalculateAll {
		n++
	}
	if n != 1 {
		return workflow.ErrInvalidSelector
	}
	return nil
}

// Kind is "product", "collection" or "all".
func (s RecalculationSelector) Kind() string {
	switch {
	case s.ProductID != nil:
		return "product"
	case s.CollectionID != nil:
		return "collection"
	default:
		return "all"
	}
}

type RecalculationFailure struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductCode string    `json:"product_code"`
	Error       string    `json:"error"`
}

// RecalculationResult reports partial progress; failed products do not fail
// the run.
type RecalculationResult struct {
	Selector     string                 `json:"selector"`
	ProductID    *uuid.UUID             `json:"product_id,omitempty"`
	Recalculated int                    `json:"recalculated"`
	Failed       int                    `json:"failed"`
	Failures     []RecalculationFailure `json:"failures"`
	Interrupted  bool                   `json:"interrupted"`
}

// WorkflowDeps are shared by the services that write production stages.
type WorkflowDeps struct {
	DB            *gorm.DB
	Configs       ConfigSource
	Scheduler     workflow.Scheduler
	Clock         Clock
	Locks         *ProductLocks
	Notifications *NotificationService
	Metrics       *metrics.Metrics
}

type RecalculationService struct {
	WorkflowDeps
	bulkTimeout time.Duration
}

func NewRecalculationService(deps WorkflowDeps, bulkTimeout time.Duration) *RecalculationService {
	if bulkTimeout <= 0 {
		bulkTimeout = 2 * time.Minute
	}
	return &RecalculationService{
		WorkflowDeps: deps,
		bulkTimeout:  bulkTimeout,
	}
}

func (s *RecalculationService) Recalculate(ctx context.Context, selector RecalculationSelector) (*RecalculationResult, error) {
	if err := selector.Validate(); err != nil {
		return nil, err
	}

	switch {
	case selector.ProductID != nil:
		if err := s.RecalculateProduct(ctx, *selector.ProductID); err != nil {
			return nil, err
		}
		return &RecalculationResult{
			Selector:     selector.Kind(),
			ProductID:    selector.ProductID,
			Recalculated: 1,
			Failures:     []RecalculationFailure{},
		}, nil
	case selector.CollectionID != nil:
		return s.RecalculateCollection(ctx, *selector.CollectionID)
	default:
		return s.RecalculateAll(ctx)
	}
}

// RecalculateProduct reschedules one product and returns its error as is.
func (s *RecalculationService) RecalculateProduct(ctx context.Context, productID uuid.UUID) error {
	start := time.Now()
	err := s.recalculateProduct(ctx, s.Configs.Snapshot(), s.Clock.Today(), productID)
	if err != nil {
		s.Metrics.RecordRecalculation("product", 0, 1, false, time.Since(start))
		return err
	}
	s.Metrics.RecordRecalculation("product", 1, 0, false, time.Since(start))
	return nil
}

func (s *RecalculationService) RecalculateCollection(ctx context.Context, collectionID uuid.UUID) (*RecalculationResult, error) {
	if ctx.Err() != nil {
		return s.run(ctx, "collection", nil), nil
	}

	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.Collection{}).Where("id = ?", collectionID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to look up collection: %w", err)
	}
	if count == 0 {
		return nil, ErrCollectionNotFound
	}

	targets, err := s.targets(ctx, func(q *gorm.DB) *gorm.DB {
		return q.Where("collection_id = ?", collectionID)
	})
	if err != nil {
		return nil, err
	}
	return s.run(ctx, "collection", targets), nil
}

func (s *RecalculationService) RecalculateAll(ctx context.Context) (*RecalculationResult, error) {
	if ctx.Err() != nil {
		return s.run(ctx, "all", nil), nil
	}

	targets, err := s.targets(ctx, nil)
	if err != nil {
		return nil, err
	}
	return s.run(ctx, "all", targets), nil
}

type recalcTarget struct {
	ID   uuid.UUID
	Code string
}

// targets lists products that have a pipeline, ordered by code.
func (s *RecalculationService) targets(ctx context.Context, scope func(*gorm.DB) *gorm.DB) ([]recalcTarget, error) {
	query := s.DB.WithContext(ctx).Model(&models.Product{}).
		Select("id", "code").
		Where("id IN (?)", s.DB.Model(&models.ProductionStage{}).Select("product_id"))
	if scope != nil {
		query = scope(query)
	}

	var targets []recalcTarget
	if err := query.Order("code ASC").Scan(&targets).Error; err != nil {
		return nil, fmt.Errorf("failed to list products for recalculation: %w", err)
	}
	return targets, nil
}

// run processes targets one product per transaction using a single config
// snapshot. Cancellation is honoured between products only.
func (s *RecalculationService) run(ctx context.Context, kind string, targets []recalcTarget) *RecalculationResult {
	start := time.Now()
	configs := s.Configs.Snapshot()
	today := s.Clock.Today()

	ctx, cancel := context.WithTimeout(ctx, s.bulkTimeout)
	defer cancel()

	// A run cancelled before it starts reports zero progress
	result := &RecalculationResult{Selector: kind, Failures: []RecalculationFailure{}, Interrupted: ctx.Err() != nil}
	for _, t := range targets {
		if ctx.Err() != nil {
			result.Interrupted = true
			break
		}

		if err := s.recalculateProduct(context.WithoutCancel(ctx), configs, today, t.ID); err != nil {
			result.Failed++
			result.Failures = append(result.Failures, RecalculationFailure{
				ProductID:   t.ID,
				ProductCode: t.Code,
				Error:       err.Error(),
			})
			logrus.WithError(err).WithFields(logrus.Fields{
				"product_id": t.ID,
				"code":       t.Code,
			}).Warn("Product schedule recalculation failed")
			continue
		}
		result.Recalculated++
	}

	duration := time.Since(start)
	s.Metrics.RecordRecalculation(kind, result.Recalculated, result.Failed, result.Interrupted, duration)
	logrus.WithFields(logrus.Fields{
		"selector":     kind,
		"targets":      len(targets),
		"recalculated": result.Recalculated,
		"failed":       result.Failed,
		"interrupted":  result.Interrupted,
		"duration_ms":  duration.Milliseconds(),
	}).Info("Schedule recalculation finished")

	if err := s.Notifications.Record(nil, NotificationRequest{
		Type:        models.NotificationRecalculated,
		TitleKey:    i18n.KeyNotificationRecalcTitle,
		MessageKey:  i18n.KeyNotificationRecalcMessage,
		MessageArgs: []interface{}{result.Recalculated, result.Failed},
		Data: map[string]interface{}{
			"selector":    kind,
			"interrupted": result.Interrupted,
		},
	}); err != nil {
		logrus.WithError(err).Warn("Failed to record recalculation notification")
	}
	return result
}

func (s *RecalculationService) recalculateProduct(ctx context.Context, configs workflow.ConfigSet, today time.Time, productID uuid.UUID) error {
	unlock := s.Locks.Lock(productID)
	defer unlock()

	return database.WithTransaction(ctx, s.DB, func(tx *gorm.DB) error {
		product, stages, err := loadProductStages(tx, productID)
		if err != nil {
			return err
		}

		planned, err := s.Scheduler.Plan(stages, configs, product.Priority, today)
		if err != nil {
			return err
		}

		changed := 0
		previous := make(map[uuid.UUID]*time.Time, len(stages))
		for _, st := range stages {
			previous[st.ID] = st.ExpectedDate
		}
		for _, st := range planned {
			if sameDate(previous[st.ID], st.ExpectedDate) {
				continue
			}
			if err := tx.Model(&models.ProductionStage{}).
				Where("id = ?", st.ID).
				Update("expected_date", st.ExpectedDate).Error; err != nil {
				return fmt.Errorf("failed to update expected date: %w", err)
			}
			changed++
		}

		if changed == 0 {
			return nil
		}
		return bumpStageVersion(tx, product)
	})
}

func sameDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return workflow.Day(*a).Equal(workflow.Day(*b))
}

// loadProductStages reads a product and its stages ordered by stage_order.
func loadProductStages(tx *gorm.DB, productID uuid.UUID) (*models.Product, []models.ProductionStage, error) {
	var product models.Product
	if err := tx.First(&product, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrProductNotFound
		}
		return nil, nil, fmt.Errorf("failed to load product: %w", err)
	}

	var stages []models.ProductionStage
	if err := tx.Where("product_id = ?", productID).Order("stage_order ASC").Find(&stages).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to load stages: %w", err)
	}
	return &product, stages, nil
}

// bumpStageVersion advances products.stage_version from the value read in this
// transaction. Zero rows updated means another writer got there first.
func bumpStageVersion(tx *gorm.DB, product *models.Product) error {
	result := tx.Model(&models.Product{}).
		Where("id = ? AND stage_version = ?", product.ID, product.StageVersion).
		UpdateColumn("stage_version", product.StageVersion+1)
	if result.Error != nil {
		return fmt.Errorf("failed to bump stage version: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return workflow.ErrConcurrentModification
	}
	product.StageVersion++
	return nil
}
