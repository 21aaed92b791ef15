package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/javajoker/atelier-backend/internal/database/dbtest"
	"github.com/javajoker/atelier-backend/internal/i18n"
	"github.com/javajoker/atelier-backend/internal/metrics"
	"github.com/javajoker/atelier-backend/internal/models"
	"github.com/javajoker/atelier-backend/internal/workflow"
)

// Monday 2024-03-11, mid-afternoon.
var fixedNow = time.Date(2024, 3, 11, 15, 0, 0, 0, time.UTC)

type fixture struct {
	db            *gorm.DB
	clock         Clock
	metrics       *metrics.Metrics
	notifications *NotificationService
	configs       *StageConfigService
	lifecycle     *LifecycleService
	recalc        *RecalculationService
	snapshots     *SnapshotService
	dashboard     *DashboardService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := dbtest.New(t)
	f := &fixture{
		db:      db,
		clock:   Clock{Now: func() time.Time { return fixedNow }, Location: time.UTC},
		metrics: metrics.New(),
	}
	f.notifications = NewNotificationService(db, i18n.LangEnglish)
	f.configs = NewStageConfigService(db, f.notifications, f.metrics)
	require.NoError(t, f.configs.Load(context.Background()))

	deps := WorkflowDeps{
		DB:            db,
		Configs:       f.configs,
		Scheduler:     workflow.Scheduler{Counting: workflow.CalendarDays},
		Clock:         f.clock,
		Locks:         NewProductLocks(),
		Notifications: f.notifications,
		Metrics:       f.metrics,
	}
	f.lifecycle = NewLifecycleService(deps)
	f.recalc = NewRecalculationService(deps, time.Minute)
	f.snapshots = NewSnapshotService(db, nil, f.clock)
	f.dashboard = NewDashboardService(f.snapshots)
	return f
}

func (f *fixture) product(t *testing.T, code string, priority models.Priority) models.Product {
	t.Helper()

	p := models.Product{
		Name:     "Produto " + code,
		Code:     code,
		Priority: priority,
		Status:   models.ProductStatusActive,
	}
	require.NoError(t, f.db.Create(&p).Error)
	return p
}

// productWithPipeline creates a product and its six scheduled stages.
func (f *fixture) productWithPipeline(t *testing.T, code string, priority models.Priority) models.Product {
	t.Helper()

	p := f.product(t, code, priority)
	_, err := f.lifecycle.InitializePipeline(context.Background(), p.ID)
	require.NoError(t, err)
	return p
}

func (f *fixture) stages(t *testing.T, p models.Product) []models.ProductionStage {
	t.Helper()

	stages, err := f.lifecycle.ListStages(context.Background(), p.ID)
	require.NoError(t, err)
	return stages
}

func (f *fixture) stageVersion(t *testing.T, p models.Product) int64 {
	t.Helper()

	var reloaded models.Product
	require.NoError(t, f.db.First(&reloaded, "id = ?", p.ID).Error)
	return reloaded.StageVersion
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func requireDate(t *testing.T, want time.Time, got *time.Time) {
	t.Helper()

	require.NotNil(t, got)
	require.True(t, want.Equal(workflow.Day(*got)), "want %s, got %s", want.Format("2006-01-02"), got.Format("2006-01-02"))
}

// activeCount counts stages in progress; a pipeline has at most one.
func activeCount(stages []models.ProductionStage) int {
	n := 0
	for _, st := range stages {
		if st.Status == models.StageStatusInProgress {
			n++
		}
	}
	return n
}
