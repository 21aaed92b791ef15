package workflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/atelier-backend/internal/models"
)

func defaultConfigs() ConfigSet {
	return NewConfigSet([]models.StageConfig{
		{StageName: StageBriefing, DurationDays: 2, PriorityMultiplier: 0.5},
		{StageName: StageTechnicalModeling, DurationDays: 5, PriorityMultiplier: 1.0},
		{StageName: StagePrototyping, DurationDays: 7, PriorityMultiplier: 0.7},
		{StageName: StageApprovalSubmission, DurationDays: 3, PriorityMultiplier: 1.0},
		{StageName: StageApproved, DurationDays: 2, PriorityMultiplier: 1.0},
		{StageName: StageDelivered, DurationDays: 4, PriorityMultiplier: 0.5},
	})
}

func TestExpectedDate_FromPreviousActualDate(t *testing.T) {
	s := Scheduler{Counting: CalendarDays}
	got, err := s.ExpectedDate(defaultConfigs(), StageTechnicalModeling, date(2024, 1, 10), models.PriorityMedium)
	require.NoError(t, err)
	assert.Equal(t, date(2024, 1, 15), got)
}

func TestExpectedDate_MissingConfiguration(t *testing.T) {
	s := Scheduler{Counting: CalendarDays}
	_, err := s.ExpectedDate(NewConfigSet(nil), StagePrototyping, date(2024, 1, 10), models.PriorityMedium)
	require.ErrorIs(t, err, ErrConfigurationMissing)

	var missing *ConfigurationMissingError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, StagePrototyping, missing.StageName)
}

func TestOffsetDays(t *testing.T) {
	cfg := models.StageConfig{StageName: StagePrototyping, DurationDays: 7, PriorityMultiplier: 0.7}
	tests := []struct {
		priority models.Priority
		want     int
	}{
		{models.PriorityLow, 7},
		{models.PriorityMedium, 7},
		{models.PriorityHigh, 5},
		{models.PriorityUrgent, 5},
	}
	for _, tt := range tests {
		t.Run(string(tt.priority), func(t *testing.T) {
			assert.Equal(t, tt.want, OffsetDays(cfg, tt.priority))
		})
	}

	slow := models.StageConfig{DurationDays: 3, PriorityMultiplier: 1.5}
	assert.Equal(t, 5, OffsetDays(slow, models.PriorityUrgent), "4.5 rounds half away from zero")
}

func TestBusinessDays_SkipWeekends(t *testing.T) {
	// 2024-01-10 is a Wednesday.
	assert.Equal(t, date(2024, 1, 17), BusinessDays.AddDays(date(2024, 1, 10), 5))
	assert.Equal(t, date(2024, 1, 15), CalendarDays.AddDays(date(2024, 1, 10), 5))
	// Friday plus one business day lands on Monday.
	assert.Equal(t, date(2024, 1, 15), BusinessDays.AddDays(date(2024, 1, 12), 1))
	assert.Equal(t, date(2024, 1, 13), BusinessDays.AddDays(date(2024, 1, 13), 0))
}

func TestParseDayCounting(t *testing.T) {
	got, err := ParseDayCounting("")
	require.NoError(t, err)
	assert.Equal(t, CalendarDays, got)

	got, err = ParseDayCounting("business")
	require.NoError(t, err)
	assert.Equal(t, BusinessDays, got)

	_, err = ParseDayCounting("lunar")
	assert.Error(t, err)
}

func TestPlan_ChainsFromActualThenExpected(t *testing.T) {
	p := newProduct("P-1", models.PriorityMedium)
	stages := stagesWith(p.ID, models.StageStatusCompleted, models.StageStatusInProgress)
	stages[0].ActualDate = datePtr(2024, 1, 10)
	stages[0].ExpectedDate = datePtr(2024, 1, 9)

	s := Scheduler{Counting: CalendarDays}
	planned, err := s.Plan(stages, defaultConfigs(), p.Priority, date(2024, 1, 12))
	require.NoError(t, err)
	require.Len(t, planned, 6)

	assert.Equal(t, date(2024, 1, 9), *planned[0].ExpectedDate, "completed stage keeps its date")
	assert.Equal(t, date(2024, 1, 15), *planned[1].ExpectedDate)
	assert.Equal(t, date(2024, 1, 22), *planned[2].ExpectedDate)
	assert.Equal(t, date(2024, 1, 25), *planned[3].ExpectedDate)
	assert.Equal(t, date(2024, 1, 27), *planned[4].ExpectedDate)
	assert.Equal(t, date(2024, 1, 31), *planned[5].ExpectedDate)
}

func TestPlan_FirstStageSeededFromToday(t *testing.T) {
	p := newProduct("P-2", models.PriorityUrgent)
	stages := NewPipeline(p.ID)

	s := Scheduler{Counting: CalendarDays}
	planned, err := s.Plan(stages, defaultConfigs(), p.Priority, date(2024, 3, 1))
	require.NoError(t, err)
	// round(2 × 0.5) = 1
	assert.Equal(t, date(2024, 3, 2), *planned[0].ExpectedDate)
}

func TestPlan_Idempotent(t *testing.T) {
	p := newProduct("P-3", models.PriorityHigh)
	stages := stagesWith(p.ID, models.StageStatusCompleted, models.StageStatusCompleted, models.StageStatusInProgress)
	stages[0].ActualDate = datePtr(2024, 2, 1)
	stages[1].ActualDate = datePtr(2024, 2, 7)

	s := Scheduler{Counting: BusinessDays}
	today := date(2024, 2, 8)
	first, err := s.Plan(stages, defaultConfigs(), p.Priority, today)
	require.NoError(t, err)
	second, err := s.Plan(first, defaultConfigs(), p.Priority, today)
	require.NoError(t, err)

	for i := range first {
		assert.Equal(t, first[i].ExpectedDate, second[i].ExpectedDate, first[i].StageName)
	}
}

func TestPlan_MissingConfigurationReturnsNothing(t *testing.T) {
	p := newProduct("P-4", models.PriorityMedium)
	cfgs := NewConfigSet([]models.StageConfig{{StageName: StageBriefing, DurationDays: 1, PriorityMultiplier: 1}})

	s := Scheduler{Counting: CalendarDays}
	planned, err := s.Plan(NewPipeline(p.ID), cfgs, p.Priority, date(2024, 1, 1))
	require.ErrorIs(t, err, ErrConfigurationMissing)
	assert.Nil(t, planned)
}

func TestConfigSet_WithDoesNotMutateReceiver(t *testing.T) {
	base := defaultConfigs()
	updated := base.With(models.StageConfig{StageName: StageBriefing, DurationDays: 9, PriorityMultiplier: 1})

	orig, _ := base.Get(StageBriefing)
	next, _ := updated.Get(StageBriefing)
	assert.Equal(t, 2, orig.DurationDays)
	assert.Equal(t, 9, next.DurationDays)

	list := updated.List()
	require.Len(t, list, 6)
	assert.Equal(t, StageBriefing, list[0].StageName)
	assert.Equal(t, StageDelivered, list[5].StageName)
}

func TestToday_UsesLocation(t *testing.T) {
	loc := time.FixedZone("BRT", -3*3600)
	now := time.Date(2024, 5, 2, 1, 30, 0, 0, time.UTC) // still 1 May in BRT
	assert.Equal(t, date(2024, 5, 1), Today(now, loc))
	assert.Equal(t, date(2024, 5, 2), Today(now, nil))
}
