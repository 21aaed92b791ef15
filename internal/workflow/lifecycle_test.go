package workflow

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/atelier-backend/internal/models"
)

func activeCount(stages []models.ProductionStage) int {
	n := 0
	for _, st := range stages {
		if st.Status == models.StageStatusInProgress {
			n++
		}
	}
	return n
}

func TestNewPipeline(t *testing.T) {
	stages := NewPipeline(uuid.New())
	require.Len(t, stages, 6)
	for i, st := range stages {
		assert.Equal(t, i+1, st.StageOrder)
		assert.NotEqual(t, uuid.Nil, st.ID)
	}
	assert.Equal(t, StageBriefing, stages[0].StageName)
	assert.Equal(t, models.StageStatusInProgress, stages[0].Status)
	assert.Equal(t, StageDelivered, stages[5].StageName)
	assert.Equal(t, 1, activeCount(stages))
}

func TestPlanAdvance(t *testing.T) {
	today := date(2024, 4, 3)
	for n := 1; n < 6; n++ {
		statuses := make([]models.StageStatus, 0, 6)
		for i := 1; i <= 6; i++ {
			switch {
			case i < n:
				statuses = append(statuses, models.StageStatusCompleted)
			case i == n:
				statuses = append(statuses, models.StageStatusInProgress)
			default:
				statuses = append(statuses, models.StageStatusPending)
			}
		}
		stages := stagesWith(uuid.New(), statuses...)

		changes, err := PlanAdvance(stages, today)
		require.NoError(t, err)
		require.Len(t, changes, 2)

		after := Apply(stages, changes)
		assert.Equal(t, models.StageStatusCompleted, after[n-1].Status)
		require.NotNil(t, after[n-1].ActualDate)
		assert.Equal(t, today, *after[n-1].ActualDate)
		assert.Equal(t, models.StageStatusInProgress, after[n].Status)
		assert.Equal(t, 1, activeCount(after))
	}
}

func TestPlanAdvance_FinalStage(t *testing.T) {
	stages := stagesWith(uuid.New(),
		models.StageStatusCompleted, models.StageStatusCompleted, models.StageStatusCompleted,
		models.StageStatusCompleted, models.StageStatusCompleted, models.StageStatusInProgress)

	changes, err := PlanAdvance(stages, date(2024, 4, 3))
	require.ErrorIs(t, err, ErrNoNextStage)
	assert.Empty(t, changes)
}

func TestPlanAdvance_NoStages(t *testing.T) {
	_, err := PlanAdvance(nil, date(2024, 4, 3))
	require.ErrorIs(t, err, ErrNoStages)
}

func TestPlanMove_SkipsAhead(t *testing.T) {
	today := date(2024, 4, 3)
	stages := stagesWith(uuid.New(), models.StageStatusCompleted, models.StageStatusCompleted, models.StageStatusInProgress)

	changes, err := PlanMove(stages, StageApproved, today)
	require.NoError(t, err)

	after := Apply(stages, changes)
	assert.Equal(t, models.StageStatusInProgress, after[4].Status)
	assert.Equal(t, models.StageStatusCompleted, after[2].Status, "Prototipagem is closed")
	assert.Equal(t, models.StageStatusCompleted, after[3].Status, "approval submission does not need to be completed first")
	assert.Equal(t, models.StageStatusPending, after[5].Status)
	assert.Equal(t, 1, activeCount(after))

	current := CurrentStage(after)
	require.NotNil(t, current)
	assert.Equal(t, StageApproved, current.StageName)
}

func TestPlanMove_Backwards(t *testing.T) {
	stages := stagesWith(uuid.New(),
		models.StageStatusCompleted, models.StageStatusCompleted, models.StageStatusCompleted, models.StageStatusInProgress)
	stages[1].ActualDate = datePtr(2024, 3, 1)
	stages[2].ActualDate = datePtr(2024, 3, 8)

	changes, err := PlanMove(stages, StageTechnicalModeling, date(2024, 4, 3))
	require.NoError(t, err)

	after := Apply(stages, changes)
	assert.Equal(t, models.StageStatusInProgress, after[1].Status)
	assert.Nil(t, after[1].ActualDate)
	assert.Equal(t, models.StageStatusPending, after[2].Status)
	assert.Nil(t, after[2].ActualDate)
	assert.Equal(t, models.StageStatusPending, after[3].Status)
	assert.Equal(t, 1, activeCount(after))
}

func TestPlanMove_KeepsRecordedActualDates(t *testing.T) {
	stages := stagesWith(uuid.New(), models.StageStatusInProgress)
	stages[0].ActualDate = datePtr(2024, 3, 30)

	changes, err := PlanMove(stages, StagePrototyping, date(2024, 4, 3))
	require.NoError(t, err)

	after := Apply(stages, changes)
	assert.Equal(t, date(2024, 3, 30), *after[0].ActualDate)
	assert.Equal(t, date(2024, 4, 3), *after[1].ActualDate)
}

func TestPlanMove_UnknownTarget(t *testing.T) {
	stages := NewPipeline(uuid.New())
	_, err := PlanMove(stages, "Costura", date(2024, 4, 3))
	require.ErrorIs(t, err, ErrUnknownStage)

	partial := stages[:3]
	_, err = PlanMove(partial, StageDelivered, date(2024, 4, 3))
	require.ErrorIs(t, err, ErrStageNotFound)
}
