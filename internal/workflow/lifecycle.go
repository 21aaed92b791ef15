package workflow

import (
	"time"

	"github.com/google/uuid"

	"github.com/javajoker/atelier-backend/internal/models"
)

// StageChange is one row write produced by a lifecycle transition.
type StageChange struct {
	StageID     uuid.UUID
	StageName   string
	From        models.StageStatus
	To          models.StageStatus
	ActualDate  *time.Time
	ClearActual bool
}

// PlanAdvance completes the current stage and starts the next one by stage_order.
// When there is no next stage it returns ErrNoNextStage and no changes.
func PlanAdvance(stages []models.ProductionStage, today time.Time) ([]StageChange, error) {
	current := CurrentStage(stages)
	if current == nil {
		return nil, ErrNoStages
	}
	next := findStage(stages, func(st models.ProductionStage) bool {
		return st.StageOrder == current.StageOrder+1
	})
	if next == nil {
		return nil, ErrNoNextStage
	}

	day := Day(today)
	return []StageChange{
		{
			StageID:    current.ID,
			StageName:  current.StageName,
			From:       current.Status,
			To:         models.StageStatusCompleted,
			ActualDate: &day,
		},
		{
			StageID:   next.ID,
			StageName: next.StageName,
			From:      next.Status,
			To:        models.StageStatusInProgress,
		},
	}, nil
}

// PlanMove puts the product directly on target, skipping sequential advancement.
// Earlier stages that are still open are closed (actual date today unless one is
// already recorded), the target is started, later stages are reset to pendente.
// Afterwards exactly one stage is active.
func PlanMove(stages []models.ProductionStage, target string, today time.Time) ([]StageChange, error) {
	if len(stages) == 0 {
		return nil, ErrNoStages
	}
	targetStage := findStage(stages, func(st models.ProductionStage) bool {
		return st.StageName == target
	})
	if targetStage == nil {
		if !IsKnownStage(target) {
			return nil, &UnknownStageError{StageName: target}
		}
		return nil, ErrStageNotFound
	}

	day := Day(today)
	var changes []StageChange
	for _, st := range SortStages(stages) {
		switch {
		case st.StageOrder < targetStage.StageOrder:
			if st.Status == models.StageStatusCompleted {
				continue
			}
			ch := StageChange{StageID: st.ID, StageName: st.StageName, From: st.Status, To: models.StageStatusCompleted}
			if st.ActualDate == nil {
				ch.ActualDate = &day
			}
			changes = append(changes, ch)
		case st.ID == targetStage.ID:
			changes = append(changes, StageChange{
				StageID:     st.ID,
				StageName:   st.StageName,
				From:        st.Status,
				To:          models.StageStatusInProgress,
				ClearActual: st.ActualDate != nil,
			})
		default:
			if st.Status == models.StageStatusPending && st.ActualDate == nil {
				continue
			}
			changes = append(changes, StageChange{
				StageID:     st.ID,
				StageName:   st.StageName,
				From:        st.Status,
				To:          models.StageStatusPending,
				ClearActual: st.ActualDate != nil,
			})
		}
	}
	return changes, nil
}

// Apply returns a copy of stages with changes applied.
func Apply(stages []models.ProductionStage, changes []StageChange) []models.ProductionStage {
	out := SortStages(stages)
	for _, ch := range changes {
		for i := range out {
			if out[i].ID != ch.StageID {
				continue
			}
			out[i].Status = ch.To
			if ch.ClearActual {
				out[i].ActualDate = nil
			}
			if ch.ActualDate != nil {
				d := *ch.ActualDate
				out[i].ActualDate = &d
			}
		}
	}
	return out
}
