package workflow

import (
	"sort"

	"github.com/google/uuid"

	"github.com/javajoker/atelier-backend/internal/models"
)

// Pipeline stage names, in production order.
const (
	StageBriefing           = "Briefing Recebido"
	StageTechnicalModeling  = "Modelagem Técnica"
	StagePrototyping        = "Prototipagem"
	StageApprovalSubmission = "Envio para Aprovação"
	StageApproved           = "Aprovado"
	StageDelivered          = "Mostruário e Entregue"
)

var pipeline = [...]string{
	StageBriefing,
	StageTechnicalModeling,
	StagePrototyping,
	StageApprovalSubmission,
	StageApproved,
	StageDelivered,
}

// Pipeline returns the stage names in order. stage_order is index+1.
func Pipeline() []string {
	out := make([]string, len(pipeline))
	copy(out, pipeline[:])
	return out
}

// StageOrder returns the 1-based pipeline position of name.
func StageOrder(name string) (int, bool) {
	for i, s := range pipeline {
		if s == name {
			return i + 1, true
		}
	}
	return 0, false
}

func IsKnownStage(name string) bool {
	_, ok := StageOrder(name)
	return ok
}

// NewPipeline builds the initial stage records for a product: the first stage
// in progress, every other stage pending. IDs are assigned so schedules can be
// planned before insertion.
func NewPipeline(productID uuid.UUID) []models.ProductionStage {
	stages := make([]models.ProductionStage, 0, len(pipeline))
	for i, name := range pipeline {
		status := models.StageStatusPending
		if i == 0 {
			status = models.StageStatusInProgress
		}
		st := models.ProductionStage{
			ProductID:  productID,
			StageName:  name,
			StageOrder: i + 1,
			Status:     status,
		}
		st.ID = uuid.New()
		stages = append(stages, st)
	}
	return stages
}

// SortStages returns a copy of stages ordered by stage_order ascending.
func SortStages(stages []models.ProductionStage) []models.ProductionStage {
	out := make([]models.ProductionStage, len(stages))
	copy(out, stages)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StageOrder < out[j].StageOrder
	})
	return out
}

// CurrentStage applies the "first incomplete, else last" rule. It returns nil
// when the product has no stages.
func CurrentStage(stages []models.ProductionStage) *models.ProductionStage {
	if len(stages) == 0 {
		return nil
	}
	sorted := SortStages(stages)
	for i := range sorted {
		if sorted[i].Status.IsActive() {
			return &sorted[i]
		}
	}
	return &sorted[len(sorted)-1]
}

// AllCompleted reports whether every stage is concluida. False for an empty pipeline.
func AllCompleted(stages []models.ProductionStage) bool {
	if len(stages) == 0 {
		return false
	}
	for _, st := range stages {
		if st.Status != models.StageStatusCompleted {
			return false
		}
	}
	return true
}

func findStage(stages []models.ProductionStage, match func(models.ProductionStage) bool) *models.ProductionStage {
	for i := range stages {
		if match(stages[i]) {
			return &stages[i]
		}
	}
	return nil
}
