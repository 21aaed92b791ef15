package workflow

import (
	"time"

	"github.com/google/uuid"

	"github.com/javajoker/atelier-backend/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := date(y, m, d)
	return &t
}

func strPtr(s string) *string { return &s }

// stagesWith builds a six-stage pipeline with the given statuses, in order.
func stagesWith(productID uuid.UUID, statuses ...models.StageStatus) []models.ProductionStage {
	stages := NewPipeline(productID)
	for i := range stages {
		if i < len(statuses) {
			stages[i].Status = statuses[i]
		} else {
			stages[i].Status = models.StageStatusPending
		}
	}
	return stages
}

func snapshotOf(p models.Product, stages []models.ProductionStage) ProductWithStage {
	snaps := BuildSnapshots(SnapshotSource{Products: []models.Product{p}, Stages: stages}, nil)
	return snaps[0]
}

func newProduct(code string, priority models.Priority) models.Product {
	p := models.Product{Name: "Produto " + code, Code: code, Priority: priority, Status: models.ProductStatusActive}
	p.ID = uuid.New()
	return p
}
