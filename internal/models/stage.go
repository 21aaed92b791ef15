// internal/models/stage.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type ProductionStage struct {
	BaseModel
	ProductID        uuid.UUID   `json:"product_id" gorm:"type:uuid;not null;uniqueIndex:idx_production_stages_product_order"`
	StageName        string      `json:"stage_name" gorm:"size:100;not null;index"`
	StageOrder       int         `json:"stage_order" gorm:"not null;uniqueIndex:idx_production_stages_product_order"`
	Status           StageStatus `json:"status" gorm:"type:varchar(20);default:'pendente';index"`
	ExpectedDate     *time.Time  `json:"expected_date"`
	ActualDate       *time.Time  `json:"actual_date"`
	ResponsibleParty *string     `json:"responsible_party" gorm:"size:255;index"`
	Notes            string      `json:"notes" gorm:"type:text"`
}

type StageConfig struct {
	BaseModel
	StageName          string  `json:"stage_name" gorm:"size:100;not null;uniqueIndex"`
	DurationDays       int     `json:"duration_days" gorm:"not null"`
	PriorityMultiplier float64 `json:"priority_multiplier" gorm:"type:decimal(4,2);not null;default:1"`
}
