// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// BeforeCreate assigns the primary key when the caller did not.
func (m *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// Enums
type StageStatus string

const (
	StageStatusPending    StageStatus = "pendente"
	StageStatusInProgress StageStatus = "em_andamento"
	StageStatusCompleted  StageStatus = "concluida"
	StageStatusLate       StageStatus = "atrasada"
)

// IsValid reports whether s is one of the stored stage statuses.
func (s StageStatus) IsValid() bool {
	switch s {
	case StageStatusPending, StageStatusInProgress, StageStatusCompleted, StageStatusLate:
		return true
	}
	return false
}

// IsActive reports whether a stage with this status can be a product's current stage.
func (s StageStatus) IsActive() bool {
	return s == StageStatusPending || s == StageStatusInProgress
}

type Priority string

const (
	PriorityLow    Priority = "baixa"
	PriorityMedium Priority = "media"
	PriorityHigh   Priority = "alta"
	PriorityUrgent Priority = "urgente"
)

// Amplifies reports whether the stage priority multiplier applies to this priority.
func (p Priority) Amplifies() bool {
	return p == PriorityHigh || p == PriorityUrgent
}

type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "ativo"
	ProductStatusPaused   ProductStatus = "pausado"
	ProductStatusArchived ProductStatus = "arquivado"
)

type NotificationType string

const (
	NotificationStageAdvanced   NotificationType = "stage_advanced"
	NotificationStageMoved      NotificationType = "stage_moved"
	NotificationStageUpdated    NotificationType = "stage_updated"
	NotificationPipelineCreated NotificationType = "pipeline_created"
	NotificationRecalculated    NotificationType = "schedule_recalculated"
	NotificationConfigUpdated   NotificationType = "stage_config_updated"
)
