// internal/models/notification.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification backs the toast feed shown after workflow mutations.
type Notification struct {
	BaseModel
	Type      NotificationType `json:"type" gorm:"type:varchar(50);not null;index"`
	Title     string           `json:"title" gorm:"size:255;not null"`
	Message   string           `json:"message" gorm:"type:text;not null"`
	ProductID *uuid.UUID       `json:"product_id" gorm:"type:uuid;index"`
	StageName string           `json:"stage_name,omitempty" gorm:"size:100"`
	Data      JSONB            `json:"data,omitempty" gorm:"type:jsonb"`
	ReadAt    *time.Time       `json:"read_at"`
}
