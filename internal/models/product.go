// internal/models/product.go
package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Product is owned by the catalogue forms; the workflow engine only reads it and bumps StageVersion.
type Product struct {
	BaseModel
	Name         string         `json:"name" gorm:"size:255;not null"`
	Code         string         `json:"code" gorm:"size:64;not null;uniqueIndex"`
	Priority     Priority       `json:"priority" gorm:"type:varchar(20);default:'media';index"`
	ImageURL     string         `json:"image_url" gorm:"type:text"`
	Status       ProductStatus  `json:"status" gorm:"type:varchar(20);default:'ativo';index"`
	CollectionID *uuid.UUID     `json:"collection_id" gorm:"type:uuid;index"`
	ClientID     *uuid.UUID     `json:"client_id" gorm:"type:uuid;index"`
	Tags         pq.StringArray `json:"tags" gorm:"type:text[]"`
	StageVersion int64          `json:"stage_version" gorm:"not null;default:0"`

	// Relationships
	Collection *Collection       `json:"collection,omitempty" gorm:"foreignKey:CollectionID"`
	Client     *Client           `json:"client,omitempty" gorm:"foreignKey:ClientID"`
	Stages     []ProductionStage `json:"stages,omitempty" gorm:"foreignKey:ProductID"`
	Files      []ProductFile     `json:"files,omitempty" gorm:"foreignKey:ProductID"`
}

type Collection struct {
	BaseModel
	Name      string     `json:"name" gorm:"size:255;not null"`
	Season    string     `json:"season" gorm:"size:50"`
	ClientID  *uuid.UUID `json:"client_id" gorm:"type:uuid;index"`
	StylistID *uuid.UUID `json:"stylist_id" gorm:"type:uuid;index"`

	// Relationships
	Client  *Client  `json:"client,omitempty" gorm:"foreignKey:ClientID"`
	Stylist *Stylist `json:"stylist,omitempty" gorm:"foreignKey:StylistID"`
}

type Client struct {
	BaseModel
	Name  string `json:"name" gorm:"size:255;not null;index"`
	Email string `json:"email" gorm:"size:255"`
	Phone string `json:"phone" gorm:"size:50"`

	Collections []Collection `json:"collections,omitempty" gorm:"foreignKey:ClientID"`
}

type Stylist struct {
	BaseModel
	Name      string `json:"name" gorm:"size:255;not null;uniqueIndex"`
	Email     string `json:"email" gorm:"size:255"`
	Specialty string `json:"specialty" gorm:"size:100"`
}

// ProductFile is an attachment record; the binary lives in object storage under StorageKey.
type ProductFile struct {
	BaseModel
	ProductID  uuid.UUID `json:"product_id" gorm:"type:uuid;not null;index"`
	FileName   string    `json:"file_name" gorm:"size:255;not null"`
	FileType   string    `json:"file_type" gorm:"size:100"`
	StorageKey string    `json:"storage_key" gorm:"size:500"`
	Size       int64     `json:"size" gorm:"default:0"`
}
