// internal/models/soundkit.go
package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type SoundKit struct {
	BaseModel
	ProducerID  uuid.UUID      `json:"producer_id" gorm:"type:uuid;not null;index"`
	Title       string         `json:"title" gorm:"size:255;not null"`
	Description string         `json:"description" gorm:"type:text"`
	Price       float64        `json:"price" gorm:"type:decimal(10,2);default:0"`
	Contents    pq.StringArray `json:"contents" gorm:"type:text[]"`
	Tags        pq.StringArray `json:"tags" gorm:"type:text[]"`
	CoverURL    string         `json:"cover_url" gorm:"size:512"`
	FileURL     string         `json:"file_url" gorm:"size:512"`
	SalesCount  int64          `json:"sales_count" gorm:"default:0"`

	// Relationships
	Producer User `json:"producer,omitempty" gorm:"foreignKey:ProducerID"`
}

// ServiceListing is a production service a producer offers (mixing, mastering,
// custom beats).
type ServiceListing struct {
	BaseModel
	ProducerID   uuid.UUID `json:"producer_id" gorm:"type:uuid;not null;index"`
	Title        string    `json:"title" gorm:"size:255;not null"`
	Description  string    `json:"description" gorm:"type:text"`
	Category     string    `json:"category" gorm:"size:100;index"`
	Price        float64   `json:"price" gorm:"type:decimal(10,2);default:0"`
	DeliveryDays int       `json:"delivery_days" gorm:"default:7"`
	IsActive     bool      `json:"is_active" gorm:"default:true"`

	// Relationships
	Producer User `json:"producer,omitempty" gorm:"foreignKey:ProducerID"`
}
