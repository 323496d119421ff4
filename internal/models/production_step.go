package models

import (
	"time"

	"gorm.io/gorm"
)

type ProductionStep struct {
	ID          uint64         `gorm:"primarykey" json:"id"`
	OwnerID     uint64         `gorm:"not null;index" json:"owner_id"`
	Name        string         `gorm:"type:varchar(255);not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Details []ProductionStepDetail `gorm:"foreignKey:ProductionStepID" json:"details,omitempty"`
}
