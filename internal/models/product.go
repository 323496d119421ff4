package models

import (
	"time"

	"gorm.io/gorm"
)

type Product struct {
	ID            uint64         `gorm:"primarykey" json:"id"`
	OwnerID       uint64         `gorm:"not null;index" json:"owner_id"`
	Name          string         `gorm:"type:varchar(255);not null" json:"name"`
	ArticleNumber string         `gorm:"type:varchar(100)" json:"article_number"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	StepDetails []ProductionStepDetail `gorm:"foreignKey:ProductID" json:"step_details,omitempty"`
}
