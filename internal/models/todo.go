package models

import (
	"time"

	"gorm.io/gorm"
)

type TodoStatus string

const (
	TodoStatusOpen TodoStatus = "OPEN"
	TodoStatusDone TodoStatus = "DONE"
)

type Todo struct {
	ID          uint64         `gorm:"primarykey" json:"id"`
	OwnerID     uint64         `gorm:"not null;index" json:"owner_id"`
	Title       string         `gorm:"not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Status      TodoStatus     `gorm:"type:varchar(20);not null;default:'OPEN'" json:"status"`
	DueDate     *time.Time     `json:"due_date"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
