package models

import (
	"time"

	"gorm.io/gorm"
)

// Organization is a shared workspace. Its ID doubles as the owner ID for
// every record created while acting on the organization's behalf.
type Organization struct {
	ID         uint64         `gorm:"primarykey" json:"id"`
	Name       string         `gorm:"type:varchar(255);not null" json:"name"`
	InviteCode string         `gorm:"type:varchar(50);uniqueIndex;not null" json:"invite_code"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Members []OrganizationMember `gorm:"foreignKey:OrganizationID" json:"members,omitempty"`
}
