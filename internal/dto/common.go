package dto

import (
	"github.com/snagasawa/production-management-api/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
}

// OrganizationDTO represents an organization in API responses
type OrganizationDTO struct {
	ID         uint64 `json:"id"`
	Name       string `json:"name"`
	InviteCode string `json:"invite_code,omitempty"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:       user.ID,
		Username: user.Username,
	}
}

// ToOrganizationDTO converts an Organization model to OrganizationDTO
func ToOrganizationDTO(org models.Organization, includeInviteCode bool) OrganizationDTO {
	dto := OrganizationDTO{
		ID:   org.ID,
		Name: org.Name,
	}
	if includeInviteCode {
		dto.InviteCode = org.InviteCode
	}
	return dto
}
