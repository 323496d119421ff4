package dto

import (
	"time"

	"github.com/snagasawa/production-management-api/internal/models"
)

// OrganizationWithRoleDTO is an organization paired with the requesting
// user's role in it, as returned by the organization list endpoint.
type OrganizationWithRoleDTO struct {
	OrganizationDTO
	Role models.OrganizationRole `json:"role"`
}

// OrganizationMemberDTO represents a member in an organization
type OrganizationMemberDTO struct {
	User     UserDTO                 `json:"user"`
	Role     models.OrganizationRole `json:"role"`
	JoinedAt time.Time               `json:"joined_at"`
}

// OrganizationDetailDTO is the full organization view: member roster plus
// the requesting user's own role. Only this view exposes the invite code.
type OrganizationDetailDTO struct {
	OrganizationDTO
	Members  []OrganizationMemberDTO `json:"members"`
	YourRole models.OrganizationRole `json:"your_role"`
}

// ToOrganizationWithRoleDTO converts an organization member to DTO with role
func ToOrganizationWithRoleDTO(member models.OrganizationMember) OrganizationWithRoleDTO {
	return OrganizationWithRoleDTO{
		OrganizationDTO: ToOrganizationDTO(member.Organization, false),
		Role:            member.Role,
	}
}

// ToOrganizationMemberDTO converts a member to DTO
func ToOrganizationMemberDTO(member models.OrganizationMember) OrganizationMemberDTO {
	return OrganizationMemberDTO{
		User:     ToUserDTO(member.User),
		Role:     member.Role,
		JoinedAt: member.JoinedAt,
	}
}

// ToOrganizationDetailDTO builds the detailed view for a member of org.
func ToOrganizationDetailDTO(org models.Organization, members []models.OrganizationMember, yourRole models.OrganizationRole) OrganizationDetailDTO {
	memberDTOs := make([]OrganizationMemberDTO, 0, len(members))
	for _, member := range members {
		memberDTOs = append(memberDTOs, ToOrganizationMemberDTO(member))
	}

	return OrganizationDetailDTO{
		OrganizationDTO: ToOrganizationDTO(org, true),
		Members:         memberDTOs,
		YourRole:        yourRole,
	}
}
