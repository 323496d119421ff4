package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/snagasawa/production-management-api/internal/database"
	apierrors "github.com/snagasawa/production-management-api/internal/errors"
	"github.com/snagasawa/production-management-api/internal/models"
)

// Context keys populated by RequireOrganizationAccess.
const (
	ContextKeyOrganization       = "organization"
	ContextKeyOrganizationMember = "organization_member"
)

// RequireOrganizationAccess verifies the caller is a member of the
// organization named in the URL and stores the organization and membership
// in context. Missing membership responds 404 rather than 403 so the
// response does not leak whether the organization exists.
func RequireOrganizationAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid organization ID")
			c.Abort()
			return
		}

		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		var org models.Organization
		if err := database.GetDB().First(&org, orgID).Error; err != nil {
			apierrors.NotFound(c, "Organization not found")
			c.Abort()
			return
		}

		var member models.OrganizationMember
		err = database.GetDB().
			Where("organization_id = ? AND user_id = ?", orgID, userID).
			First(&member).Error
		if err != nil {
			apierrors.NotFound(c, "Organization not found")
			c.Abort()
			return
		}

		c.Set(ContextKeyOrganization, org)
		c.Set(ContextKeyOrganizationMember, member)
		c.Next()
	}
}

// RequireOrganizationOwner restricts the route to members with the owner
// role. Must run after RequireOrganizationAccess.
func RequireOrganizationOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get(ContextKeyOrganizationMember)
		if !exists {
			apierrors.Forbidden(c, "Organization access required")
			c.Abort()
			return
		}

		member, ok := value.(models.OrganizationMember)
		if !ok {
			apierrors.InternalError(c, "Invalid organization member data")
			c.Abort()
			return
		}

		if member.Role != models.RoleOwner {
			apierrors.Forbidden(c, "Only organization owners can perform this action")
			c.Abort()
			return
		}

		c.Next()
	}
}
