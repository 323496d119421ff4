package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/snagasawa/production-management-api/internal/constants"
	"github.com/snagasawa/production-management-api/internal/database"
	apierrors "github.com/snagasawa/production-management-api/internal/errors"
	"github.com/snagasawa/production-management-api/internal/models"
)

// ResolveOwner resolves the tenant identity for record routes, once per
// request. When the X-Organization-ID header is set, the caller must be
// a member of that organization and records are owned by it; otherwise
// records are owned by the user directly. Handlers and services receive
// the resolved Identity and never re-derive it.
func ResolveOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		identity := models.Identity{UserID: userID}

		if header := c.GetHeader(constants.OrganizationIDHeader); header != "" {
			orgID, err := strconv.ParseUint(header, 10, 64)
			if err != nil || orgID == 0 {
				apierrors.BadRequest(c, "Invalid organization ID")
				c.Abort()
				return
			}

			// Membership check; 404 rather than 403 so the response does
			// not leak whether the organization exists.
			var member models.OrganizationMember
			if err := database.GetDB().
				Where("organization_id = ? AND user_id = ?", orgID, userID).
				First(&member).Error; err != nil {
				apierrors.NotFound(c, "Organization not found")
				c.Abort()
				return
			}

			identity.OrganizationID = &orgID
		}

		c.Set(constants.ContextKeyIdentity, identity)
		c.Next()
	}
}

// GetIdentity retrieves the resolved tenant identity from context
func GetIdentity(c *gin.Context) (models.Identity, bool) {
	value, exists := c.Get(constants.ContextKeyIdentity)
	if !exists {
		return models.Identity{}, false
	}

	identity, ok := value.(models.Identity)
	return identity, ok
}
