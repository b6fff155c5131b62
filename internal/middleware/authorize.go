package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/models"
	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/permission"
)

const currentUserKey = "current_user"

type PermissionChecker interface {
	Check(ctx context.Context, principalID, module, action string) (models.User, permission.Decision, error)
}

// RequirePermission gates a route group on module. The action comes from
// the HTTP method: reads need "view", everything else "edit".
func RequirePermission(checker PermissionChecker, module string) gin.HandlerFunc {
	return func(c *gin.Context) {
		action := permission.ActionForMethod(c.Request.Method)
		user, _, err := checker.Check(c.Request.Context(), PrincipalID(c), module, action)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.Set(currentUserKey, user)
		c.Next()
	}
}

type MasterAdminGuard interface {
	RequireMasterAdmin(ctx context.Context, actorID string) (models.User, error)
}

func RequireMasterAdmin(guard MasterAdminGuard) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := guard.RequireMasterAdmin(c.Request.Context(), PrincipalID(c))
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.Set(currentUserKey, user)
		c.Next()
	}
}

// CurrentUser returns the principal loaded by RequirePermission or
// RequireMasterAdmin.
func CurrentUser(c *gin.Context) (models.User, bool) {
	val, ok := c.Get(currentUserKey)
	if !ok {
		return models.User{}, false
	}
	user, ok := val.(models.User)
	return user, ok
}
