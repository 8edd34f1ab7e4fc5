package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/meremyd/campus-election-api/internal/models"
	appErrors "github.com/meremyd/campus-election-api/pkg/errors"
	"github.com/meremyd/campus-election-api/pkg/response"
)

// RequireRoles enforces role-based access control for routes. SUPERADMIN
// always passes.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(c *gin.Context) {
		claims := Claims(c)
		if claims == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		if claims.Role == models.RoleSuperAdmin {
			c.Next()
			return
		}
		if _, ok := allowed[claims.Role]; ok {
			c.Next()
			return
		}

		response.Error(c, appErrors.ErrForbidden)
		c.Abort()
	}
}
