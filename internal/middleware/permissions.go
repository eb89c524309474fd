// internal/middleware/permissions.go
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/centmarde/Eco-Barangay/internal/models"
)

// RequireRole allows only callers whose role is at least minRole on the
// resident < collector < official < admin ladder. Runs after
// AuthMiddleware.
func RequireRole(minRole models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole, ok := RoleFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "User not authenticated",
			})
			c.Abort()
			return
		}

		if !userRole.IsHigherOrEqual(minRole) {
			c.JSON(http.StatusForbidden, gin.H{
				"error":         "Insufficient permissions",
				"required_role": string(minRole),
				"user_role":     string(userRole),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireAnyRole allows callers holding any of the listed roles exactly.
func RequireAnyRole(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole, ok := RoleFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "User not authenticated",
			})
			c.Abort()
			return
		}

		for _, allowed := range roles {
			if userRole == allowed {
				c.Next()
				return
			}
		}

		c.JSON(http.StatusForbidden, gin.H{
			"error":     "Insufficient permissions",
			"user_role": string(userRole),
		})
		c.Abort()
	}
}

// RequireStaff allows officials and admins only.
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole, ok := RoleFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "User not authenticated",
			})
			c.Abort()
			return
		}

		if !userRole.IsStaff() {
			c.JSON(http.StatusForbidden, gin.H{
				"error":     "Staff access required",
				"user_role": string(userRole),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
