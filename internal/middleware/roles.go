package middleware

import (
	"net/http"
	"slices"

	"gdpr-tracker/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
)

// RequireRoles admits callers holding one of the given roles. It must run
// after AuthzMiddleware.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := UserID(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}

		role := UserRole(c)
		if !slices.Contains(roles, role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":          "Insufficient permissions",
				"required_roles": roles,
				"user_role":      role,
			})
			return
		}
		c.Next()
	}
}

// SelfOrRoles admits the user named by the path parameter param, and any
// caller holding one of roles.
func SelfOrRoles(param string, roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := UserID(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}
		if slices.Contains(roles, UserRole(c)) {
			c.Next()
			return
		}

		target, err := uuid.FromString(c.Param(param))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid resource ID"})
			return
		}
		if target != userID {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Can only modify own profile"})
			return
		}
		c.Next()
	}
}
