package middleware

import (
	"errors"
	"net/http"
	"strings"

	"gdpr-tracker/internal/logger"
	"gdpr-tracker/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"github.com/golang-jwt/jwt/v5"
)

const (
	ContextUserID   = "user_id"
	ContextUserRole = "user_role"
)

type AuthzConfig struct {
	Secret string
	Issuer string
}

// AuthzMiddleware validates the Bearer JWT and stores the caller's id
// (uuid.UUID) and role (models.UserRole) on the gin context.
func AuthzMiddleware(config AuthzConfig) gin.HandlerFunc {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(config.Issuer),
		jwt.WithExpirationRequired(),
	)
	keyFunc := func(*jwt.Token) (interface{}, error) {
		return []byte(config.Secret), nil
	}

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "missing_token",
				"message": "Authorization header is required",
			})
			return
		}

		tokenStr, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "invalid_token_format",
				"message": "Authorization header must use Bearer token",
			})
			return
		}

		claims := jwt.MapClaims{}
		if _, err := parser.ParseWithClaims(tokenStr, claims, keyFunc); err != nil {
			logger.DebugContext(c.Request.Context(), "Token rejected", "error", err)
			code, message := "invalid_token", "Token validation failed"
			if errors.Is(err, jwt.ErrTokenExpired) {
				code, message = "expired_token", "Token has expired"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": code, "message": message})
			return
		}

		rawID, _ := claims["user_id"].(string)
		userID, err := uuid.FromString(rawID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "invalid_claims",
				"message": "Token claims are invalid",
			})
			return
		}
		role, _ := claims["role"].(string)

		c.Set(ContextUserID, userID)
		c.Set(ContextUserRole, models.UserRole(role))
		c.Next()
	}
}

// UserID returns the authenticated caller's id.
func UserID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get(ContextUserID)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok && id != uuid.Nil
}

func UserRole(c *gin.Context) models.UserRole {
	role, _ := c.Get(ContextUserRole)
	r, _ := role.(models.UserRole)
	return r
}
