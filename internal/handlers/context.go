package handlers

import (
	"net/http"

	"gdpr-tracker/internal/middleware"
	"gdpr-tracker/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
)

// currentActor reads the identity AuthzMiddleware stored on the request.
// It aborts with 401 when none is present.
func currentActor(c *gin.Context) (services.Actor, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return services.Actor{}, false
	}
	return services.Actor{UserID: userID, Role: middleware.UserRole(c)}, true
}

func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.FromString(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name + " format"})
		return uuid.Nil, false
	}
	return id, true
}
