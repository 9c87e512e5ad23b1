package handlers

import (
	"errors"
	"net/http"

	"gdpr-tracker/internal/apperrors"
	"gdpr-tracker/internal/dto"

	"github.com/gin-gonic/gin"
)

// Logout revokes a refresh token. An unknown token still logs out: there is
// nothing left to revoke.
func (h *AuthHandler) Logout(c *gin.Context) {
	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.authService.Logout(c.Request.Context(), req.RefreshToken); err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Successfully logged out"})
}
