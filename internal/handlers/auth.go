package handlers

import (
	"net/http"

	"gdpr-tracker/internal/dto"
	"gdpr-tracker/internal/services"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService services.AuthService
	userService services.UserService
}

type LoginResponse struct {
	dto.TokenResponse
	User *dto.UserDTO `json:"user"`
}

func NewAuthHandler(authService services.AuthService, userService services.UserService) *AuthHandler {
	return &AuthHandler{authService: authService, userService: userService}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	tokens, err := h.authService.Login(ctx, req.Email, req.Password)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	user, err := h.userService.GetUserByEmail(ctx, req.Email)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, LoginResponse{TokenResponse: *tokens, User: user})
}

// Me returns the authenticated caller's own record.
func (h *AuthHandler) Me(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	user, err := h.userService.GetUserByID(c.Request.Context(), actor.UserID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
