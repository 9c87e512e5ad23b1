package handlers

import (
	"net/http"

	"gdpr-tracker/internal/dto"

	"github.com/gin-gonic/gin"
)

type RegistrationResponse struct {
	Message string       `json:"message"`
	User    *dto.UserDTO `json:"user"`
}

func (h *UserHandler) Register(c *gin.Context) {
	var req dto.RegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, err := h.userService.CreateUser(c.Request.Context(), req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, RegistrationResponse{
		Message: "Account created successfully",
		User:    user,
	})
}
