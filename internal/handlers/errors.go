package handlers

import (
	"net/http"

	"gdpr-tracker/internal/apperrors"
	"gdpr-tracker/internal/logger"

	"github.com/gin-gonic/gin"
)

func statusForKind(kind apperrors.Kind) int {
	switch kind {
	case apperrors.KindNotFound:
		return http.StatusNotFound
	case apperrors.KindUnauthorized:
		return http.StatusForbidden
	case apperrors.KindAlreadyExists, apperrors.KindDuplicate:
		return http.StatusConflict
	case apperrors.KindInvalidInput, apperrors.KindFileStorage:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// handleServiceError writes the response for an error returned by a
// service. Internal errors are logged and never leak their message.
func handleServiceError(c *gin.Context, err error) {
	status := statusForKind(apperrors.KindOf(err))
	if status == http.StatusInternalServerError {
		logger.ErrorContext(c.Request.Context(), "Request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err,
		)
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Invalid request data",
		"details": err.Error(),
	})
}
