package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/brainbattle-platform/brainbattle-clan/internal/service"
)

// HandleServiceError translates business errors into HTTP status codes.
func HandleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAuthenticationFailed):
		ErrorResponse(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrNotAMember):
		ErrorResponse(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrRateLimited):
		ErrorResponse(c, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, service.ErrConversationNotFound), errors.Is(err, service.ErrMessageNotFound):
		ErrorResponse(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrSelfConversation),
		errors.Is(err, service.ErrEmptyContent),
		errors.Is(err, service.ErrInvalidCursor):
		ErrorResponse(c, http.StatusBadRequest, err.Error())
	default:
		// Log the internal error for debugging
		logrus.WithError(err).Error("Unhandled internal server error")
		ErrorResponse(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}

// authedUserID reads the user id set by the Auth middleware.
func authedUserID(c *gin.Context) (string, bool) {
	userIDAny, exists := c.Get("user_id")
	if !exists {
		logrus.Warn("Handler: User ID not found in context, middleware missing or failed?")
		ErrorResponse(c, http.StatusUnauthorized, "User not authenticated")
		return "", false
	}
	userID, ok := userIDAny.(string)
	if !ok || userID == "" {
		logrus.Error("Handler: User ID in context is not a string")
		ErrorResponse(c, http.StatusInternalServerError, "Internal server error processing user ID")
		return "", false
	}
	return userID, true
}
