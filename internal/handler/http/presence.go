package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/brainbattle-platform/brainbattle-clan/internal/repository"
)

// PresenceHandler answers "is this user online right now". The answer is
// advisory: it reflects a TTL'd marker, not a live socket poll.
type PresenceHandler struct {
	state repository.StateRepository
}

// NewPresenceHandler creates the handler.
func NewPresenceHandler(state repository.StateRepository) *PresenceHandler {
	if state == nil {
		panic("StateRepository cannot be nil for PresenceHandler")
	}
	return &PresenceHandler{state: state}
}

// Check handles GET /api/presence/:userId.
func (h *PresenceHandler) Check(c *gin.Context) {
	if _, ok := authedUserID(c); !ok {
		return
	}
	targetID := c.Param("userId")

	online, err := h.state.IsOnline(c.Request.Context(), targetID)
	if err != nil {
		logrus.WithError(err).WithField("target_id", targetID).Error("Handler.Presence: Failed to check presence")
		ErrorResponse(c, http.StatusInternalServerError, "Failed to check presence")
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"userId": targetID, "online": online})
}
