package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/brainbattle-platform/brainbattle-clan/internal/service"
)

// InternalHandler serves the trusted service-to-service surface. These
// routes sit behind network-level access control, not user auth.
type InternalHandler struct {
	conversations *service.ConversationService
}

// NewInternalHandler creates the handler.
func NewInternalHandler(conversations *service.ConversationService) *InternalHandler {
	if conversations == nil {
		panic("ConversationService cannot be nil for InternalHandler")
	}
	return &InternalHandler{conversations: conversations}
}

// EnsureDMRequest is the body of POST /internal/conversations/dm.
type EnsureDMRequest struct {
	UserAID string `json:"userAId" binding:"required"`
	UserBID string `json:"userBId" binding:"required"`
}

// EnsureDM resolves (or creates) the DM conversation for a pair. The core
// service calls this when it needs the conversation id synchronously instead
// of waiting for the event-driven path.
func (h *InternalHandler) EnsureDM(c *gin.Context) {
	var req EnsureDMRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid input: userAId and userBId are required")
		return
	}

	conv, err := h.conversations.EnsureDM(c.Request.Context(), req.UserAID, req.UserBID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	logrus.WithFields(logrus.Fields{
		"conversation_id": conv.ID,
		"user_a":          req.UserAID,
		"user_b":          req.UserBID,
	}).Info("Handler.EnsureDM: DM conversation resolved")
	SuccessResponse(c, http.StatusOK, gin.H{"conversationId": conv.ID})
}
