package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/brainbattle-platform/brainbattle-clan/internal/domain"
	"github.com/brainbattle-platform/brainbattle-clan/internal/service"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 100
)

// ConversationHandler serves the REST companions of the realtime gateway:
// conversation listing and message history for clients catching up after a
// reconnect.
type ConversationHandler struct {
	conversations *service.ConversationService
	messages      *service.MessageService
}

// NewConversationHandler creates the handler.
func NewConversationHandler(conversations *service.ConversationService, messages *service.MessageService) *ConversationHandler {
	if conversations == nil {
		panic("ConversationService cannot be nil for ConversationHandler")
	}
	if messages == nil {
		panic("MessageService cannot be nil for ConversationHandler")
	}
	return &ConversationHandler{conversations: conversations, messages: messages}
}

// ConversationView is one entry of the conversation list response.
type ConversationView struct {
	ID        string  `json:"id"`
	Kind      string  `json:"kind"`
	ClanID    *string `json:"clanId,omitempty"`
	Title     string  `json:"title,omitempty"`
	AvatarURL string  `json:"avatarUrl,omitempty"`
	UpdatedAt string  `json:"updatedAt"`
}

// ListMine handles GET /api/conversations.
func (h *ConversationHandler) ListMine(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}

	convs, err := h.conversations.ListMine(c.Request.Context(), userID)
	if err != nil {
		logrus.WithError(err).WithField("user_id", userID).Error("Handler.ListMine: Failed to list conversations")
		HandleServiceError(c, err)
		return
	}

	views := make([]ConversationView, 0, len(convs))
	for _, conv := range convs {
		views = append(views, ConversationView{
			ID:        conv.ID,
			Kind:      string(conv.Kind),
			ClanID:    conv.ClanID,
			Title:     conv.Title,
			AvatarURL: conv.AvatarURL,
			UpdatedAt: conv.UpdatedAt.UTC().Format("2006-01-02T15:04:05.000Z"),
		})
	}
	SuccessResponse(c, http.StatusOK, gin.H{"conversations": views})
}

// MessageView is one entry of the history response.
type MessageView struct {
	ID             string  `json:"id"`
	ConversationID string  `json:"conversationId"`
	SenderID       *string `json:"senderId"`
	Kind           string  `json:"kind"`
	Content        *string `json:"content"`
	CreatedAt      string  `json:"createdAt"`
}

// History handles GET /api/conversations/:id/messages?limit=&cursor=.
// Messages come back newest first; cursor is the id of the oldest message
// from the previous page.
func (h *ConversationHandler) History(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}
	conversationID := c.Param("id")

	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			ErrorResponse(c, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	msgs, err := h.messages.History(c.Request.Context(), conversationID, userID, limit, c.Query("cursor"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	views := make([]MessageView, 0, len(msgs))
	for _, msg := range msgs {
		views = append(views, messageView(msg))
	}
	resp := gin.H{"messages": views}
	if len(msgs) == limit {
		resp["nextCursor"] = msgs[len(msgs)-1].ID
	}
	SuccessResponse(c, http.StatusOK, resp)
}

func messageView(msg domain.Message) MessageView {
	return MessageView{
		ID:             msg.ID,
		ConversationID: msg.ConversationID,
		SenderID:       msg.SenderID,
		Kind:           string(msg.Kind),
		Content:        msg.Content,
		CreatedAt:      msg.CreatedAt.UTC().Format("2006-01-02T15:04:05.000Z"),
	}
}
