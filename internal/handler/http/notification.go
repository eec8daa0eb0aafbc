package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/brainbattle-platform/brainbattle-clan/internal/service"
)

const defaultNotificationLimit = 50

// NotificationHandler serves the user's durable notification feed.
type NotificationHandler struct {
	notifications *service.NotificationService
}

// NewNotificationHandler creates the handler.
func NewNotificationHandler(notifications *service.NotificationService) *NotificationHandler {
	if notifications == nil {
		panic("NotificationService cannot be nil for NotificationHandler")
	}
	return &NotificationHandler{notifications: notifications}
}

// NotificationView is one entry of the feed response.
type NotificationView struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt string          `json:"createdAt"`
	ReadAt    *string         `json:"readAt"`
}

// List handles GET /api/notifications?limit=.
func (h *NotificationHandler) List(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}

	limit := defaultNotificationLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			ErrorResponse(c, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	notifs, err := h.notifications.List(c.Request.Context(), userID, limit)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	views := make([]NotificationView, 0, len(notifs))
	for _, n := range notifs {
		view := NotificationView{
			ID:        n.ID,
			Type:      string(n.Type),
			Payload:   json.RawMessage(n.Payload),
			CreatedAt: n.CreatedAt.UTC().Format("2006-01-02T15:04:05.000Z"),
		}
		if n.ReadAt != nil {
			readAt := n.ReadAt.UTC().Format("2006-01-02T15:04:05.000Z")
			view.ReadAt = &readAt
		}
		views = append(views, view)
	}
	SuccessResponse(c, http.StatusOK, gin.H{"notifications": views})
}

// MarkRead handles POST /api/notifications/:id/read. Marking an id that does
// not belong to the caller changes nothing.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}
	if err := h.notifications.MarkRead(c.Request.Context(), c.Param("id"), userID); err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"message": "Notification marked as read"})
}
