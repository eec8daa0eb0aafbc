package websocket

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/brainbattle-platform/brainbattle-clan/internal/hub"
)

// WebSocketHandler upgrades authenticated requests and hands the connection
// to the gateway. Room joins happen per-frame after the upgrade, so the
// handler itself only needs the authenticated user.
type WebSocketHandler struct {
	upgrader websocket.Upgrader
	gateway  *hub.Gateway
}

// NewWebSocketHandler creates the handler. allowedOrigin, when non-empty,
// restricts the Origin header; empty allows any origin (development only).
func NewWebSocketHandler(gateway *hub.Gateway, allowedOrigin string) *WebSocketHandler {
	if gateway == nil {
		panic("Gateway cannot be nil for WebSocketHandler")
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if allowedOrigin == "" {
				return true
			}
			return r.Header.Get("Origin") == allowedOrigin
		},
	}

	return &WebSocketHandler{
		upgrader: upgrader,
		gateway:  gateway,
	}
}

// HandleConnection handles GET /ws. The Auth middleware has already set
// user_id; a failure before the upgrade is an HTTP error, after it the
// socket is simply closed.
func (h *WebSocketHandler) HandleConnection(c *gin.Context) {
	userIDAny, exists := c.Get("user_id")
	if !exists {
		logrus.Warn("WS Handler: User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}
	userID, ok := userIDAny.(string)
	if !ok || userID == "" {
		logrus.Error("WS Handler: User ID in context is not a string")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	logCtx := logrus.WithField("user_id", userID)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade writes its own HTTP error response.
		logCtx.WithError(err).Error("WS Handler: Failed to upgrade connection")
		return
	}
	logCtx.Info("WS Handler: Connection upgraded to WebSocket")

	client := hub.NewClient(h.gateway, conn, userID)
	client.Run()
}
