package hub

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/brainbattle-platform/brainbattle-clan/internal/service"
)

// Client is one authenticated WebSocket connection. The connection state
// machine is connecting → authenticated (handshake, before NewClient) →
// idle/in-rooms (pumps running) → disconnected (read pump exit).
type Client struct {
	gw     *Gateway
	conn   *websocket.Conn
	userID string
	log    *logrus.Entry

	// mu guards send against the close in closeSend: deliverers may hold a
	// snapshot of this client taken before it unregistered.
	mu     sync.Mutex
	closed bool
	send   chan []byte
}

// NewClient wraps an upgraded, authenticated connection.
func NewClient(gw *Gateway, conn *websocket.Conn, userID string) *Client {
	return &Client{
		gw:     gw,
		conn:   conn,
		userID: userID,
		send:   make(chan []byte, 256),
		log:    logrus.WithFields(logrus.Fields{"component": "ws_client", "user_id": userID}),
	}
}

// UserID returns the authenticated user behind the connection.
func (c *Client) UserID() string { return c.userID }

// queue enqueues a frame without blocking. It reports false when the
// connection is already closed or its buffer is full.
func (c *Client) queue(frame []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

// closeSend marks the connection closed and closes the send channel so the
// write pump exits. Idempotent; safe against concurrent queue calls.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// Run registers the connection, refreshes presence, and starts the pumps.
func (c *Client) Run() {
	c.gw.hub.Register(c)
	c.gw.touchPresence(context.Background(), c.userID)
	go c.WritePump()
	go c.ReadPump()
}

// ReadPump reads client frames until the connection drops, then cleans up.
// A dropped connection simply stops receiving fan-out; nothing in flight is
// rolled back.
func (c *Client) ReadPump() {
	defer func() {
		if c.gw.hub.Unregister(c) {
			// Last local connection of this user. Best effort: a connection
			// on another instance refreshes the marker on its next touch.
			c.gw.clearPresence(context.Background(), c.userID)
		}
		c.conn.Close()
		c.log.Info("Read pump exited, client cleaned up")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.WithError(err).Warn("WebSocket read error (unexpected close)")
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}
		c.handleFrame(raw)
	}
}

// WritePump drains the send channel into the socket and keeps the
// connection alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel during unregister.
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.log.WithError(err).Warn("Failed to write frame to websocket")
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleFrame dispatches one client frame to its operation.
func (c *Client) handleFrame(raw []byte) {
	var frame ClientFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		c.sendError(CodeBadFrame, "unparseable frame")
		return
	}
	ctx := context.Background()

	switch frame.Type {
	case FrameJoin:
		c.handleJoin(ctx, frame)
	case FrameLeave:
		c.gw.hub.LeaveRoom(c, frame.ConversationID)
	case FrameTyping:
		c.handleTyping(ctx, frame)
	case FrameSend:
		c.handleSend(ctx, frame)
	case FrameMarkRead:
		c.handleMarkRead(ctx, frame)
	default:
		c.sendError(CodeBadFrame, "unknown frame type: "+frame.Type)
	}
}

// handleJoin subscribes the connection to a room after verifying active
// membership. Failure keeps the connection alive.
func (c *Client) handleJoin(ctx context.Context, frame ClientFrame) {
	if err := c.gw.conversations.RequireActiveMember(ctx, frame.ConversationID, c.userID); err != nil {
		c.sendServiceError(err)
		return
	}
	c.gw.hub.JoinRoom(c, frame.ConversationID)
	c.sendFrame("joined", JoinedPayload{
		ConversationID: frame.ConversationID,
		ServerTime:     time.Now().UTC(),
	})
}

// handleTyping relays the ephemeral indicator to the room. Never persisted.
func (c *Client) handleTyping(ctx context.Context, frame ClientFrame) {
	err := c.gw.broadcaster.ToRoom(ctx, frame.ConversationID, "typing", TypingPayload{
		ConversationID: frame.ConversationID,
		UserID:         c.userID,
		IsTyping:       frame.IsTyping,
	})
	if err != nil {
		c.log.WithError(err).Debug("Failed to relay typing indicator")
	}
}

// handleSend persists and fans out through the message service, then acks
// the sender on this connection so the client can reconcile its temp id.
func (c *Client) handleSend(ctx context.Context, frame ClientFrame) {
	c.gw.touchPresence(ctx, c.userID)
	msg, err := c.gw.messages.Send(ctx, frame.ConversationID, c.userID, frame.Content)
	if err != nil {
		c.sendServiceError(err)
		return
	}
	c.sendFrame("message.ack", AckPayload{
		TempID:    frame.TempID,
		MessageID: msg.ID,
		CreatedAt: msg.CreatedAt,
	})
}

func (c *Client) handleMarkRead(ctx context.Context, frame ClientFrame) {
	if err := c.gw.messages.MarkRead(ctx, frame.MessageID, c.userID, time.Now().UTC()); err != nil {
		c.sendServiceError(err)
	}
}

// sendFrame queues a server frame on this connection only.
func (c *Client) sendFrame(event string, payload interface{}) {
	frame, err := EncodeServerFrame(event, payload)
	if err != nil {
		c.log.WithError(err).WithField("event", event).Error("Failed to encode server frame")
		return
	}
	if !c.queue(frame) {
		c.log.WithField("event", event).Warn("Client send channel full or closed, dropping frame")
	}
}

// sendServiceError maps a business error to a typed system.error frame.
// The connection stays open for every gateway error.
func (c *Client) sendServiceError(err error) {
	switch {
	case errors.Is(err, service.ErrNotAMember):
		c.sendError(CodeNotAMember, err.Error())
	case errors.Is(err, service.ErrRateLimited):
		c.sendError(CodeRateLimited, err.Error())
	case errors.Is(err, service.ErrEmptyContent):
		c.sendError(CodeEmptyText, err.Error())
	case errors.Is(err, service.ErrMessageNotFound), errors.Is(err, service.ErrConversationNotFound):
		c.sendError(CodeNotFound, err.Error())
	default:
		c.log.WithError(err).Error("Unhandled gateway error")
		c.sendError(CodeInternal, "internal error")
	}
}

func (c *Client) sendError(code, message string) {
	c.sendFrame("system.error", ErrorPayload{Code: code, Message: message})
}
