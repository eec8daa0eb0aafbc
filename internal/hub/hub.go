package hub

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// WebSocket timing constants shared by hub and client.
const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096
)

// Hub tracks this instance's live connections: which rooms each connection
// joined and which connections belong to each user. It only ever delivers
// locally; cluster-wide fan-out goes through the RedisBroadcaster, which
// feeds every instance's hub.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*Client]bool
	users map[string]map[*Client]bool
	log   *logrus.Entry
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		rooms: make(map[string]map[*Client]bool),
		users: make(map[string]map[*Client]bool),
		log:   logrus.WithField("component", "hub"),
	}
}

// Register adds a freshly authenticated connection and subscribes it to its
// user's broadcast channel, so cross-instance pushes addressed to the user
// reach this socket.
func (h *Hub) Register(c *Client) {
	if c == nil {
		h.log.Error("Attempted to register a nil client")
		return
	}
	h.mu.Lock()
	if _, ok := h.users[c.userID]; !ok {
		h.users[c.userID] = make(map[*Client]bool)
	}
	h.users[c.userID][c] = true
	h.mu.Unlock()
	h.log.WithField("user_id", c.userID).Info("Client registered")
}

// Unregister removes the connection from its user channel and every joined
// room, then closes its send channel so the write pump exits. It reports
// whether this was the user's last connection on this instance. The send
// channel close goes through the client's own guard, never a bare close:
// a deliverer can hold a snapshot taken before the unregister.
func (h *Hub) Unregister(c *Client) bool {
	if c == nil {
		return false
	}
	lastOfUser := false
	h.mu.Lock()
	if userClients, ok := h.users[c.userID]; ok {
		if _, exists := userClients[c]; exists {
			delete(userClients, c)
			c.closeSend()
			if len(userClients) == 0 {
				delete(h.users, c.userID)
				lastOfUser = true
			}
		}
	}
	for roomID, roomClients := range h.rooms {
		if _, ok := roomClients[c]; ok {
			delete(roomClients, c)
			if len(roomClients) == 0 {
				delete(h.rooms, roomID)
			}
		}
	}
	h.mu.Unlock()
	h.log.WithField("user_id", c.userID).Info("Client unregistered")
	return lastOfUser
}

// JoinRoom subscribes the connection to a conversation's room. Membership
// checks happen before this is called.
func (h *Hub) JoinRoom(c *Client, conversationID string) {
	h.mu.Lock()
	if _, ok := h.rooms[conversationID]; !ok {
		h.rooms[conversationID] = make(map[*Client]bool)
	}
	h.rooms[conversationID][c] = true
	h.mu.Unlock()
	h.log.WithFields(logrus.Fields{
		"user_id":         c.userID,
		"conversation_id": conversationID,
	}).Debug("Client joined room")
}

// LeaveRoom unsubscribes the connection from a room.
func (h *Hub) LeaveRoom(c *Client, conversationID string) {
	h.mu.Lock()
	if roomClients, ok := h.rooms[conversationID]; ok {
		delete(roomClients, c)
		if len(roomClients) == 0 {
			delete(h.rooms, conversationID)
		}
	}
	h.mu.Unlock()
}

// DeliverToRoom hands the frame to every local connection joined to the
// room. Slow clients are skipped rather than allowed to stall the rest.
func (h *Hub) DeliverToRoom(conversationID string, frame []byte) {
	h.mu.RLock()
	roomClients := h.rooms[conversationID]
	targets := make([]*Client, 0, len(roomClients))
	for c := range roomClients {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		if !c.queue(frame) {
			h.log.WithFields(logrus.Fields{
				"user_id":         c.userID,
				"conversation_id": conversationID,
			}).Warn("Client send channel full or closed, dropping room frame")
		}
	}
}

// DeliverToUser hands the frame to every local connection of one user.
func (h *Hub) DeliverToUser(userID string, frame []byte) {
	h.mu.RLock()
	userClients := h.users[userID]
	targets := make([]*Client, 0, len(userClients))
	for c := range userClients {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		if !c.queue(frame) {
			h.log.WithField("user_id", userID).Warn("Client send channel full or closed, dropping user frame")
		}
	}
}
