package hub

import (
	"encoding/json"
	"time"
)

// Client-to-server frame types.
const (
	FrameJoin     = "join"
	FrameLeave    = "leave"
	FrameTyping   = "typing"
	FrameSend     = "send"
	FrameMarkRead = "markRead"
)

// Gateway error codes carried in system.error frames. Errors are explicit
// typed messages on the same connection, never silent drops.
const (
	CodeNotAMember  = "NOT_A_MEMBER"
	CodeRateLimited = "RATE_LIMITED"
	CodeEmptyText   = "EMPTY_TEXT"
	CodeNotFound    = "NOT_FOUND"
	CodeBadFrame    = "BAD_FRAME"
	CodeInternal    = "INTERNAL"
)

// ClientFrame is the envelope of every message a client sends. Type selects
// the operation; the remaining fields are per-operation.
type ClientFrame struct {
	Type           string `json:"type"`
	ConversationID string `json:"conversationId,omitempty"`
	MessageID      string `json:"messageId,omitempty"`
	Content        string `json:"content,omitempty"`
	TempID         string `json:"tempId,omitempty"`
	IsTyping       bool   `json:"isTyping,omitempty"`
}

// ServerFrame is the envelope of every message the server sends, both
// directly and through the cross-instance relay.
type ServerFrame struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// EncodeServerFrame marshals an event plus payload into wire bytes.
func EncodeServerFrame(event string, payload interface{}) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(ServerFrame{Event: event, Payload: raw})
}

// AckPayload reconciles the sender's optimistic temp id with the persisted
// message.
type AckPayload struct {
	TempID    string    `json:"tempId,omitempty"`
	MessageID string    `json:"messageId"`
	CreatedAt time.Time `json:"createdAt"`
}

// JoinedPayload confirms a room join.
type JoinedPayload struct {
	ConversationID string    `json:"conversationId"`
	ServerTime     time.Time `json:"serverTime"`
}

// TypingPayload is the ephemeral typing indicator; broadcast-only, never
// persisted.
type TypingPayload struct {
	ConversationID string `json:"conversationId"`
	UserID         string `json:"userId"`
	IsTyping       bool   `json:"isTyping"`
}

// ErrorPayload is the body of a system.error frame.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
