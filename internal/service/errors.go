package service

import "errors"

// Business errors surfaced to the HTTP layer and the realtime gateway. The
// gateway maps them to typed system.error frames; the HTTP layer maps them
// to status codes. Conflict-class errors never appear here: the resolver
// absorbs creation races internally.
var (
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrNotAMember           = errors.New("not an active member of the conversation")
	ErrRateLimited          = errors.New("rate limit exceeded")
	ErrSelfConversation     = errors.New("cannot open a conversation with yourself")
	ErrEmptyContent         = errors.New("message content is empty")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrMessageNotFound      = errors.New("message not found")
	ErrInvalidCursor        = errors.New("invalid pagination cursor")
	ErrInternalServer       = errors.New("internal server error")
)
