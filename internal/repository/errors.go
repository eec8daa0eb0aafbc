package repository

import "errors"

// Generic repository errors shared by all implementations.
var (
	// ErrNotFound means the requested record does not exist.
	ErrNotFound = errors.New("repository: record not found")
	// ErrDuplicateEntry means an insert or update violated a unique
	// constraint. The conversation resolver relies on this to detect a lost
	// creation race.
	ErrDuplicateEntry = errors.New("repository: duplicate entry")
)

// Resource-specific aliases, kept for readable call sites.
var (
	ErrConversationNotFound = ErrNotFound
	ErrMemberNotFound       = ErrNotFound
	ErrMessageNotFound      = ErrNotFound
	ErrNotificationNotFound = ErrNotFound
)
