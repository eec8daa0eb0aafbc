package repository

import (
	"context"
	"time"
)

// StateRepository is the shared low-latency TTL store behind rate-limit
// counters and presence markers. All access goes through atomic
// increment/expire primitives of the backing store; no read-modify-write.
type StateRepository interface {
	// IncrementRate atomically increments the counter for key and returns
	// the new count. The first increment in a window sets the TTL;
	// subsequent increments within the window do not reset it.
	IncrementRate(ctx context.Context, key string, window time.Duration) (int64, error)

	// TouchPresence refreshes the user's TTL'd presence marker. Absence of
	// a fresh marker means offline; expiry is passive.
	TouchPresence(ctx context.Context, userID string, ttl time.Duration) error

	// IsOnline reports whether a fresh presence marker exists.
	IsOnline(ctx context.Context, userID string) (bool, error)

	// ClearPresence drops the marker eagerly (e.g. on clean disconnect).
	ClearPresence(ctx context.Context, userID string) error
}
