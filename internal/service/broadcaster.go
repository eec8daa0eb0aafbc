package service

import "context"

// RoomBroadcaster is the cluster-wide fan-out primitive. Client connections
// are pinned to one gateway instance, but room membership spans the cluster,
// so implementations must relay through a shared pub/sub backend rather than
// in-process memory. A single-instance-only implementation would silently
// drop deliveries for users connected elsewhere.
type RoomBroadcaster interface {
	// ToRoom delivers a frame to every live connection joined to the
	// conversation's room, on every gateway instance.
	ToRoom(ctx context.Context, conversationID, event string, payload interface{}) error

	// ToUser delivers a frame to every live connection of one user,
	// wherever it is pinned.
	ToUser(ctx context.Context, userID, event string, payload interface{}) error
}
