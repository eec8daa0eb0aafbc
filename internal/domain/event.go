package domain

import (
	"encoding/json"
	"time"
)

// EventSourceCore marks events published by the core service. It is the only
// producer on the shared channel today.
const EventSourceCore = "core"

// Event types carried on the shared channel. Type-based routing happens in
// the consumer, not the transport, so all types share one channel.
const (
	EventFollowCreated    = "social.follow.created"
	EventFollowMutual     = "social.follow.mutual"
	EventClanCreated      = "clan.created"
	EventClanMemberJoined = "clan.member.joined"
	EventClanMemberLeft   = "clan.member.left"
	EventClanMemberBanned = "clan.member.banned"
)

// Event is the immutable envelope around every published domain fact.
// Consumers must treat redelivery of the same ID as a no-op for side effects
// that are not naturally idempotent.
type Event struct {
	ID     string          `json:"id"`
	Type   string          `json:"type"`
	TS     time.Time       `json:"ts"`
	Source string          `json:"source"`
	Data   json.RawMessage `json:"data"`
}

// DecodeData unmarshals the typed payload into v.
func (e *Event) DecodeData(v interface{}) error {
	return json.Unmarshal(e.Data, v)
}

// FollowCreatedData is the payload of social.follow.created.
type FollowCreatedData struct {
	FollowerID string `json:"followerId"`
	FolloweeID string `json:"followeeId"`
}

// FollowMutualData is the payload of social.follow.mutual.
type FollowMutualData struct {
	UserAID string `json:"userAId"`
	UserBID string `json:"userBId"`
	By      string `json:"by,omitempty"`
}

// ClanCreatedData is the payload of clan.created.
type ClanCreatedData struct {
	ClanID   string `json:"clanId"`
	LeaderID string `json:"leaderId"`
}

// ClanMemberData is the shared payload of clan.member.joined / left / banned.
type ClanMemberData struct {
	ClanID string `json:"clanId"`
	UserID string `json:"userId"`
	By     string `json:"by,omitempty"`
}
