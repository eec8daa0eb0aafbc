package hub

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeServerFrame_RoundTrip(t *testing.T) {
	frame, err := EncodeServerFrame("message.ack", AckPayload{
		TempID:    "tmp-1",
		MessageID: "msg-1",
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	var decoded ServerFrame
	require.NoError(t, json.Unmarshal(frame, &decoded))
	assert.Equal(t, "message.ack", decoded.Event)

	var payload AckPayload
	require.NoError(t, json.Unmarshal(decoded.Payload, &payload))
	assert.Equal(t, "tmp-1", payload.TempID)
	assert.Equal(t, "msg-1", payload.MessageID)
}

func TestHub_DeliverToRoom_OnlyJoinedClients(t *testing.T) {
	h := NewHub()
	inRoom := &Client{userID: "u1", send: make(chan []byte, 4)}
	outside := &Client{userID: "u2", send: make(chan []byte, 4)}
	h.Register(inRoom)
	h.Register(outside)
	h.JoinRoom(inRoom, "conv-1")

	h.DeliverToRoom("conv-1", []byte("frame"))

	assert.Len(t, inRoom.send, 1)
	assert.Empty(t, outside.send)
}

func TestHub_DeliverToUser_AllConnectionsOfUser(t *testing.T) {
	h := NewHub()
	first := &Client{userID: "u1", send: make(chan []byte, 4)}
	second := &Client{userID: "u1", send: make(chan []byte, 4)}
	other := &Client{userID: "u2", send: make(chan []byte, 4)}
	h.Register(first)
	h.Register(second)
	h.Register(other)

	h.DeliverToUser("u1", []byte("frame"))

	assert.Len(t, first.send, 1)
	assert.Len(t, second.send, 1)
	assert.Empty(t, other.send)
}

func TestHub_SlowClientDoesNotBlockRoom(t *testing.T) {
	h := NewHub()
	full := &Client{userID: "u1", send: make(chan []byte)} // no buffer, nobody reading
	healthy := &Client{userID: "u2", send: make(chan []byte, 4)}
	h.Register(full)
	h.Register(healthy)
	h.JoinRoom(full, "conv-1")
	h.JoinRoom(healthy, "conv-1")

	done := make(chan struct{})
	go func() {
		h.DeliverToRoom("conv-1", []byte("frame"))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("DeliverToRoom blocked on a slow client")
	}
	assert.Len(t, healthy.send, 1)
}

func TestHub_UnregisterRemovesFromRooms(t *testing.T) {
	h := NewHub()
	c := &Client{userID: "u1", send: make(chan []byte, 4)}
	h.Register(c)
	h.JoinRoom(c, "conv-1")

	h.Unregister(c)

	h.DeliverToRoom("conv-1", []byte("frame"))
	h.DeliverToUser("u1", []byte("frame"))
	// The send channel is closed on unregister; no frames may have been
	// queued before the close.
	_, open := <-c.send
	assert.False(t, open)
}

func TestHub_UnregisterReportsLastConnectionOfUser(t *testing.T) {
	h := NewHub()
	first := &Client{userID: "u1", send: make(chan []byte, 4)}
	second := &Client{userID: "u1", send: make(chan []byte, 4)}
	h.Register(first)
	h.Register(second)

	assert.False(t, h.Unregister(first), "another connection of the user remains")
	assert.True(t, h.Unregister(second), "the user's last connection left")
	assert.False(t, h.Unregister(second), "repeat unregister is a no-op")
}

func TestHub_DeliverDuringUnregisterDoesNotPanic(t *testing.T) {
	// Deliverers snapshot the room under the read lock and send afterwards,
	// so a concurrent disconnect must never leave them holding a channel
	// that gets closed out from under the send.
	h := NewHub()
	clients := make([]*Client, 0, 200)
	for i := 0; i < 200; i++ {
		c := &Client{userID: fmt.Sprintf("u%d", i), send: make(chan []byte, 1)}
		h.Register(c)
		h.JoinRoom(c, "conv-1")
		clients = append(clients, c)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			h.DeliverToRoom("conv-1", []byte("frame"))
			h.DeliverToUser(clients[i].userID, []byte("frame"))
		}
	}()
	go func() {
		defer wg.Done()
		for _, c := range clients {
			h.Unregister(c)
		}
	}()
	wg.Wait()
}
