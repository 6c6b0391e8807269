package realtime

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestClient(r *Registry, userID primitive.ObjectID) *Client {
	c := &Client{
		registry: r,
		send:     make(chan []byte, 256),
		userID:   userID,
	}
	r.register <- c
	return c
}

func waitOnline(t *testing.T, r *Registry, userID primitive.ObjectID) {
	t.Helper()
	deadline := time.After(time.Second)
	for !r.IsOnline(userID) {
		select {
		case <-deadline:
			t.Fatal("client never registered")
		case <-time.After(time.Millisecond):
		}
	}
}

func TestPushReachesEveryConnectionOfUser(t *testing.T) {
	registry := NewRegistry()
	go registry.Run()

	userID := primitive.NewObjectID()
	first := newTestClient(registry, userID)
	second := newTestClient(registry, userID)
	waitOnline(t, registry, userID)
	require.Equal(t, 2, registry.ConnectionsCount())

	registry.Push(userID, Event{Type: "notification", Data: "bonjour"})

	for _, c := range []*Client{first, second} {
		select {
		case raw := <-c.send:
			var event Event
			require.NoError(t, json.Unmarshal(raw, &event))
			assert.Equal(t, "notification", event.Type)
			assert.Equal(t, "bonjour", event.Data)
		case <-time.After(time.Second):
			t.Fatal("push never arrived")
		}
	}
}

func TestPushToOfflineUserIsNoOp(t *testing.T) {
	registry := NewRegistry()
	go registry.Run()

	// Must not block or panic.
	registry.Push(primitive.NewObjectID(), Event{Type: "notification"})
}

func TestUnregisterRemovesUser(t *testing.T) {
	registry := NewRegistry()
	go registry.Run()

	userID := primitive.NewObjectID()
	client := newTestClient(registry, userID)
	waitOnline(t, registry, userID)

	registry.unregister <- client

	deadline := time.After(time.Second)
	for registry.IsOnline(userID) {
		select {
		case <-deadline:
			t.Fatal("client never unregistered")
		case <-time.After(time.Millisecond):
		}
	}
	assert.Equal(t, 0, registry.ConnectionsCount())
}
