package ws

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewHub(t *testing.T) {
	hub := NewHub()

	assert.NotNil(t, hub)
	assert.NotNil(t, hub.clients)
	assert.NotNil(t, hub.broadcast)
	assert.NotNil(t, hub.register)
	assert.NotNil(t, hub.unregister)
}

func TestHub_AddAndRemoveClient(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	client := &Client{
		hub:  hub,
		send: make(chan []byte, 1),
	}

	hub.register <- client
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, 1, hub.ConnectedClients())

	hub.unregister <- client
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, 0, hub.ConnectedClients())
}

func TestHub_Broadcast(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	client := &Client{
		hub:  hub,
		send: make(chan []byte, 10),
	}

	hub.register <- client
	time.Sleep(50 * time.Millisecond)

	hub.Broadcast(EventRecognition, map[string]string{"name": "alice"})

	select {
	case msg := <-client.send:
		var event Event
		err := json.Unmarshal(msg, &event)
		assert.NoError(t, err)
		assert.Equal(t, EventRecognition, event.Type)
	case <-time.After(1 * time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func TestHub_BroadcastReachesAllClients(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	first := &Client{hub: hub, send: make(chan []byte, 10)}
	second := &Client{hub: hub, send: make(chan []byte, 10)}

	hub.register <- first
	hub.register <- second
	time.Sleep(50 * time.Millisecond)

	hub.Broadcast(EventUsersUpdated, nil)
	time.Sleep(50 * time.Millisecond)

	assert.Len(t, first.send, 1)
	assert.Len(t, second.send, 1)
}

func TestHub_CancelClosesClients(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	client := &Client{hub: hub, send: make(chan []byte, 1)}
	hub.register <- client
	time.Sleep(50 * time.Millisecond)

	cancel()
	time.Sleep(50 * time.Millisecond)

	_, open := <-client.send
	assert.False(t, open, "send channel closed on shutdown")
	assert.Equal(t, 0, hub.ConnectedClients())
}
