// Package push fans messages from the backend's push channel out to the
// console components. Delivery is serialized on a single run loop so
// handlers never interleave with each other.
package push

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
)

// MessageType identifies a push-channel message class. Each component
// subscribes to a disjoint set of types.
type MessageType string

const (
	MessageFaceEvent            MessageType = "face_event"
	MessageRegistrationStatus   MessageType = "registration_status"
	MessageRegistrationFeedback MessageType = "registration_feedback"
)

// Message is one decoded push-channel envelope. Data stays raw; each
// subscriber decodes the payload shape it owns.
type Message struct {
	Type MessageType
	Data json.RawMessage
}

// Handler consumes one message. Handlers run on the dispatcher loop and
// must not block.
type Handler func(Message)

// Subscription is the handle returned by Subscribe. Releasing it through
// Unsubscribe is the subscriber's teardown obligation.
type Subscription struct {
	id          uuid.UUID
	messageType MessageType
}

type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[MessageType]map[uuid.UUID]Handler
	queue    chan Message
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		handlers: make(map[MessageType]map[uuid.UUID]Handler),
		queue:    make(chan Message, 256),
	}
}

// Run delivers queued messages one at a time until the context is
// canceled.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-d.queue:
			d.deliver(msg)
		}
	}
}

// Subscribe registers a handler for one message type and returns its
// handle.
func (d *Dispatcher) Subscribe(t MessageType, h Handler) Subscription {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.handlers[t] == nil {
		d.handlers[t] = make(map[uuid.UUID]Handler)
	}
	sub := Subscription{id: uuid.New(), messageType: t}
	d.handlers[t][sub.id] = h
	return sub
}

// Unsubscribe releases a handle. Releasing an already-released handle is a
// no-op, so teardown paths can be unconditional.
func (d *Dispatcher) Unsubscribe(sub Subscription) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if handlers, ok := d.handlers[sub.messageType]; ok {
		delete(handlers, sub.id)
		if len(handlers) == 0 {
			delete(d.handlers, sub.messageType)
		}
	}
}

// Publish enqueues a message for delivery. Messages nobody subscribes to
// are dropped, which keeps unknown upstream types a forward-compatible
// no-op. The queue bound sheds load instead of blocking the channel
// reader.
func (d *Dispatcher) Publish(msg Message) {
	select {
	case d.queue <- msg:
	default:
	}
}

// SubscriberCount reports the live handler count for a type.
func (d *Dispatcher) SubscriberCount(t MessageType) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.handlers[t])
}

func (d *Dispatcher) deliver(msg Message) {
	d.mu.RLock()
	handlers := make([]Handler, 0, len(d.handlers[msg.Type]))
	for _, h := range d.handlers[msg.Type] {
		handlers = append(handlers, h)
	}
	d.mu.RUnlock()

	for _, h := range handlers {
		h(msg)
	}
}
