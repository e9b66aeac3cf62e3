// Package feed holds the live recognition feed: a bounded, newest-first
// buffer of events plus the read-only projections the dashboard renders.
package feed

import (
	"sync"

	"github.com/saturnino-fabrica-de-software/vigia/internal/domain"
)

// DefaultCapacity bounds the feed for long-running console sessions.
const DefaultCapacity = 100

// Buffer is an ordered, size-bounded store of recognition events, newest
// first. Arrival order on the push channel is the ordering truth; the
// event's own timestamp is never consulted. If the backend ever delivers
// backdated events, "most recent" diverges from wall-clock recency — that
// is a property of the channel, not something the buffer repairs.
type Buffer struct {
	mu       sync.RWMutex
	events   []domain.RecognitionEvent
	capacity int
}

// NewBuffer creates a buffer with the given capacity. Non-positive values
// fall back to DefaultCapacity.
func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{capacity: capacity}
}

// Initialize replaces the buffer contents with the snapshot, truncated to
// capacity. It is called once per session with the result of the initial
// REST pull; any prior contents are discarded, never merged.
func (b *Buffer) Initialize(snapshot []domain.RecognitionEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(snapshot) > b.capacity {
		snapshot = snapshot[:b.capacity]
	}
	b.events = make([]domain.RecognitionEvent, len(snapshot))
	copy(b.events, snapshot)
}

// Ingest prepends one event from the push channel, evicting the oldest
// entries once the buffer is at capacity.
func (b *Buffer) Ingest(event domain.RecognitionEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.events = append(b.events, domain.RecognitionEvent{})
	copy(b.events[1:], b.events)
	b.events[0] = event

	if len(b.events) > b.capacity {
		b.events = b.events[:b.capacity]
	}
}

// Snapshot returns a copy of the current contents, newest first. Callers
// own the returned slice.
func (b *Buffer) Snapshot() []domain.RecognitionEvent {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]domain.RecognitionEvent, len(b.events))
	copy(out, b.events)
	return out
}

// Len reports the current number of buffered events.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.events)
}
