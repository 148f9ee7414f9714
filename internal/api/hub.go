package api

import (
	"sync"

	"github.com/bryanchriswhite/FocusVibrance/internal/engine"
)

var _ engine.Observer = (*Hub)(nil)

// Hub keeps the latest engine snapshot and fans it out to subscribers
type Hub struct {
	mu        sync.Mutex
	latest    *engine.Snapshot
	listeners []chan engine.Snapshot
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{
		listeners: make([]chan engine.Snapshot, 0),
	}
}

// Publish records s and notifies listeners. It never blocks the engine.
func (h *Hub) Publish(s engine.Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.latest = &s
	for _, listener := range h.listeners {
		select {
		case listener <- s:
		default:
			// Skip if channel is full
		}
	}
}

// Latest returns the most recent snapshot, if any
func (h *Hub) Latest() (engine.Snapshot, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.latest == nil {
		return engine.Snapshot{}, false
	}
	return *h.latest, true
}

// Subscribe adds a listener for snapshots
func (h *Hub) Subscribe() chan engine.Snapshot {
	ch := make(chan engine.Snapshot, 10)
	h.mu.Lock()
	h.listeners = append(h.listeners, ch)
	h.mu.Unlock()
	return ch
}

// Unsubscribe removes and closes a listener. Unknown channels are ignored.
func (h *Hub) Unsubscribe(ch chan engine.Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for i, listener := range h.listeners {
		if listener == ch {
			h.listeners = append(h.listeners[:i], h.listeners[i+1:]...)
			close(ch)
			break
		}
	}
}
