// Package watch distributes library changes to live subscribers and turns
// external edits of the JSON data files into reloads.
package watch

import (
	"sync"

	"prompt-keeper/library"
)

// Hub fans changes out to subscribers. Sends never block: a subscriber
// whose buffer is full misses the change.
type Hub struct {
	mu   sync.Mutex
	subs map[chan library.Change]struct{}
}

var _ library.Notifier = (*Hub)(nil)

func NewHub() *Hub {
	return &Hub{subs: make(map[chan library.Change]struct{})}
}

// Subscribe registers a new subscriber with the given buffer size. The
// returned cancel func unregisters it and closes the channel; it is safe to
// call more than once.
func (h *Hub) Subscribe(buf int) (<-chan library.Change, func()) {
	ch := make(chan library.Change, buf)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Notify delivers c to every subscriber.
func (h *Hub) Notify(c library.Change) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- c:
		default:
		}
	}
}

// Len returns the number of subscribers.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
