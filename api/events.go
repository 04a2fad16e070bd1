package api

import (
	"net/http"

	"prompt-keeper/library"
)

// eventsHello is the first message on the change feed.
const eventsHello = "hello"

type changeMessage struct {
	Type   string          `json:"type"`
	Change *library.Change `json:"change,omitempty"`
}

// handleEvents streams library changes to the client until it disconnects.
func (h *handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	var changes <-chan library.Change
	if h.hub != nil {
		var cancel func()
		changes, cancel = h.hub.Subscribe(64)
		defer cancel()
	}

	if err := conn.WriteJSON(changeMessage{Type: eventsHello}); err != nil {
		return
	}

	// The client never sends anything useful; reading is how we notice it
	// went away.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-gone:
			return
		case <-r.Context().Done():
			return
		case c, ok := <-changes:
			if !ok {
				return
			}
			if err := conn.WriteJSON(changeMessage{Type: "change", Change: &c}); err != nil {
				return
			}
		}
	}
}
