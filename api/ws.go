package api

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"prompt-keeper/library"
	"prompt-keeper/session"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Live-edit message types. Outgoing messages also use the session event
// types ("saved", "error", "closed").
const (
	msgPrompt = "prompt" // server: current stored prompt, sent on connect
	msgDraft  = "draft"  // client: full field set of the edited prompt
	msgFlush  = "flush"  // client: save the pending draft now
)

type wsMessage struct {
	Type   string          `json:"type"`
	Prompt *library.Prompt `json:"prompt,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// handleWS attaches the connection to the prompt's live-edit session. Drafts
// are autosaved after a pause; the pending draft is saved when the owning
// client disconnects.
func (h *handler) handleWS(w http.ResponseWriter, r *http.Request) {
	p, ok := h.loadPrompt(w, r)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	// gorilla/websocket forbids concurrent writes.
	var writeMu sync.Mutex
	writeMsg := func(msg wsMessage) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return conn.WriteJSON(msg)
	}

	s := h.sessions.Open(p.ID)
	outChan := make(chan session.Event, 16)
	kick := s.SetClient(outChan) // kicks any prior client
	defer h.sessions.Release(s, outChan)

	if err := writeMsg(wsMessage{Type: msgPrompt, Prompt: &p}); err != nil {
		return
	}

	// Pump session events to the client until Release closes outChan.
	go func() {
		for ev := range outChan {
			if err := writeMsg(wsMessage{Type: ev.Type, Prompt: ev.Prompt, Error: ev.Error}); err != nil {
				return
			}
		}
	}()

	// Close the connection when the session ends or this client is
	// displaced, so ReadJSON below unblocks.
	connDone := make(chan struct{})
	go func() {
		select {
		case <-s.Done():
			writeMsg(wsMessage{Type: session.EventClosed}) //nolint:errcheck
			conn.Close()
		case <-kick:
			conn.Close()
		case <-connDone:
		}
	}()
	defer close(connDone)

	for {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		switch msg.Type {
		case msgDraft:
			if msg.Prompt != nil {
				s.Submit(*msg.Prompt)
			}
		case msgFlush:
			s.Flush()
		}
	}
}
