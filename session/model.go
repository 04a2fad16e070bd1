package session

import (
	"context"
	"sync"
	"time"

	"prompt-keeper/library"
	"prompt-keeper/logger"
)

// Event types sent to the connected client.
const (
	EventSaved  = "saved"
	EventError  = "error"
	EventClosed = "closed"
)

// Event is a message from a session to its client.
type Event struct {
	Type   string          `json:"type"`
	Prompt *library.Prompt `json:"prompt,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// SaveFunc persists a draft. A nil prompt with no error means the prompt no
// longer exists.
type SaveFunc func(ctx context.Context, p library.Prompt) (*library.Prompt, error)

// Info is a point-in-time view of a session.
type Info struct {
	ID         string    `json:"id"`
	PromptID   string    `json:"promptId"`
	CreatedAt  time.Time `json:"createdAt"`
	LastActive time.Time `json:"lastActive"`
	Connected  bool      `json:"connected"`
	Pending    bool      `json:"pending"`
}

// Session is a live edit of one prompt. Drafts submitted by the client are
// saved after a pause in typing; only the latest draft is written.
type Session struct {
	ID        string
	PromptID  string
	CreatedAt time.Time

	save     SaveFunc
	debounce *Debouncer
	log      *logger.Logger
	onGone   func(promptID string)

	outMu      sync.Mutex
	outChan    chan Event
	kickChan   chan struct{}
	connected  bool
	lastActive time.Time

	saveMu   sync.Mutex
	seq      uint64
	savedSeq uint64

	done      chan struct{}
	closeOnce sync.Once
}

// Submit schedules draft to be saved once the client stops editing. The
// draft's id is always the session's prompt id.
func (s *Session) Submit(draft library.Prompt) {
	draft.ID = s.PromptID

	s.saveMu.Lock()
	s.seq++
	seq := s.seq
	s.saveMu.Unlock()

	s.touch()
	s.debounce.Schedule(func() { s.persist(seq, draft) })
}

// Flush saves the pending draft immediately, if any.
func (s *Session) Flush() bool {
	return s.debounce.Flush()
}

func (s *Session) persist(seq uint64, draft library.Prompt) {
	s.saveMu.Lock()
	// Closed sessions never write; a newer draft may already be stored.
	if s.isDone() || seq <= s.savedSeq {
		s.saveMu.Unlock()
		return
	}

	saved, err := s.save(context.Background(), draft)
	if err != nil {
		s.saveMu.Unlock()
		s.log.Error("autosave failed", "error", err)
		s.send(Event{Type: EventError, Error: err.Error()})
		return
	}
	s.savedSeq = seq
	if saved == nil {
		s.finish()
		s.saveMu.Unlock()
		s.log.Info("prompt gone, closing edit session")
		if s.onGone != nil {
			s.onGone(s.PromptID)
		}
		return
	}
	s.saveMu.Unlock()
	s.send(Event{Type: EventSaved, Prompt: saved})
}

func (s *Session) send(ev Event) {
	s.outMu.Lock()
	defer s.outMu.Unlock()
	if s.outChan == nil {
		return
	}
	select {
	case s.outChan <- ev:
	default:
	}
}

func (s *Session) touch() {
	s.outMu.Lock()
	s.lastActive = time.Now()
	s.outMu.Unlock()
}

// SetClient makes ch the editor of this prompt. The previous editor's kick
// channel is closed so its connection can be dropped. The returned channel
// is closed when ch is displaced in turn.
func (s *Session) SetClient(ch chan Event) <-chan struct{} {
	s.outMu.Lock()
	defer s.outMu.Unlock()
	if s.kickChan != nil {
		close(s.kickChan)
	}
	kick := make(chan struct{})
	s.kickChan = kick
	s.outChan = ch
	s.connected = true
	s.lastActive = time.Now()
	return kick
}

// ClearClient detaches ch and closes it. Session state changes only if ch
// is still the owner; it reports whether it was.
func (s *Session) ClearClient(ch chan Event) bool {
	s.outMu.Lock()
	owned := s.outChan == ch
	if owned {
		s.outChan = nil
		s.connected = false
		s.kickChan = nil
	}
	s.outMu.Unlock()
	close(ch)
	return owned
}

// Done returns a channel that is closed when the session ends.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Info returns a snapshot of the session state.
func (s *Session) Info() Info {
	s.outMu.Lock()
	defer s.outMu.Unlock()
	return Info{
		ID:         s.ID,
		PromptID:   s.PromptID,
		CreatedAt:  s.CreatedAt,
		LastActive: s.lastActive,
		Connected:  s.connected,
		Pending:    s.debounce.Pending(),
	}
}

// close ends the session. It waits for a save already in progress, so no
// write for this session reaches the store after close returns.
func (s *Session) close() {
	s.debounce.Stop()
	s.saveMu.Lock()
	s.finish()
	s.saveMu.Unlock()
}

// finish must be called with s.saveMu held.
func (s *Session) finish() {
	s.closeOnce.Do(func() {
		s.debounce.Stop()
		close(s.done)
	})
}

func (s *Session) isDone() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}
