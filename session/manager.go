package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"prompt-keeper/logger"
)

var ErrNotFound = errors.New("session not found")

// DefaultDelay is the autosave pause used when none is configured.
const DefaultDelay = 800 * time.Millisecond

// Manager keeps at most one live-edit session per prompt.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session // by prompt id
	save     SaveFunc
	delay    time.Duration
	log      *logger.Logger
}

func NewManager(save SaveFunc, delay time.Duration, log *logger.Logger) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		save:     save,
		delay:    delay,
		log:      log,
	}
}

// Open returns the session for promptID, creating it if needed.
func (m *Manager) Open(promptID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[promptID]; ok {
		return s
	}
	s := &Session{
		ID:         uuid.New().String(),
		PromptID:   promptID,
		CreatedAt:  time.Now(),
		lastActive: time.Now(),
		save:       m.save,
		debounce:   NewDebouncer(m.delay),
		log:        m.log.With("prompt_id", promptID),
		onGone:     m.remove,
		done:       make(chan struct{}),
	}
	m.sessions[promptID] = s
	m.log.Debug("edit session opened", "prompt_id", promptID)
	return s
}

func (m *Manager) Get(promptID string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[promptID]
	return s, ok
}

func (m *Manager) List() []Info {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := make([]Info, 0, len(m.sessions))
	for _, s := range m.sessions {
		list = append(list, s.Info())
	}
	return list
}

// Release detaches ch from s. When ch was the owning client the pending
// draft is saved and the session is dropped.
func (m *Manager) Release(s *Session, ch chan Event) {
	if !s.ClearClient(ch) {
		return
	}
	s.Flush()

	m.mu.Lock()
	if cur, ok := m.sessions[s.PromptID]; ok && cur == s {
		delete(m.sessions, s.PromptID)
	}
	m.mu.Unlock()
	s.close()
}

// Close ends the session for promptID without saving its pending draft.
// Used when the prompt itself is deleted.
func (m *Manager) Close(promptID string) error {
	m.mu.Lock()
	s, ok := m.sessions[promptID]
	if ok {
		delete(m.sessions, promptID)
	}
	m.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	s.close()
	return nil
}

// Shutdown saves every pending draft and ends all sessions.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for id, s := range m.sessions {
		sessions = append(sessions, s)
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	for _, s := range sessions {
		s.Flush()
		s.close()
	}
}

func (m *Manager) remove(promptID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, promptID)
}
