package assistant

import (
	"sync"
	"time"

	"shipmate/internal/llamastack"

	"github.com/google/uuid"
)

// Session holds the conversation history for one chat session.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu         sync.Mutex
	history    []llamastack.ChatMessage
	maxHistory int
	lastActive time.Time
}

// Append adds a message and trims the history to the configured bound.
func (s *Session) Append(msg llamastack.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = append(s.history, msg)
	if s.maxHistory > 0 && len(s.history) > s.maxHistory {
		s.history = s.history[len(s.history)-s.maxHistory:]
	}
	// Trimming must not leave a tool result without the assistant turn
	// that requested it.
	for len(s.history) > 0 && s.history[0].Role == "tool" {
		s.history = s.history[1:]
	}

	s.lastActive = time.Now()
}

// History returns a copy of the session's messages.
func (s *Session) History() []llamastack.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]llamastack.ChatMessage, len(s.history))
	copy(out, s.history)
	return out
}

// Len returns the number of messages in the session.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.history)
}

// LastActive returns the time of the most recent append.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// SessionStore keeps chat sessions in memory, keyed by ID.
type SessionStore struct {
	mu         sync.RWMutex
	sessions   map[string]*Session
	maxHistory int
}

// NewSessionStore creates a store whose sessions keep at most maxHistory
// messages each.
func NewSessionStore(maxHistory int) *SessionStore {
	return &SessionStore{
		sessions:   make(map[string]*Session),
		maxHistory: maxHistory,
	}
}

// GetOrCreate returns the session with the given ID, creating it if
// needed. An empty ID creates a fresh session with a generated UUID.
func (st *SessionStore) GetOrCreate(id string) *Session {
	if id == "" {
		id = uuid.NewString()
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	if session, ok := st.sessions[id]; ok {
		return session
	}

	now := time.Now()
	session := &Session{
		ID:         id,
		CreatedAt:  now,
		lastActive: now,
		maxHistory: st.maxHistory,
	}
	st.sessions[id] = session
	return session
}

// Get returns an existing session.
func (st *SessionStore) Get(id string) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	session, ok := st.sessions[id]
	return session, ok
}

// Reset removes a session and its history.
func (st *SessionStore) Reset(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, id)
}

// Count returns the number of live sessions.
func (st *SessionStore) Count() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// PruneIdle removes sessions that have been inactive longer than maxIdle
// and returns how many were removed.
func (st *SessionStore) PruneIdle(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)

	st.mu.Lock()
	defer st.mu.Unlock()

	removed := 0
	for id, session := range st.sessions {
		if session.LastActive().Before(cutoff) {
			delete(st.sessions, id)
			removed++
		}
	}
	return removed
}
