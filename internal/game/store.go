// internal/game/store.go
package game

import "sync"

// SessionStore maps room ids to their live sessions.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewSessionStore returns an empty store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*Session)}
}

// Add registers a session under its room id.
func (st *SessionStore) Add(s *Session) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[s.Room.ID] = s
}

// Get fetches a session by room id.
func (st *SessionStore) Get(roomID string) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[roomID]
	return s, ok
}

// Delete closes and removes a session.
func (st *SessionStore) Delete(roomID string) {
	st.mu.Lock()
	s, ok := st.sessions[roomID]
	delete(st.sessions, roomID)
	st.mu.Unlock()
	if ok {
		s.Close()
	}
}
