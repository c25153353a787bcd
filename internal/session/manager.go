package session

import "sync"

// Manager tracks each user's live session. Access to the map is guarded;
// the sessions themselves stay single-writer, which the service layer
// enforces with a per-user lock.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates an empty Manager.
func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

// Get returns the user's session, if any.
func (m *Manager) Get(userID string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[userID]
	return s, ok
}

// GetOrCreate returns the user's session, creating a NotStarted one with
// the given game type on first access.
func (m *Manager) GetOrCreate(userID string, gameType GameType) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[userID]; ok {
		return s
	}
	s := New(gameType)
	m.sessions[userID] = s
	return s
}

// Put replaces the user's session.
func (m *Manager) Put(userID string, s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[userID] = s
}

// Delete removes the user's session.
func (m *Manager) Delete(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
