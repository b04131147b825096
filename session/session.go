// session/session.go
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/wfunc/townserver/network"
)

var ErrSessionNotFound = errors.New("session not found")

// Session is one connected socket. TownID and PlayerID are set once the
// socket has joined a town.
type Session struct {
	ID         string
	Conn       network.Connection
	TownID     string
	PlayerID   string
	CreatedAt  time.Time
	LastActive time.Time
	mutex      sync.RWMutex
}

func NewSession(id string, conn network.Connection) *Session {
	now := time.Now()
	return &Session{
		ID:         id,
		Conn:       conn,
		CreatedAt:  now,
		LastActive: now,
	}
}

func (s *Session) Send(msgID uint16, data []byte) error {
	s.Touch()
	return s.Conn.Send(msgID, data)
}

// SendJSON marshals v and sends it to this socket.
func (s *Session) SendJSON(msgID uint16, v interface{}) error {
	s.Touch()
	return s.Conn.SendJSON(msgID, v)
}

// Touch refreshes the idle-reaping deadline.
func (s *Session) Touch() {
	s.mutex.Lock()
	s.LastActive = time.Now()
	s.mutex.Unlock()
}

// IdleSince reports how long the session has been quiet.
func (s *Session) IdleSince(now time.Time) time.Duration {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return now.Sub(s.LastActive)
}

func (s *Session) GetID() string {
	return s.ID
}

func (s *Session) Close() error {
	return s.Conn.Close()
}

// Manager tracks all live sessions on this server.
type Manager struct {
	sessions map[string]*Session
	mutex    sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
	}
}

func (m *Manager) Add(session *Session) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.sessions[session.ID] = session
}

func (m *Manager) Remove(sessionID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.sessions, sessionID)
}

func (m *Manager) Get(sessionID string) (*Session, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	session, exists := m.sessions[sessionID]
	return session, exists
}

// GetByTownID returns every session joined to the given town.
func (m *Manager) GetByTownID(townID string) []*Session {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	var result []*Session
	for _, session := range m.sessions {
		if session.TownID == townID {
			result = append(result, session)
		}
	}
	return result
}

// GetIdle returns sessions that have been quiet for at least timeout.
func (m *Manager) GetIdle(timeout time.Duration) []*Session {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	now := time.Now()
	var result []*Session
	for _, session := range m.sessions {
		if session.IdleSince(now) >= timeout {
			result = append(result, session)
		}
	}
	return result
}
