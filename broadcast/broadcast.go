// broadcast/broadcast.go
package broadcast

import (
	"github.com/wfunc/townserver/session"
)

// Broadcaster fans messages out to sets of connected sockets.
type Broadcaster interface {
	BroadcastToTown(townID string, msgID uint16, data []byte) error
	SendToSession(sessionID string, msgID uint16, data []byte) error
}

// TownBroadcaster delivers to every session joined to a town. Send failures
// are skipped; the read loop notices the dead socket and cleans up.
type TownBroadcaster struct {
	sessionManager *session.Manager
}

func NewTownBroadcaster(sessionManager *session.Manager) *TownBroadcaster {
	return &TownBroadcaster{
		sessionManager: sessionManager,
	}
}

func (b *TownBroadcaster) BroadcastToTown(townID string, msgID uint16, data []byte) error {
	for _, s := range b.sessionManager.GetByTownID(townID) {
		if err := s.Send(msgID, data); err != nil {
			continue
		}
	}
	return nil
}

func (b *TownBroadcaster) SendToSession(sessionID string, msgID uint16, data []byte) error {
	s, exists := b.sessionManager.Get(sessionID)
	if !exists {
		return session.ErrSessionNotFound
	}
	return s.Send(msgID, data)
}
