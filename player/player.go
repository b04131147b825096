// player/player.go
package player

import (
	"github.com/google/uuid"

	"github.com/wfunc/townserver/models"
)

// Player is one avatar inside a town, owned by the town for the lifetime of
// its socket session.
type Player struct {
	ID           string
	UserName     string
	SessionToken string
	Location     models.PlayerLocation
}

// New creates a player spawned at the origin facing front, outside any area.
func New(userName string) *Player {
	return &Player{
		ID:           uuid.New().String(),
		UserName:     userName,
		SessionToken: uuid.New().String(),
		Location: models.PlayerLocation{
			X:        0,
			Y:        0,
			Rotation: "front",
			Moving:   false,
		},
	}
}

// ToModel produces the wire snapshot of this player.
func (p *Player) ToModel() models.Player {
	return models.Player{
		ID:       p.ID,
		UserName: p.UserName,
		Location: p.Location,
	}
}
