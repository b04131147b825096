// area/voting.go
package area

import (
	"github.com/wfunc/townserver/models"
	"github.com/wfunc/townserver/player"
)

// VotingArea is active while a poll label is set. Beyond join/leave its only
// player-invoked action is kicking another occupant.
type VotingArea struct {
	Base
	Poll string
}

func NewVotingArea(id string, bounds BoundingBox, emitter Emitter) *VotingArea {
	a := &VotingArea{
		Base: NewBase(id, bounds, emitter),
	}
	a.Bind(a)
	return a
}

func (a *VotingArea) Type() string {
	return models.AreaTypeVoting
}

func (a *VotingArea) IsActive() bool {
	return a.Poll != ""
}

func (a *VotingArea) Remove(p *player.Player) error {
	if err := a.removeOccupant(p); err != nil {
		return err
	}
	if len(a.occupants) == 0 {
		a.Poll = ""
		a.emitAreaChanged()
	}
	return nil
}

func (a *VotingArea) ToModel() models.Interactable {
	return models.Interactable{
		Type:      models.AreaTypeVoting,
		ID:        a.id,
		Occupants: a.OccupantIDs(),
		Poll:      a.Poll,
	}
}

func (a *VotingArea) HandleCommand(cmd models.InteractableCommand, p *player.Player) (interface{}, error) {
	if cmd.Type == models.CommandKickPlayer {
		return a.handleKick(cmd, p)
	}
	return nil, models.NewInvalidParameters(models.MessageUnknownCommand)
}
