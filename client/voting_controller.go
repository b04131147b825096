// client/voting_controller.go
package client

import (
	"context"

	"github.com/wfunc/townserver/models"
)

// VotingAreaController mirrors a voting area and notifies listeners when its
// poll label changes.
type VotingAreaController struct {
	baseController
	town          *TownController
	poll          string
	pollListeners []func(string)
}

func NewVotingAreaController(id string, town *TownController) *VotingAreaController {
	return &VotingAreaController{
		baseController: newBaseController(id),
		town:           town,
	}
}

func (c *VotingAreaController) Type() string {
	return models.AreaTypeVoting
}

func (c *VotingAreaController) Poll() string {
	return c.poll
}

func (c *VotingAreaController) IsActive() bool {
	return c.poll != "" && len(c.occupants) > 0
}

func (c *VotingAreaController) OnPollChanged(fn func(string)) {
	c.pollListeners = append(c.pollListeners, fn)
}

func (c *VotingAreaController) UpdateFrom(m models.Interactable, occupants []*PlayerController) {
	c.updateOccupants(occupants)
	if m.Poll != c.poll {
		c.poll = m.Poll
		for _, fn := range c.pollListeners {
			fn(c.poll)
		}
	}
}

// RemovePlayer asks the server to kick the given player out of this area.
func (c *VotingAreaController) RemovePlayer(ctx context.Context, playerID string) error {
	_, err := c.town.SendInteractableCommand(ctx, models.InteractableCommand{
		InteractableID: c.id,
		Type:           models.CommandKickPlayer,
		PlayerID:       playerID,
	})
	return err
}
