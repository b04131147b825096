// area/conversation.go
package area

import (
	"github.com/wfunc/townserver/models"
	"github.com/wfunc/townserver/player"
)

// ConversationArea is active while a discussion topic is set. The topic is
// claimed through the town and cleared when the last occupant leaves.
type ConversationArea struct {
	Base
	Topic string
}

func NewConversationArea(id string, bounds BoundingBox, emitter Emitter) *ConversationArea {
	a := &ConversationArea{
		Base: NewBase(id, bounds, emitter),
	}
	a.Bind(a)
	return a
}

func (a *ConversationArea) Type() string {
	return models.AreaTypeConversation
}

func (a *ConversationArea) IsActive() bool {
	return a.Topic != ""
}

// Remove drops the player and, when the area empties, clears the topic and
// broadcasts the reset model once.
func (a *ConversationArea) Remove(p *player.Player) error {
	if err := a.removeOccupant(p); err != nil {
		return err
	}
	if len(a.occupants) == 0 {
		a.Topic = ""
		a.emitAreaChanged()
	}
	return nil
}

func (a *ConversationArea) ToModel() models.Interactable {
	return models.Interactable{
		Type:      models.AreaTypeConversation,
		ID:        a.id,
		Occupants: a.OccupantIDs(),
		Topic:     a.Topic,
	}
}

func (a *ConversationArea) HandleCommand(cmd models.InteractableCommand, p *player.Player) (interface{}, error) {
	if cmd.Type == models.CommandKickPlayer {
		return a.handleKick(cmd, p)
	}
	return nil, models.NewInvalidParameters(models.MessageUnknownCommand)
}
