// area/survey.go
package area

import (
	"github.com/wfunc/townserver/models"
	"github.com/wfunc/townserver/player"
)

// SurveyArea tallies responses per question key. It is active whenever it
// has occupants, even before any responses arrive.
type SurveyArea struct {
	Base
	Responses map[string]int
}

func NewSurveyArea(id string, bounds BoundingBox, emitter Emitter) *SurveyArea {
	a := &SurveyArea{
		Base:      NewBase(id, bounds, emitter),
		Responses: make(map[string]int),
	}
	a.Bind(a)
	return a
}

func (a *SurveyArea) Type() string {
	return models.AreaTypeSurvey
}

func (a *SurveyArea) IsActive() bool {
	return len(a.occupants) > 0
}

func (a *SurveyArea) Remove(p *player.Player) error {
	if err := a.removeOccupant(p); err != nil {
		return err
	}
	if len(a.occupants) == 0 {
		a.Responses = make(map[string]int)
		a.emitAreaChanged()
	}
	return nil
}

func (a *SurveyArea) ToModel() models.Interactable {
	responses := make(map[string]int, len(a.Responses))
	for k, v := range a.Responses {
		responses[k] = v
	}
	return models.Interactable{
		Type:      models.AreaTypeSurvey,
		ID:        a.id,
		Occupants: a.OccupantIDs(),
		Responses: responses,
	}
}

func (a *SurveyArea) HandleCommand(cmd models.InteractableCommand, p *player.Player) (interface{}, error) {
	if cmd.Type == models.CommandKickPlayer {
		return a.handleKick(cmd, p)
	}
	return nil, models.NewInvalidParameters(models.MessageUnknownCommand)
}
