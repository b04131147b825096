// area/viewing.go
package area

import (
	"github.com/wfunc/townserver/models"
	"github.com/wfunc/townserver/player"
)

// ViewingArea tracks a shared video and its playback position. Playback
// state is client-authoritative: any occupant's player may push a direct
// model overwrite through the town, which lands in UpdateModel.
type ViewingArea struct {
	Base
	Video          string
	IsPlaying      bool
	ElapsedTimeSec float64
}

func NewViewingArea(id string, bounds BoundingBox, emitter Emitter) *ViewingArea {
	a := &ViewingArea{
		Base: NewBase(id, bounds, emitter),
	}
	a.Bind(a)
	return a
}

func (a *ViewingArea) Type() string {
	return models.AreaTypeViewing
}

func (a *ViewingArea) IsActive() bool {
	return a.Video != ""
}

// UpdateModel overwrites the playback state from a client push. The caller
// broadcasts the update; this only mutates.
func (a *ViewingArea) UpdateModel(m models.Interactable) {
	a.Video = m.Video
	a.IsPlaying = m.IsPlaying
	a.ElapsedTimeSec = m.ElapsedTimeSec
}

// Remove drops the player and, when the area empties, stops and forgets the
// video, broadcasting the reset model once.
func (a *ViewingArea) Remove(p *player.Player) error {
	if err := a.removeOccupant(p); err != nil {
		return err
	}
	if len(a.occupants) == 0 {
		a.Video = ""
		a.IsPlaying = false
		a.ElapsedTimeSec = 0
		a.emitAreaChanged()
	}
	return nil
}

func (a *ViewingArea) ToModel() models.Interactable {
	return models.Interactable{
		Type:           models.AreaTypeViewing,
		ID:             a.id,
		Occupants:      a.OccupantIDs(),
		Video:          a.Video,
		IsPlaying:      a.IsPlaying,
		ElapsedTimeSec: a.ElapsedTimeSec,
	}
}

func (a *ViewingArea) HandleCommand(cmd models.InteractableCommand, p *player.Player) (interface{}, error) {
	if cmd.Type == models.CommandKickPlayer {
		return a.handleKick(cmd, p)
	}
	return nil, models.NewInvalidParameters(models.MessageUnknownCommand)
}
