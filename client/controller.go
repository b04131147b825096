// client/controller.go
package client

import (
	"errors"

	"github.com/wfunc/townserver/models"
)

var (
	ErrPlayerNotInGame   = errors.New("player not in game")
	ErrNoGameInProgress  = errors.New("no game in progress")
	ErrCommandFailed     = errors.New("command failed")
	ErrNotConnected      = errors.New("not connected to a town")
	ErrResponseCancelled = errors.New("cancelled waiting for command response")
)

// PlayerController mirrors one player known to the town.
type PlayerController struct {
	ID       string
	UserName string
	Location models.PlayerLocation
}

// AreaController is the client-side mirror of one server area. UpdateFrom
// absorbs a pushed model and fires change listeners only for derived values
// that actually changed.
type AreaController interface {
	ID() string
	Type() string
	Occupants() []*PlayerController
	IsActive() bool
	UpdateFrom(m models.Interactable, occupants []*PlayerController)
}

// baseController carries the id and occupant mirror shared by every area
// controller. Listener lists are plain slices dispatched synchronously in
// registration order.
type baseController struct {
	id                 string
	occupants          []*PlayerController
	occupantsListeners []func([]*PlayerController)
}

func newBaseController(id string) baseController {
	return baseController{id: id}
}

func (c *baseController) ID() string {
	return c.id
}

func (c *baseController) Occupants() []*PlayerController {
	occupants := make([]*PlayerController, len(c.occupants))
	copy(occupants, c.occupants)
	return occupants
}

// OnOccupantsChanged registers a listener fired whenever the occupant set
// changes.
func (c *baseController) OnOccupantsChanged(fn func([]*PlayerController)) {
	c.occupantsListeners = append(c.occupantsListeners, fn)
}

// updateOccupants replaces the occupant mirror, firing listeners only when
// the id sequence actually changed.
func (c *baseController) updateOccupants(occupants []*PlayerController) {
	changed := len(occupants) != len(c.occupants)
	if !changed {
		for i := range occupants {
			if occupants[i].ID != c.occupants[i].ID {
				changed = true
				break
			}
		}
	}
	c.occupants = occupants
	if changed {
		for _, fn := range c.occupantsListeners {
			fn(c.Occupants())
		}
	}
}

func (c *baseController) occupantByID(id string) *PlayerController {
	if id == "" {
		return nil
	}
	for _, p := range c.occupants {
		if p.ID == id {
			return p
		}
	}
	return nil
}
