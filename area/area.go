// area/area.go
package area

import (
	"github.com/wfunc/townserver/models"
	"github.com/wfunc/townserver/player"
)

// Emitter broadcasts area-level events to every socket in the town. Defined
// here, consumer-side, so the town package can supply its own implementation
// without an import cycle.
type Emitter interface {
	PlayerMoved(p models.Player)
	InteractableUpdate(m models.Interactable)
}

// BoundingBox is an axis-aligned rectangle in map coordinates.
type BoundingBox struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Contains is a half-open point-in-rect test: the left/top edges are inside,
// the right/bottom edges are not, so adjacent areas never share a point.
func (b BoundingBox) Contains(loc models.PlayerLocation) bool {
	return loc.X >= b.X && loc.X < b.X+b.Width &&
		loc.Y >= b.Y && loc.Y < b.Y+b.Height
}

// Intersects reports whether two boxes share interior points. Boxes that
// only touch along an edge do not intersect.
func (b BoundingBox) Intersects(o BoundingBox) bool {
	return b.X < o.X+o.Width && b.X+b.Width > o.X &&
		b.Y < o.Y+o.Height && b.Y+b.Height > o.Y
}

// Interactable is the capability contract shared by every area kind.
type Interactable interface {
	ID() string
	Type() string
	Bounds() BoundingBox
	Contains(loc models.PlayerLocation) bool
	Overlaps(other Interactable) bool
	IsActive() bool
	Occupants() []*player.Player
	OccupantIDs() []string
	Add(p *player.Player) error
	Remove(p *player.Player) error
	AddPlayersWithinBounds(players []*player.Player)
	ToModel() models.Interactable
	HandleCommand(cmd models.InteractableCommand, p *player.Player) (interface{}, error)
}

// Base is the occupant-membership engine every area variant embeds. The
// occupant list is kept in join order. self points back at the embedding
// variant so shared code can broadcast the variant's full model.
type Base struct {
	id        string
	bounds    BoundingBox
	occupants []*player.Player
	emitter   Emitter
	self      Interactable
}

// NewBase builds the shared engine. The variant must call Bind on the
// returned value before use.
func NewBase(id string, bounds BoundingBox, emitter Emitter) Base {
	return Base{
		id:      id,
		bounds:  bounds,
		emitter: emitter,
	}
}

// Bind points the engine back at its embedding variant.
func (b *Base) Bind(self Interactable) {
	b.self = self
}

func (b *Base) ID() string {
	return b.id
}

func (b *Base) Bounds() BoundingBox {
	return b.bounds
}

func (b *Base) Contains(loc models.PlayerLocation) bool {
	return b.bounds.Contains(loc)
}

func (b *Base) Overlaps(other Interactable) bool {
	return b.bounds.Intersects(other.Bounds())
}

func (b *Base) Occupants() []*player.Player {
	occupants := make([]*player.Player, len(b.occupants))
	copy(occupants, b.occupants)
	return occupants
}

func (b *Base) OccupantIDs() []string {
	ids := make([]string, 0, len(b.occupants))
	for _, p := range b.occupants {
		ids = append(ids, p.ID)
	}
	return ids
}

func (b *Base) isOccupant(playerID string) bool {
	for _, p := range b.occupants {
		if p.ID == playerID {
			return true
		}
	}
	return false
}

// Add admits a player standing inside the bounds. The player's location is
// stamped with this area's id and both a movement and an area update are
// broadcast.
func (b *Base) Add(p *player.Player) error {
	if b.isOccupant(p.ID) {
		return models.NewInvalidParameters(models.MessageAlreadyOccupant)
	}
	if !b.bounds.Contains(p.Location) {
		return models.NewInvalidParameters(models.MessageOutsideBounds)
	}
	b.occupants = append(b.occupants, p)
	p.Location.InteractableID = b.id
	b.emitPlayerMoved(p)
	b.emitAreaChanged()
	return nil
}

// removeOccupant drops the player from the list, clears their area id and
// broadcasts the movement. Variants wrap this to reset payload state when
// the last occupant leaves.
func (b *Base) removeOccupant(p *player.Player) error {
	if !b.isOccupant(p.ID) {
		return models.NewInvalidParameters(models.MessageNotAnOccupant)
	}
	remaining := b.occupants[:0]
	for _, occupant := range b.occupants {
		if occupant.ID != p.ID {
			remaining = append(remaining, occupant)
		}
	}
	b.occupants = remaining
	p.Location.InteractableID = ""
	b.emitPlayerMoved(p)
	return nil
}

// AddPlayersWithinBounds admits every listed player standing inside the
// bounds who is not already an occupant. Used when an area is claimed after
// players have walked into it.
func (b *Base) AddPlayersWithinBounds(players []*player.Player) {
	for _, p := range players {
		if b.bounds.Contains(p.Location) && !b.isOccupant(p.ID) {
			b.occupants = append(b.occupants, p)
			p.Location.InteractableID = b.id
			b.emitPlayerMoved(p)
		}
	}
}

func (b *Base) emitPlayerMoved(p *player.Player) {
	if b.emitter != nil {
		b.emitter.PlayerMoved(p.ToModel())
	}
}

func (b *Base) emitAreaChanged() {
	if b.emitter != nil && b.self != nil {
		b.emitter.InteractableUpdate(b.self.ToModel())
	}
}

// handleKick implements KickPlayerCommand for every area kind: the requester
// and the target must both be occupants, and the effect is a plain removal
// through the variant's Remove.
func (b *Base) handleKick(cmd models.InteractableCommand, requester *player.Player) (interface{}, error) {
	if !b.isOccupant(requester.ID) {
		return nil, models.NewInvalidParameters(models.MessageNotAnOccupant)
	}
	for _, occupant := range b.occupants {
		if occupant.ID == cmd.PlayerID {
			if err := b.self.Remove(occupant); err != nil {
				return nil, err
			}
			return nil, nil
		}
	}
	return nil, models.NewInvalidParameters(models.MessageNotAnOccupant)
}
