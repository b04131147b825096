// town/town.go
package town

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/wfunc/townserver/area"
	"github.com/wfunc/townserver/logger"
	"github.com/wfunc/townserver/models"
	"github.com/wfunc/townserver/network"
	"github.com/wfunc/townserver/player"
	"github.com/wfunc/townserver/session"
	"github.com/wfunc/townserver/tilemap"
)

// UnknownErrorMessage is what clients see for any failure that is not a
// recognized domain error. Internal details stay in the server log.
const UnknownErrorMessage = "Unknown error"

// DefaultCapacity bounds how many players one town admits.
const DefaultCapacity = 50

var ErrTownFull = errors.New("town is at capacity")

// Broadcaster fans a message out to every socket joined to a town. Defined
// here to break the import cycle with the broadcast package.
type Broadcaster interface {
	BroadcastToTown(townID string, msgID uint16, data []byte) error
}

// Town owns the players and interactable areas of one session. Every mutation
// runs under one mutex, so each inbound message is applied atomically and
// broadcasts observe mutation order.
type Town struct {
	id               string
	friendlyName     string
	updatePassword   string
	isPubliclyListed bool
	capacity         int

	players       []*player.Player
	interactables []area.Interactable
	sessions      map[string]*session.Session

	broadcaster Broadcaster
	emitter     *townEmitter
	mutex       sync.Mutex
}

// New creates an empty town. Areas come from InitializeFromMap.
func New(friendlyName string, isPubliclyListed bool, townID string, broadcaster Broadcaster) *Town {
	t := &Town{
		id:               townID,
		friendlyName:     friendlyName,
		updatePassword:   uuid.New().String(),
		isPubliclyListed: isPubliclyListed,
		capacity:         DefaultCapacity,
		sessions:         make(map[string]*session.Session),
		broadcaster:      broadcaster,
	}
	t.emitter = &townEmitter{town: t}
	return t
}

func (t *Town) ID() string {
	return t.id
}

func (t *Town) UpdatePassword() string {
	return t.updatePassword
}

func (t *Town) FriendlyName() string {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return t.friendlyName
}

func (t *Town) IsPubliclyListed() bool {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return t.isPubliclyListed
}

func (t *Town) Capacity() int {
	return t.capacity
}

func (t *Town) Occupancy() int {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return len(t.players)
}

// InitializeFromMap instantiates one area per object-layer entry and then
// validates the global invariants. Any error here is fatal for the town.
func (t *Town) InitializeFromMap(m *tilemap.Map) error {
	layer, err := m.ObjectLayer()
	if err != nil {
		return err
	}

	t.mutex.Lock()
	defer t.mutex.Unlock()

	for _, obj := range layer.Objects {
		var built area.Interactable
		switch obj.Type {
		case models.AreaTypeConversation, models.AreaTypeViewing,
			models.AreaTypeVoting, models.AreaTypeSurvey, models.AreaTypeTicTacToe:
			if obj.Width == 0 || obj.Height == 0 {
				return fmt.Errorf("malformed area %s: missing width or height", obj.Name)
			}
			bounds := area.BoundingBox{X: obj.X, Y: obj.Y, Width: obj.Width, Height: obj.Height}
			switch obj.Type {
			case models.AreaTypeConversation:
				built = area.NewConversationArea(obj.Name, bounds, t.emitter)
			case models.AreaTypeViewing:
				built = area.NewViewingArea(obj.Name, bounds, t.emitter)
			case models.AreaTypeVoting:
				built = area.NewVotingArea(obj.Name, bounds, t.emitter)
			case models.AreaTypeSurvey:
				built = area.NewSurveyArea(obj.Name, bounds, t.emitter)
			case models.AreaTypeTicTacToe:
				built = area.NewGameArea(obj.Name, bounds, t.emitter)
			}
		default:
			// Non-interactable map objects are not ours to care about.
			continue
		}
		t.interactables = append(t.interactables, built)
	}

	return t.validateInteractables()
}

// validateInteractables enforces unique ids and pairwise non-overlap.
func (t *Town) validateInteractables() error {
	seen := make(map[string]bool, len(t.interactables))
	for _, it := range t.interactables {
		if seen[it.ID()] {
			return fmt.Errorf("duplicate interactable id %s", it.ID())
		}
		seen[it.ID()] = true
	}
	for i, it := range t.interactables {
		for _, other := range t.interactables[i+1:] {
			if it.Overlaps(other) {
				return fmt.Errorf("interactables %s and %s overlap", it.ID(), other.ID())
			}
		}
	}
	return nil
}

// AddPlayer admits a new player, bootstraps their socket with the town
// snapshot and announces them to everyone else.
func (t *Town) AddPlayer(userName string, sess *session.Session) (*player.Player, error) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if len(t.players) >= t.capacity {
		return nil, ErrTownFull
	}

	p := player.New(userName)
	t.players = append(t.players, p)
	t.sessions[sess.ID] = sess
	sess.TownID = t.id
	sess.PlayerID = p.ID

	init := models.Initialize{
		PlayerID:      p.ID,
		SessionToken:  p.SessionToken,
		Players:       t.playerModels(),
		Interactables: t.interactableModels(),
	}
	if err := sess.SendJSON(network.MsgTypeInitialize, init); err != nil {
		logger.Log.Warnf("Failed to send initialize to session %s: %v", sess.ID, err)
	}

	t.broadcast(network.MsgTypePlayerJoined, p.ToModel())
	return p, nil
}

// RemovePlayer pulls the player out of any area they occupy, drops them from
// the roster and announces the disconnect.
func (t *Town) RemovePlayer(p *player.Player, sess *session.Session) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if p.Location.InteractableID != "" {
		if it := t.findInteractable(p.Location.InteractableID); it != nil {
			if err := it.Remove(p); err != nil {
				logger.Log.Warnf("Failed to remove player %s from area %s: %v", p.ID, it.ID(), err)
			}
		}
	}

	remaining := t.players[:0]
	for _, other := range t.players {
		if other.ID != p.ID {
			remaining = append(remaining, other)
		}
	}
	t.players = remaining
	delete(t.sessions, sess.ID)

	t.broadcast(network.MsgTypePlayerDisconnect, p.ToModel())
}

// UpdatePlayerLocation routes a movement into and out of areas. The player
// stays in their previous area while the new point is still inside it;
// otherwise they are removed and the (unique, non-overlapping) area
// containing the point admits them. A playerMoved event always goes out.
func (t *Town) UpdatePlayerLocation(p *player.Player, loc models.PlayerLocation) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	prev := t.findInteractable(p.Location.InteractableID)
	if prev != nil && prev.Contains(loc) {
		loc.InteractableID = prev.ID()
		p.Location = loc
	} else {
		if prev != nil {
			if err := prev.Remove(p); err != nil {
				logger.Log.Warnf("Failed to remove player %s from area %s: %v", p.ID, prev.ID(), err)
			}
		}
		var next area.Interactable
		for _, it := range t.interactables {
			if it.Contains(loc) {
				next = it
				break
			}
		}
		loc.InteractableID = ""
		p.Location = loc
		if next != nil {
			if err := next.Add(p); err != nil {
				logger.Log.Warnf("Failed to add player %s to area %s: %v", p.ID, next.ID(), err)
			}
		}
	}

	t.broadcast(network.MsgTypePlayerMoved, p.ToModel())
}

// AddConversationArea claims an unclaimed conversation area with a topic.
func (t *Town) AddConversationArea(m models.Interactable) bool {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	conv, ok := t.findInteractable(m.ID).(*area.ConversationArea)
	if !ok || m.Topic == "" || conv.Topic != "" {
		return false
	}
	conv.Topic = m.Topic
	conv.AddPlayersWithinBounds(t.players)
	t.broadcast(network.MsgTypeInteractableUpdate, conv.ToModel())
	return true
}

// AddVotingArea claims an unclaimed voting area with a poll label.
func (t *Town) AddVotingArea(m models.Interactable) bool {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	voting, ok := t.findInteractable(m.ID).(*area.VotingArea)
	if !ok || m.Poll == "" || voting.Poll != "" {
		return false
	}
	voting.Poll = m.Poll
	voting.AddPlayersWithinBounds(t.players)
	t.broadcast(network.MsgTypeInteractableUpdate, voting.ToModel())
	return true
}

// AddViewingArea claims an unclaimed viewing area with a video.
func (t *Town) AddViewingArea(m models.Interactable) bool {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	viewing, ok := t.findInteractable(m.ID).(*area.ViewingArea)
	if !ok || m.Video == "" || viewing.Video != "" {
		return false
	}
	viewing.UpdateModel(m)
	viewing.AddPlayersWithinBounds(t.players)
	t.broadcast(network.MsgTypeInteractableUpdate, viewing.ToModel())
	return true
}

// HandleInteractableUpdate applies a privileged direct model overwrite.
// Only viewing areas accept these (playback state is client-authoritative).
func (t *Town) HandleInteractableUpdate(m models.Interactable) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if m.Type != models.AreaTypeViewing {
		return
	}
	viewing, ok := t.findInteractable(m.ID).(*area.ViewingArea)
	if !ok {
		return
	}
	t.broadcast(network.MsgTypeInteractableUpdate, m)
	viewing.UpdateModel(m)
}

// HandleChatMessage relays a chat message to the whole town.
func (t *Town) HandleChatMessage(msg models.ChatMessage) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.broadcast(network.MsgTypeChatMessage, msg)
}

// HandleCommand dispatches an interactable command and answers the issuing
// socket with a correlated response. Domain errors travel to the client
// verbatim; anything else is logged and masked.
func (t *Town) HandleCommand(p *player.Player, sess *session.Session, cmd models.InteractableCommand) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	resp := models.CommandResponse{
		CommandID:      cmd.CommandID,
		InteractableID: cmd.InteractableID,
	}

	it := t.findInteractable(cmd.InteractableID)
	if it == nil {
		resp.Error = fmt.Sprintf("No such interactable %s", cmd.InteractableID)
	} else if payload, err := it.HandleCommand(cmd, p); err != nil {
		var domainErr *models.InvalidParametersError
		if errors.As(err, &domainErr) {
			resp.Error = domainErr.Message
		} else {
			logger.Log.Errorf("Command %s on %s failed: %v", cmd.Type, cmd.InteractableID, err)
			resp.Error = UnknownErrorMessage
		}
	} else {
		resp.IsOK = true
		if payload != nil {
			data, merr := json.Marshal(payload)
			if merr != nil {
				logger.Log.Errorf("Failed to marshal command payload: %v", merr)
			} else {
				resp.Payload = data
			}
		}
	}

	if err := sess.SendJSON(network.MsgTypeCommandResponse, resp); err != nil {
		logger.Log.Warnf("Failed to send command response to session %s: %v", sess.ID, err)
	}
}

// GetInteractable looks an area up by id.
func (t *Town) GetInteractable(id string) (area.Interactable, error) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	it := t.findInteractable(id)
	if it == nil {
		return nil, fmt.Errorf("no such interactable %s", id)
	}
	return it, nil
}

// GetPlayerBySessionToken resolves a player from their session token, used
// to gate privileged admin calls.
func (t *Town) GetPlayerBySessionToken(token string) (*player.Player, bool) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	for _, p := range t.players {
		if p.SessionToken == token {
			return p, true
		}
	}
	return nil, false
}

// SetFriendlyName renames the town and announces the change.
func (t *Town) SetFriendlyName(name string) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.friendlyName = name
	t.broadcast(network.MsgTypeTownSettingsUpdated, models.TownSettingsUpdate{FriendlyName: &name})
}

// SetIsPubliclyListed flips the public listing and announces the change.
func (t *Town) SetIsPubliclyListed(listed bool) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.isPubliclyListed = listed
	t.broadcast(network.MsgTypeTownSettingsUpdated, models.TownSettingsUpdate{IsPubliclyListed: &listed})
}

// DisconnectAllPlayers announces the shutdown and closes every socket.
func (t *Town) DisconnectAllPlayers() {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	t.broadcast(network.MsgTypeTownClosing, struct{}{})
	for _, sess := range t.sessions {
		sess.Close()
	}
}

// Interactables returns the current area snapshots.
func (t *Town) Interactables() []models.Interactable {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return t.interactableModels()
}

// Players returns the current roster snapshots.
func (t *Town) Players() []models.Player {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return t.playerModels()
}

// callers hold t.mutex for everything below.

func (t *Town) findInteractable(id string) area.Interactable {
	if id == "" {
		return nil
	}
	for _, it := range t.interactables {
		if it.ID() == id {
			return it
		}
	}
	return nil
}

func (t *Town) playerModels() []models.Player {
	result := make([]models.Player, 0, len(t.players))
	for _, p := range t.players {
		result = append(result, p.ToModel())
	}
	return result
}

func (t *Town) interactableModels() []models.Interactable {
	result := make([]models.Interactable, 0, len(t.interactables))
	for _, it := range t.interactables {
		result = append(result, it.ToModel())
	}
	return result
}

func (t *Town) broadcast(msgID uint16, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		logger.Log.Errorf("Failed to marshal broadcast for town %s: %v", t.id, err)
		return
	}
	if err := t.broadcaster.BroadcastToTown(t.id, msgID, data); err != nil {
		logger.Log.Warnf("Broadcast to town %s failed: %v", t.id, err)
	}
}

// townEmitter adapts the town's broadcast path to the area.Emitter interface
// so areas can announce their own mutations.
type townEmitter struct {
	town *Town
}

func (e *townEmitter) PlayerMoved(p models.Player) {
	e.town.broadcast(network.MsgTypePlayerMoved, p)
}

func (e *townEmitter) InteractableUpdate(m models.Interactable) {
	e.town.broadcast(network.MsgTypeInteractableUpdate, m)
}
