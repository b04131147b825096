// client/town_controller.go
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/wfunc/townserver/models"
	"github.com/wfunc/townserver/network"
)

// TownController mirrors the server's view of one town for the local player:
// the roster, one AreaController per interactable, and the request/response
// plumbing for interactable commands. HandleMessage must be fed every packet
// read from the connection, from a single goroutine; listeners run
// synchronously on that goroutine in registration order.
type TownController struct {
	conn network.Connection

	ourPlayerID  string
	sessionToken string
	players      map[string]*PlayerController
	controllers  map[string]AreaController

	pendingMutex sync.Mutex
	pending      map[string]chan models.CommandResponse

	playerJoinedListeners     []func(*PlayerController)
	playerMovedListeners      []func(*PlayerController)
	playerDisconnectListeners []func(*PlayerController)
	chatListeners             []func(models.ChatMessage)
	settingsListeners         []func(models.TownSettingsUpdate)
	closingListeners          []func()
}

func NewTownController(conn network.Connection) *TownController {
	return &TownController{
		conn:        conn,
		players:     make(map[string]*PlayerController),
		controllers: make(map[string]AreaController),
		pending:     make(map[string]chan models.CommandResponse),
	}
}

func (c *TownController) OurPlayerID() string {
	return c.ourPlayerID
}

func (c *TownController) SessionToken() string {
	return c.sessionToken
}

// Player returns the mirrored player with the given id, or nil.
func (c *TownController) Player(id string) *PlayerController {
	return c.players[id]
}

// Controller returns the AreaController for the given area id, or nil.
func (c *TownController) Controller(id string) AreaController {
	return c.controllers[id]
}

func (c *TownController) OnPlayerJoined(fn func(*PlayerController)) {
	c.playerJoinedListeners = append(c.playerJoinedListeners, fn)
}

func (c *TownController) OnPlayerMoved(fn func(*PlayerController)) {
	c.playerMovedListeners = append(c.playerMovedListeners, fn)
}

func (c *TownController) OnPlayerDisconnect(fn func(*PlayerController)) {
	c.playerDisconnectListeners = append(c.playerDisconnectListeners, fn)
}

func (c *TownController) OnChatMessage(fn func(models.ChatMessage)) {
	c.chatListeners = append(c.chatListeners, fn)
}

func (c *TownController) OnTownSettingsUpdated(fn func(models.TownSettingsUpdate)) {
	c.settingsListeners = append(c.settingsListeners, fn)
}

func (c *TownController) OnTownClosing(fn func()) {
	c.closingListeners = append(c.closingListeners, fn)
}

// MoveTo reports the local player's new location to the server.
func (c *TownController) MoveTo(loc models.PlayerLocation) error {
	if c.conn == nil {
		return ErrNotConnected
	}
	return c.conn.SendJSON(network.MsgTypePlayerMovement, loc)
}

// SendChatMessage relays a chat message through the town.
func (c *TownController) SendChatMessage(msg models.ChatMessage) error {
	if c.conn == nil {
		return ErrNotConnected
	}
	return c.conn.SendJSON(network.MsgTypeChatMessage, msg)
}

// SendInteractableCommand issues a command and blocks until the correlated
// CommandResponse arrives or ctx ends. The protocol carries no timeout of
// its own; the caller's ctx is the timeout policy. A response with
// IsOK=false is surfaced as an error wrapping ErrCommandFailed.
func (c *TownController) SendInteractableCommand(ctx context.Context, cmd models.InteractableCommand) (models.CommandResponse, error) {
	if c.conn == nil {
		return models.CommandResponse{}, ErrNotConnected
	}

	cmd.CommandID = uuid.New().String()
	ch := make(chan models.CommandResponse, 1)

	c.pendingMutex.Lock()
	c.pending[cmd.CommandID] = ch
	c.pendingMutex.Unlock()

	defer func() {
		c.pendingMutex.Lock()
		delete(c.pending, cmd.CommandID)
		c.pendingMutex.Unlock()
	}()

	if err := c.conn.SendJSON(network.MsgTypeInteractableCommand, cmd); err != nil {
		return models.CommandResponse{}, err
	}

	select {
	case resp := <-ch:
		if !resp.IsOK {
			return resp, fmt.Errorf("%w: %s", ErrCommandFailed, resp.Error)
		}
		return resp, nil
	case <-ctx.Done():
		return models.CommandResponse{}, errors.Join(ErrResponseCancelled, ctx.Err())
	}
}

// HandleMessage routes one server packet into the mirrored state.
func (c *TownController) HandleMessage(packet *network.Packet) error {
	switch packet.MsgID {
	case network.MsgTypeInitialize:
		var init models.Initialize
		if err := json.Unmarshal(packet.Data, &init); err != nil {
			return err
		}
		c.handleInitialize(init)

	case network.MsgTypePlayerJoined:
		var p models.Player
		if err := json.Unmarshal(packet.Data, &p); err != nil {
			return err
		}
		pc := c.upsertPlayer(p)
		for _, fn := range c.playerJoinedListeners {
			fn(pc)
		}

	case network.MsgTypePlayerMoved:
		var p models.Player
		if err := json.Unmarshal(packet.Data, &p); err != nil {
			return err
		}
		pc := c.upsertPlayer(p)
		for _, fn := range c.playerMovedListeners {
			fn(pc)
		}

	case network.MsgTypePlayerDisconnect:
		var p models.Player
		if err := json.Unmarshal(packet.Data, &p); err != nil {
			return err
		}
		if pc, exists := c.players[p.ID]; exists {
			delete(c.players, p.ID)
			for _, fn := range c.playerDisconnectListeners {
				fn(pc)
			}
		}

	case network.MsgTypeInteractableUpdate:
		var m models.Interactable
		if err := json.Unmarshal(packet.Data, &m); err != nil {
			return err
		}
		c.handleInteractableUpdate(m)

	case network.MsgTypeCommandResponse:
		var resp models.CommandResponse
		if err := json.Unmarshal(packet.Data, &resp); err != nil {
			return err
		}
		c.pendingMutex.Lock()
		ch, exists := c.pending[resp.CommandID]
		c.pendingMutex.Unlock()
		if exists {
			ch <- resp
		}

	case network.MsgTypeChatMessage:
		var msg models.ChatMessage
		if err := json.Unmarshal(packet.Data, &msg); err != nil {
			return err
		}
		for _, fn := range c.chatListeners {
			fn(msg)
		}

	case network.MsgTypeTownSettingsUpdated:
		var update models.TownSettingsUpdate
		if err := json.Unmarshal(packet.Data, &update); err != nil {
			return err
		}
		for _, fn := range c.settingsListeners {
			fn(update)
		}

	case network.MsgTypeTownClosing:
		for _, fn := range c.closingListeners {
			fn()
		}
	}
	return nil
}

func (c *TownController) handleInitialize(init models.Initialize) {
	c.ourPlayerID = init.PlayerID
	c.sessionToken = init.SessionToken
	c.players = make(map[string]*PlayerController, len(init.Players))
	for _, p := range init.Players {
		c.upsertPlayer(p)
	}
	c.controllers = make(map[string]AreaController, len(init.Interactables))
	for _, m := range init.Interactables {
		c.handleInteractableUpdate(m)
	}
}

func (c *TownController) handleInteractableUpdate(m models.Interactable) {
	controller, exists := c.controllers[m.ID]
	if !exists {
		controller = c.newController(m)
		if controller == nil {
			return
		}
		c.controllers[m.ID] = controller
	}
	controller.UpdateFrom(m, c.playersByIDs(m.Occupants))
}

func (c *TownController) newController(m models.Interactable) AreaController {
	switch m.Type {
	case models.AreaTypeConversation:
		return NewConversationAreaController(m.ID)
	case models.AreaTypeViewing:
		return NewViewingAreaController(m.ID)
	case models.AreaTypeVoting:
		return NewVotingAreaController(m.ID, c)
	case models.AreaTypeSurvey:
		return NewSurveyAreaController(m.ID)
	case models.AreaTypeTicTacToe:
		return NewTicTacToeAreaController(m.ID, c)
	default:
		return nil
	}
}

func (c *TownController) upsertPlayer(p models.Player) *PlayerController {
	pc, exists := c.players[p.ID]
	if !exists {
		pc = &PlayerController{ID: p.ID}
		c.players[p.ID] = pc
	}
	pc.UserName = p.UserName
	pc.Location = p.Location
	return pc
}

func (c *TownController) playersByIDs(ids []string) []*PlayerController {
	result := make([]*PlayerController, 0, len(ids))
	for _, id := range ids {
		if pc, exists := c.players[id]; exists {
			result = append(result, pc)
		}
	}
	return result
}

func unmarshalPayload(payload json.RawMessage, v interface{}) error {
	if len(payload) == 0 {
		return nil
	}
	return json.Unmarshal(payload, v)
}
