package client

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/wfunc/townserver/models"
	"github.com/wfunc/townserver/network"
)

// mockConn records outbound messages and can answer interactable commands
// synchronously through the controller's own message handler.
type mockConn struct {
	town    *TownController
	sent    []sentMessage
	respond func(cmd models.InteractableCommand) models.CommandResponse
	closed  bool
}

type sentMessage struct {
	msgID uint16
	data  []byte
}

func (c *mockConn) Send(msgID uint16, data []byte) error {
	c.sent = append(c.sent, sentMessage{msgID: msgID, data: data})
	return nil
}

func (c *mockConn) SendJSON(msgID uint16, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := c.Send(msgID, data); err != nil {
		return err
	}

	if msgID == network.MsgTypeInteractableCommand && c.respond != nil {
		var cmd models.InteractableCommand
		if err := json.Unmarshal(data, &cmd); err != nil {
			return err
		}
		resp := c.respond(cmd)
		resp.CommandID = cmd.CommandID
		return c.town.HandleMessage(packetFor(network.MsgTypeCommandResponse, resp))
	}
	return nil
}

func (c *mockConn) Close() error {
	c.closed = true
	return nil
}

func (c *mockConn) RemoteAddr() net.Addr                { return nil }
func (c *mockConn) SetHeartbeat(interval time.Duration) {}
func (c *mockConn) ReadPacket() (*network.Packet, error) {
	return nil, errors.New("not readable")
}

func packetFor(msgID uint16, v interface{}) *network.Packet {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return &network.Packet{MsgID: msgID, Data: data, Length: uint16(len(data))}
}

func newConnectedController() (*TownController, *mockConn) {
	conn := &mockConn{}
	tc := NewTownController(conn)
	conn.town = tc
	return tc, conn
}

func mustHandle(t *testing.T, tc *TownController, msgID uint16, v interface{}) {
	t.Helper()
	if err := tc.HandleMessage(packetFor(msgID, v)); err != nil {
		t.Fatalf("handle message %d failed: %v", msgID, err)
	}
}

func TestHandleInitialize_BuildsMirror(t *testing.T) {
	tc, _ := newConnectedController()

	mustHandle(t, tc, network.MsgTypeInitialize, models.Initialize{
		PlayerID:     "us",
		SessionToken: "token",
		Players: []models.Player{
			{ID: "us", UserName: "alice"},
			{ID: "them", UserName: "bob"},
		},
		Interactables: []models.Interactable{
			{Type: models.AreaTypeConversation, ID: "lounge"},
			{Type: models.AreaTypeViewing, ID: "cinema"},
			{Type: models.AreaTypeVoting, ID: "booth"},
			{Type: models.AreaTypeSurvey, ID: "kiosk"},
			{Type: models.AreaTypeTicTacToe, ID: "arcade"},
			{Type: "Mystery", ID: "void"},
		},
	})

	if tc.OurPlayerID() != "us" || tc.SessionToken() != "token" {
		t.Error("initialize should record our identity")
	}
	if tc.Player("them") == nil || tc.Player("them").UserName != "bob" {
		t.Error("initialize should mirror the roster")
	}
	if _, ok := tc.Controller("lounge").(*ConversationAreaController); !ok {
		t.Errorf("expected a conversation controller for lounge, got %T", tc.Controller("lounge"))
	}
	if _, ok := tc.Controller("cinema").(*ViewingAreaController); !ok {
		t.Errorf("expected a viewing controller for cinema, got %T", tc.Controller("cinema"))
	}
	if _, ok := tc.Controller("booth").(*VotingAreaController); !ok {
		t.Errorf("expected a voting controller for booth, got %T", tc.Controller("booth"))
	}
	if _, ok := tc.Controller("kiosk").(*SurveyAreaController); !ok {
		t.Errorf("expected a survey controller for kiosk, got %T", tc.Controller("kiosk"))
	}
	if _, ok := tc.Controller("arcade").(*TicTacToeAreaController); !ok {
		t.Errorf("expected a tictactoe controller for arcade, got %T", tc.Controller("arcade"))
	}
	if tc.Controller("void") != nil {
		t.Error("unknown area types must be ignored")
	}
}

func TestPlayerLifecycleListeners(t *testing.T) {
	tc, _ := newConnectedController()
	var joined, moved, gone []string
	tc.OnPlayerJoined(func(p *PlayerController) { joined = append(joined, p.ID) })
	tc.OnPlayerMoved(func(p *PlayerController) { moved = append(moved, p.ID) })
	tc.OnPlayerDisconnect(func(p *PlayerController) { gone = append(gone, p.ID) })

	mustHandle(t, tc, network.MsgTypePlayerJoined, models.Player{ID: "p1", UserName: "alice"})
	mustHandle(t, tc, network.MsgTypePlayerMoved, models.Player{
		ID: "p1", UserName: "alice", Location: models.PlayerLocation{X: 5, Y: 5},
	})
	mustHandle(t, tc, network.MsgTypePlayerDisconnect, models.Player{ID: "p1"})

	if len(joined) != 1 || joined[0] != "p1" {
		t.Errorf("expected one join event for p1, got %v", joined)
	}
	if len(moved) != 1 || moved[0] != "p1" {
		t.Errorf("expected one move event for p1, got %v", moved)
	}
	if tc.Player("p1") != nil {
		t.Error("disconnected player should leave the mirror")
	}
	if len(gone) != 1 || gone[0] != "p1" {
		t.Errorf("expected one disconnect event for p1, got %v", gone)
	}

	// a disconnect for an unknown player fires nothing
	mustHandle(t, tc, network.MsgTypePlayerDisconnect, models.Player{ID: "ghost"})
	if len(gone) != 1 {
		t.Error("unknown disconnects must not fire listeners")
	}
}

func TestChatSettingsAndClosingListeners(t *testing.T) {
	tc, _ := newConnectedController()
	var chats []models.ChatMessage
	var updates []models.TownSettingsUpdate
	closing := 0
	tc.OnChatMessage(func(msg models.ChatMessage) { chats = append(chats, msg) })
	tc.OnTownSettingsUpdated(func(u models.TownSettingsUpdate) { updates = append(updates, u) })
	tc.OnTownClosing(func() { closing++ })

	mustHandle(t, tc, network.MsgTypeChatMessage, models.ChatMessage{Author: "alice", Body: "hi"})
	name := "Renamed"
	mustHandle(t, tc, network.MsgTypeTownSettingsUpdated, models.TownSettingsUpdate{FriendlyName: &name})
	mustHandle(t, tc, network.MsgTypeTownClosing, struct{}{})

	if len(chats) != 1 || chats[0].Body != "hi" {
		t.Errorf("expected the chat message, got %v", chats)
	}
	if len(updates) != 1 || updates[0].FriendlyName == nil || *updates[0].FriendlyName != "Renamed" {
		t.Errorf("expected the settings update, got %v", updates)
	}
	if closing != 1 {
		t.Errorf("expected one closing event, got %d", closing)
	}
}

func TestSendInteractableCommand_Success(t *testing.T) {
	tc, conn := newConnectedController()
	conn.respond = func(cmd models.InteractableCommand) models.CommandResponse {
		payload, _ := json.Marshal(models.JoinGameResult{GameID: "g1"})
		return models.CommandResponse{
			InteractableID: cmd.InteractableID,
			IsOK:           true,
			Payload:        payload,
		}
	}

	resp, err := tc.SendInteractableCommand(context.Background(), models.InteractableCommand{
		InteractableID: "arcade",
		Type:           models.CommandJoinGame,
	})
	if err != nil {
		t.Fatalf("command failed: %v", err)
	}
	var result models.JoinGameResult
	if err := json.Unmarshal(resp.Payload, &result); err != nil || result.GameID != "g1" {
		t.Fatalf("expected the join payload, got %s", resp.Payload)
	}

	if len(conn.sent) != 1 || conn.sent[0].msgID != network.MsgTypeInteractableCommand {
		t.Fatal("expected the command on the wire")
	}
	var wire models.InteractableCommand
	json.Unmarshal(conn.sent[0].data, &wire)
	if wire.CommandID == "" {
		t.Error("a command id must be assigned before sending")
	}
}

func TestSendInteractableCommand_FailureWrapsError(t *testing.T) {
	tc, conn := newConnectedController()
	conn.respond = func(cmd models.InteractableCommand) models.CommandResponse {
		return models.CommandResponse{Error: "game is full"}
	}

	_, err := tc.SendInteractableCommand(context.Background(), models.InteractableCommand{
		InteractableID: "arcade",
		Type:           models.CommandJoinGame,
	})
	if !errors.Is(err, ErrCommandFailed) {
		t.Fatalf("expected ErrCommandFailed, got %v", err)
	}
}

func TestSendInteractableCommand_ContextCancelled(t *testing.T) {
	tc, _ := newConnectedController()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := tc.SendInteractableCommand(ctx, models.InteractableCommand{
		InteractableID: "arcade",
		Type:           models.CommandJoinGame,
	})
	if !errors.Is(err, ErrResponseCancelled) {
		t.Fatalf("expected ErrResponseCancelled, got %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected the ctx cause to be preserved, got %v", err)
	}

	tc.pendingMutex.Lock()
	pending := len(tc.pending)
	tc.pendingMutex.Unlock()
	if pending != 0 {
		t.Error("an abandoned command must not leak a pending entry")
	}
}

func TestCommandResponse_UnknownIDIgnored(t *testing.T) {
	tc, _ := newConnectedController()
	mustHandle(t, tc, network.MsgTypeCommandResponse, models.CommandResponse{
		CommandID: "never-sent",
		IsOK:      true,
	})
}

func TestNotConnected(t *testing.T) {
	tc := NewTownController(nil)
	if err := tc.MoveTo(models.PlayerLocation{}); !errors.Is(err, ErrNotConnected) {
		t.Errorf("expected ErrNotConnected, got %v", err)
	}
	if err := tc.SendChatMessage(models.ChatMessage{}); !errors.Is(err, ErrNotConnected) {
		t.Errorf("expected ErrNotConnected, got %v", err)
	}
	if _, err := tc.SendInteractableCommand(context.Background(), models.InteractableCommand{}); !errors.Is(err, ErrNotConnected) {
		t.Errorf("expected ErrNotConnected, got %v", err)
	}
}

func TestInteractableUpdate_RoutesToController(t *testing.T) {
	tc, _ := newConnectedController()
	mustHandle(t, tc, network.MsgTypeInitialize, models.Initialize{
		PlayerID: "us",
		Players:  []models.Player{{ID: "us", UserName: "alice"}},
		Interactables: []models.Interactable{
			{Type: models.AreaTypeConversation, ID: "lounge"},
		},
	})

	var topics []string
	lounge := tc.Controller("lounge").(*ConversationAreaController)
	lounge.OnTopicChanged(func(topic string) { topics = append(topics, topic) })

	mustHandle(t, tc, network.MsgTypeInteractableUpdate, models.Interactable{
		Type: models.AreaTypeConversation, ID: "lounge",
		Topic: "lunch", Occupants: []string{"us"},
	})
	// identical model again: no event
	mustHandle(t, tc, network.MsgTypeInteractableUpdate, models.Interactable{
		Type: models.AreaTypeConversation, ID: "lounge",
		Topic: "lunch", Occupants: []string{"us"},
	})

	if len(topics) != 1 || topics[0] != "lunch" {
		t.Errorf("expected one topic event, got %v", topics)
	}
	if lounge.Topic() != "lunch" {
		t.Errorf("expected mirrored topic, got %q", lounge.Topic())
	}
	if got := lounge.Occupants(); len(got) != 1 || got[0].ID != "us" {
		t.Errorf("expected mirrored occupants, got %v", got)
	}
}

func TestVotingRemovePlayer_SendsKickCommand(t *testing.T) {
	tc, conn := newConnectedController()
	conn.respond = func(cmd models.InteractableCommand) models.CommandResponse {
		return models.CommandResponse{IsOK: true}
	}
	booth := NewVotingAreaController("booth", tc)

	if err := booth.RemovePlayer(context.Background(), "them"); err != nil {
		t.Fatalf("remove failed: %v", err)
	}

	var wire models.InteractableCommand
	json.Unmarshal(conn.sent[0].data, &wire)
	if wire.Type != models.CommandKickPlayer || wire.PlayerID != "them" || wire.InteractableID != "booth" {
		t.Errorf("unexpected kick command on the wire: %+v", wire)
	}
}
