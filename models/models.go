// models/models.go
package models

import (
	"encoding/json"
	"time"
)

// Area type discriminants carried in Interactable.Type.
const (
	AreaTypeConversation = "ConversationArea"
	AreaTypeViewing      = "ViewingArea"
	AreaTypeVoting       = "VotingArea"
	AreaTypeSurvey       = "SurveyArea"
	AreaTypeTicTacToe    = "TicTacToeArea"
)

// PlayerLocation is a player's position on the map. InteractableID is the id
// of the area the player is standing in, or "" when they are in open space.
type PlayerLocation struct {
	X              float64 `json:"x"`
	Y              float64 `json:"y"`
	Rotation       string  `json:"rotation"`
	Moving         bool    `json:"moving"`
	InteractableID string  `json:"interactableID,omitempty"`
}

// Player is the wire snapshot of one player.
type Player struct {
	ID       string         `json:"id"`
	UserName string         `json:"userName"`
	Location PlayerLocation `json:"location"`
}

// Interactable is the wire snapshot of one area. Type selects which of the
// optional per-kind fields are meaningful.
type Interactable struct {
	Type      string   `json:"type"`
	ID        string   `json:"id"`
	Occupants []string `json:"occupants"`

	// ConversationArea
	Topic string `json:"topic,omitempty"`

	// ViewingArea
	Video          string  `json:"video,omitempty"`
	IsPlaying      bool    `json:"isPlaying,omitempty"`
	ElapsedTimeSec float64 `json:"elapsedTimeSec,omitempty"`

	// VotingArea
	Poll string `json:"poll,omitempty"`

	// SurveyArea
	Responses map[string]int `json:"responses,omitempty"`

	// TicTacToeArea
	Game    *GameInstance `json:"game,omitempty"`
	History []GameResult  `json:"history,omitempty"`
}

// GameResult is one archived play-through: the winner scores 1 and the loser
// 0, with both at 0 for a draw.
type GameResult struct {
	GameID string         `json:"gameID"`
	Scores map[string]int `json:"scores"`
}

// GameStatus is the lifecycle status of a hosted game instance.
type GameStatus string

const (
	GameWaitingToStart GameStatus = "WAITING_TO_START"
	GameInProgress     GameStatus = "IN_PROGRESS"
	GameOver           GameStatus = "OVER"
)

// TicTacToeMove is a single placement. GamePiece is "X" or "O".
type TicTacToeMove struct {
	Row       int    `json:"row"`
	Col       int    `json:"col"`
	GamePiece string `json:"gamePiece"`
}

// TicTacToeGameState is the replayable state of one game: role owners, the
// append-only move list, and the outcome. Winner is empty for a draw or for
// a game that has not finished.
type TicTacToeGameState struct {
	X      string          `json:"x,omitempty"`
	O      string          `json:"o,omitempty"`
	Moves  []TicTacToeMove `json:"moves"`
	Status GameStatus      `json:"status"`
	Winner string          `json:"winner,omitempty"`
}

// GameInstance is one play-through hosted inside a game area. Its ID is
// distinct from the area's id and changes for every new game.
type GameInstance struct {
	ID      string             `json:"id"`
	Players []string           `json:"players"`
	State   TicTacToeGameState `json:"state"`
}

// Interactable command types.
const (
	CommandJoinGame   = "JoinGame"
	CommandGameMove   = "GameMove"
	CommandLeaveGame  = "LeaveGame"
	CommandKickPlayer = "KickPlayerCommand"
)

// InteractableCommand is a player-invoked action on one area, correlated
// with its response by CommandID.
type InteractableCommand struct {
	CommandID      string         `json:"commandID"`
	InteractableID string         `json:"interactableID"`
	Type           string         `json:"type"`
	GameID         string         `json:"gameID,omitempty"`
	Move           *TicTacToeMove `json:"move,omitempty"`
	PlayerID       string         `json:"playerID,omitempty"`
}

// CommandResponse acknowledges an InteractableCommand. Payload is set when
// IsOK is true, Error otherwise.
type CommandResponse struct {
	CommandID      string          `json:"commandID"`
	InteractableID string          `json:"interactableID"`
	IsOK           bool            `json:"isOK"`
	Payload        json.RawMessage `json:"payload,omitempty"`
	Error          string          `json:"error,omitempty"`
}

// JoinGameResult is the payload of a successful JoinGame command.
type JoinGameResult struct {
	GameID string `json:"gameID"`
}

// ChatMessage is relayed verbatim to every socket in the town.
type ChatMessage struct {
	Author      string    `json:"author"`
	SID         string    `json:"sid"`
	Body        string    `json:"body"`
	DateCreated time.Time `json:"dateCreated"`
}

// TownSettingsUpdate carries only the settings that changed.
type TownSettingsUpdate struct {
	FriendlyName     *string `json:"friendlyName,omitempty"`
	IsPubliclyListed *bool   `json:"isPubliclyListed,omitempty"`
}

// Initialize is the session bootstrap pushed to a socket right after join.
type Initialize struct {
	PlayerID      string         `json:"playerID"`
	SessionToken  string         `json:"sessionToken"`
	Players       []Player       `json:"players"`
	Interactables []Interactable `json:"interactables"`
}
