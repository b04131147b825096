// area/gamearea.go
package area

import (
	"github.com/wfunc/townserver/game"
	"github.com/wfunc/townserver/models"
	"github.com/wfunc/townserver/player"
)

// GameArea hosts at most one live TicTacToe instance. A fresh instance (with
// a fresh id) is created by the first JoinGame after the previous game ended.
// Finished games are archived in history for the lifetime of the area.
type GameArea struct {
	Base
	game    *game.TicTacToe
	history []models.GameResult
}

func NewGameArea(id string, bounds BoundingBox, emitter Emitter) *GameArea {
	a := &GameArea{
		Base: NewBase(id, bounds, emitter),
	}
	a.Bind(a)
	return a
}

func (a *GameArea) Type() string {
	return models.AreaTypeTicTacToe
}

// IsActive reports whether a game is being played right now.
func (a *GameArea) IsActive() bool {
	return a.game != nil && a.game.Status() == models.GameInProgress
}

// Game returns the hosted instance, or nil when none is live.
func (a *GameArea) Game() *game.TicTacToe {
	return a.game
}

// Remove drops the player from the area. A participant walking out leaves
// the game the same way an explicit LeaveGame would: a live game is forfeited
// and a waiting game frees their role. When the area empties the hosted
// instance is discarded and the reset model broadcast once.
func (a *GameArea) Remove(p *player.Player) error {
	if err := a.removeOccupant(p); err != nil {
		return err
	}
	gameChanged := false
	if a.game != nil && a.game.Status() != models.GameOver && a.game.HasPlayer(p.ID) {
		a.game.Leave(p.ID)
		a.recordResult()
		gameChanged = true
	}
	if len(a.occupants) == 0 {
		a.game = nil
		a.emitAreaChanged()
	} else if gameChanged {
		a.emitAreaChanged()
	}
	return nil
}

// recordResult archives a finished two-player game once per instance. The
// winner scores 1 and the loser 0; a draw scores both 0.
func (a *GameArea) recordResult() {
	if a.game == nil || a.game.Status() != models.GameOver {
		return
	}
	for _, r := range a.history {
		if r.GameID == a.game.ID() {
			return
		}
	}
	m := a.game.ToModel()
	if m.State.X == "" || m.State.O == "" {
		return
	}
	scores := map[string]int{m.State.X: 0, m.State.O: 0}
	if m.State.Winner != "" {
		scores[m.State.Winner] = 1
	}
	a.history = append(a.history, models.GameResult{GameID: m.ID, Scores: scores})
}

func (a *GameArea) ToModel() models.Interactable {
	m := models.Interactable{
		Type:      models.AreaTypeTicTacToe,
		ID:        a.id,
		Occupants: a.OccupantIDs(),
		History:   make([]models.GameResult, len(a.history)),
	}
	copy(m.History, a.history)
	if a.game != nil {
		m.Game = a.game.ToModel()
	}
	return m
}

func (a *GameArea) HandleCommand(cmd models.InteractableCommand, p *player.Player) (interface{}, error) {
	switch cmd.Type {
	case models.CommandJoinGame:
		return a.handleJoin(p)
	case models.CommandGameMove:
		return a.handleMove(cmd, p)
	case models.CommandLeaveGame:
		return a.handleLeave(cmd, p)
	case models.CommandKickPlayer:
		return a.handleKick(cmd, p)
	default:
		return nil, models.NewInvalidParameters(models.MessageUnknownCommand)
	}
}

func (a *GameArea) handleJoin(p *player.Player) (interface{}, error) {
	if a.game == nil || a.game.Status() == models.GameOver {
		a.game = game.NewTicTacToe()
	}
	if err := a.game.Join(p.ID); err != nil {
		return nil, err
	}
	a.emitAreaChanged()
	return models.JoinGameResult{GameID: a.game.ID()}, nil
}

func (a *GameArea) handleMove(cmd models.InteractableCommand, p *player.Player) (interface{}, error) {
	if a.game == nil {
		return nil, models.NewInvalidParameters(models.MessageGameNotInProgress)
	}
	if cmd.GameID != a.game.ID() {
		return nil, models.NewInvalidParameters(models.MessageGameIDMismatch)
	}
	if cmd.Move == nil {
		return nil, models.NewInvalidParameters(models.MessageMissingMove)
	}
	if err := a.game.ApplyMove(p.ID, *cmd.Move); err != nil {
		return nil, err
	}
	a.recordResult()
	a.emitAreaChanged()
	return nil, nil
}

func (a *GameArea) handleLeave(cmd models.InteractableCommand, p *player.Player) (interface{}, error) {
	if a.game == nil {
		return nil, models.NewInvalidParameters(models.MessageGameNotInProgress)
	}
	if cmd.GameID != "" && cmd.GameID != a.game.ID() {
		return nil, models.NewInvalidParameters(models.MessageGameIDMismatch)
	}
	if err := a.game.Leave(p.ID); err != nil {
		return nil, err
	}
	a.recordResult()
	a.emitAreaChanged()
	return nil, nil
}
