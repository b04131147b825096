// client/tictactoe_controller.go
package client

import (
	"context"

	"github.com/wfunc/townserver/models"
)

// Board is the reconstructed 3x3 grid, indexed by row then column. Cells
// hold "X", "O" or "".
type Board [3][3]string

// TicTacToeAreaController mirrors a game area hosting TicTacToe. The board
// and turn are derived by replaying the pushed move list, so they are always
// consistent with what the server has accepted.
type TicTacToeAreaController struct {
	baseController
	town       *TownController
	model      models.Interactable
	instanceID string

	boardListeners []func(Board)
	turnListeners  []func(bool)
}

func NewTicTacToeAreaController(id string, town *TownController) *TicTacToeAreaController {
	return &TicTacToeAreaController{
		baseController: newBaseController(id),
		town:           town,
	}
}

func (c *TicTacToeAreaController) Type() string {
	return models.AreaTypeTicTacToe
}

// Board replays the move list into the 3x3 grid.
func (c *TicTacToeAreaController) Board() Board {
	var board Board
	if c.model.Game != nil {
		for _, m := range c.model.Game.State.Moves {
			if m.Row >= 0 && m.Row < 3 && m.Col >= 0 && m.Col < 3 {
				board[m.Row][m.Col] = m.GamePiece
			}
		}
	}
	return board
}

// X returns the occupant holding the X role, or nil.
func (c *TicTacToeAreaController) X() *PlayerController {
	if c.model.Game == nil {
		return nil
	}
	return c.occupantByID(c.model.Game.State.X)
}

// O returns the occupant holding the O role, or nil.
func (c *TicTacToeAreaController) O() *PlayerController {
	if c.model.Game == nil {
		return nil
	}
	return c.occupantByID(c.model.Game.State.O)
}

// MoveCount is the number of moves the server has accepted.
func (c *TicTacToeAreaController) MoveCount() int {
	if c.model.Game == nil {
		return 0
	}
	return len(c.model.Game.State.Moves)
}

// Winner returns the winning occupant, or nil for a draw or an unfinished
// game.
func (c *TicTacToeAreaController) Winner() *PlayerController {
	if c.model.Game == nil || c.model.Game.State.Winner == "" {
		return nil
	}
	return c.occupantByID(c.model.Game.State.Winner)
}

// WhoseTurn returns the player allowed to move next, or nil when the game is
// not in progress. Turn follows from move-count parity.
func (c *TicTacToeAreaController) WhoseTurn() *PlayerController {
	if !c.IsActive() {
		return nil
	}
	if c.MoveCount()%2 == 0 {
		return c.X()
	}
	return c.O()
}

// IsOurTurn reports whether the local player is allowed to move next.
func (c *TicTacToeAreaController) IsOurTurn() bool {
	turn := c.WhoseTurn()
	return turn != nil && turn.ID == c.town.OurPlayerID()
}

// IsPlayer reports whether the local player holds either role.
func (c *TicTacToeAreaController) IsPlayer() bool {
	if c.model.Game == nil {
		return false
	}
	ourID := c.town.OurPlayerID()
	return ourID != "" && (c.model.Game.State.X == ourID || c.model.Game.State.O == ourID)
}

// GamePiece returns the local player's piece, or ErrPlayerNotInGame when
// they hold neither role.
func (c *TicTacToeAreaController) GamePiece() (string, error) {
	if c.model.Game != nil {
		ourID := c.town.OurPlayerID()
		if ourID != "" && c.model.Game.State.X == ourID {
			return "X", nil
		}
		if ourID != "" && c.model.Game.State.O == ourID {
			return "O", nil
		}
	}
	return "", ErrPlayerNotInGame
}

// History returns the archived results of finished games in this area, in
// the order they ended.
func (c *TicTacToeAreaController) History() []models.GameResult {
	history := make([]models.GameResult, len(c.model.History))
	copy(history, c.model.History)
	return history
}

// Status defaults to WAITING_TO_START when no instance exists.
func (c *TicTacToeAreaController) Status() models.GameStatus {
	if c.model.Game == nil {
		return models.GameWaitingToStart
	}
	return c.model.Game.State.Status
}

func (c *TicTacToeAreaController) IsActive() bool {
	return c.Status() == models.GameInProgress
}

func (c *TicTacToeAreaController) OnBoardChanged(fn func(Board)) {
	c.boardListeners = append(c.boardListeners, fn)
}

func (c *TicTacToeAreaController) OnTurnChanged(fn func(bool)) {
	c.turnListeners = append(c.turnListeners, fn)
}

// UpdateFrom absorbs a pushed model. Board and turn listeners fire only when
// the derived board or IsOurTurn actually changed.
func (c *TicTacToeAreaController) UpdateFrom(m models.Interactable, occupants []*PlayerController) {
	oldBoard := c.Board()
	oldTurn := c.IsOurTurn()

	c.updateOccupants(occupants)
	c.model = m
	if m.Game != nil {
		c.instanceID = m.Game.ID
	}

	newBoard := c.Board()
	if newBoard != oldBoard {
		for _, fn := range c.boardListeners {
			fn(newBoard)
		}
	}
	newTurn := c.IsOurTurn()
	if newTurn != oldTurn {
		for _, fn := range c.turnListeners {
			fn(newTurn)
		}
	}
}

// JoinGame asks the server for a seat in the hosted game, recording the
// instance id from the acknowledgment.
func (c *TicTacToeAreaController) JoinGame(ctx context.Context) error {
	resp, err := c.town.SendInteractableCommand(ctx, models.InteractableCommand{
		InteractableID: c.id,
		Type:           models.CommandJoinGame,
	})
	if err != nil {
		return err
	}
	var result models.JoinGameResult
	if err := unmarshalPayload(resp.Payload, &result); err != nil {
		return err
	}
	c.instanceID = result.GameID
	return nil
}

// MakeMove sends one placement and waits for the acknowledgment. Errors with
// ErrNoGameInProgress when no live instance exists.
func (c *TicTacToeAreaController) MakeMove(ctx context.Context, row, col int) error {
	if !c.IsActive() || c.instanceID == "" {
		return ErrNoGameInProgress
	}
	piece, err := c.GamePiece()
	if err != nil {
		return err
	}
	_, err = c.town.SendInteractableCommand(ctx, models.InteractableCommand{
		InteractableID: c.id,
		Type:           models.CommandGameMove,
		GameID:         c.instanceID,
		Move:           &models.TicTacToeMove{Row: row, Col: col, GamePiece: piece},
	})
	return err
}

// LeaveGame abandons the local player's seat, forfeiting a live game.
func (c *TicTacToeAreaController) LeaveGame(ctx context.Context) error {
	if c.instanceID == "" {
		return ErrNoGameInProgress
	}
	_, err := c.town.SendInteractableCommand(ctx, models.InteractableCommand{
		InteractableID: c.id,
		Type:           models.CommandLeaveGame,
		GameID:         c.instanceID,
	})
	return err
}
