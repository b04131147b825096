// game/tictactoe.go
package game

import (
	"github.com/google/uuid"

	"github.com/wfunc/townserver/models"
)

// TicTacToe is one game instance. The first player to join owns the X role,
// the second owns O; the game starts as soon as both roles are filled. Whose
// turn it is follows from the parity of the move count, never from stored
// turn state, so the game can always be replayed from its move list.
type TicTacToe struct {
	id     string
	x      string
	o      string
	moves  []models.TicTacToeMove
	status models.GameStatus
	winner string
}

// NewTicTacToe creates an empty instance waiting for two players.
func NewTicTacToe() *TicTacToe {
	return &TicTacToe{
		id:     uuid.New().String(),
		status: models.GameWaitingToStart,
	}
}

func (g *TicTacToe) ID() string {
	return g.id
}

func (g *TicTacToe) Status() models.GameStatus {
	return g.status
}

// Players returns the participant ids in role order (x first).
func (g *TicTacToe) Players() []string {
	var players []string
	if g.x != "" {
		players = append(players, g.x)
	}
	if g.o != "" {
		players = append(players, g.o)
	}
	return players
}

// HasPlayer reports whether the given player holds either role.
func (g *TicTacToe) HasPlayer(playerID string) bool {
	return playerID != "" && (g.x == playerID || g.o == playerID)
}

// Join assigns the next free role to the player and starts the game once
// both roles are filled. A player may not hold both roles, and joining is
// only possible before the game has started.
func (g *TicTacToe) Join(playerID string) error {
	if g.status != models.GameWaitingToStart {
		return models.NewInvalidParameters(models.MessageGameNotStartable)
	}
	if g.HasPlayer(playerID) {
		return models.NewInvalidParameters(models.MessageAlreadyInGame)
	}
	switch {
	case g.x == "":
		g.x = playerID
	case g.o == "":
		g.o = playerID
	default:
		return models.NewInvalidParameters(models.MessageGameFull)
	}

	if g.x != "" && g.o != "" {
		g.status = models.GameInProgress
	}
	return nil
}

// whoseTurn returns the player id allowed to move next. Even move counts
// belong to x, odd to o.
func (g *TicTacToe) whoseTurn() string {
	if len(g.moves)%2 == 0 {
		return g.x
	}
	return g.o
}

// ApplyMove validates and appends one move, then checks for an ended game.
// Rejections leave the game untouched.
func (g *TicTacToe) ApplyMove(playerID string, move models.TicTacToeMove) error {
	if g.status != models.GameInProgress {
		return models.NewInvalidParameters(models.MessageGameNotInProgress)
	}
	if !g.HasPlayer(playerID) {
		return models.NewInvalidParameters(models.MessagePlayerNotInGame)
	}
	if move.Row < 0 || move.Row > 2 || move.Col < 0 || move.Col > 2 {
		return models.NewInvalidParameters(models.MessageInvalidMove)
	}
	if g.whoseTurn() != playerID {
		return models.NewInvalidParameters(models.MessageMoveOutOfTurn)
	}
	for _, m := range g.moves {
		if m.Row == move.Row && m.Col == move.Col {
			return models.NewInvalidParameters(models.MessageSpaceOccupied)
		}
	}

	piece := "X"
	if playerID == g.o {
		piece = "O"
	}
	g.moves = append(g.moves, models.TicTacToeMove{
		Row:       move.Row,
		Col:       move.Col,
		GamePiece: piece,
	})
	g.checkEnded()
	return nil
}

// Leave ends a live game as a forfeit: the remaining player wins. Leaving a
// waiting game simply frees the role.
func (g *TicTacToe) Leave(playerID string) error {
	if !g.HasPlayer(playerID) {
		return models.NewInvalidParameters(models.MessagePlayerNotInGame)
	}
	if g.status == models.GameInProgress {
		if playerID == g.x {
			g.winner = g.o
		} else {
			g.winner = g.x
		}
		g.status = models.GameOver
		return nil
	}
	if playerID == g.x {
		g.x = ""
	} else {
		g.o = ""
	}
	return nil
}

var winLines = [8][3][2]int{
	{{0, 0}, {0, 1}, {0, 2}},
	{{1, 0}, {1, 1}, {1, 2}},
	{{2, 0}, {2, 1}, {2, 2}},
	{{0, 0}, {1, 0}, {2, 0}},
	{{0, 1}, {1, 1}, {2, 1}},
	{{0, 2}, {1, 2}, {2, 2}},
	{{0, 0}, {1, 1}, {2, 2}},
	{{0, 2}, {1, 1}, {2, 0}},
}

// checkEnded scans the fixed 3x3 grid for a completed line, then for a full
// board. Run after every accepted move.
func (g *TicTacToe) checkEnded() {
	var board [3][3]string
	for _, m := range g.moves {
		board[m.Row][m.Col] = m.GamePiece
	}

	for _, line := range winLines {
		a, b, c := line[0], line[1], line[2]
		piece := board[a[0]][a[1]]
		if piece != "" && piece == board[b[0]][b[1]] && piece == board[c[0]][c[1]] {
			if piece == "X" {
				g.winner = g.x
			} else {
				g.winner = g.o
			}
			g.status = models.GameOver
			return
		}
	}

	if len(g.moves) == 9 {
		g.status = models.GameOver
	}
}

// ToModel produces the wire snapshot of this instance.
func (g *TicTacToe) ToModel() *models.GameInstance {
	moves := make([]models.TicTacToeMove, len(g.moves))
	copy(moves, g.moves)
	return &models.GameInstance{
		ID:      g.id,
		Players: g.Players(),
		State: models.TicTacToeGameState{
			X:      g.x,
			O:      g.o,
			Moves:  moves,
			Status: g.status,
			Winner: g.winner,
		},
	}
}
