package game

import (
	"errors"
	"testing"

	"github.com/wfunc/townserver/models"
)

func isDomainError(err error) bool {
	var domainErr *models.InvalidParametersError
	return errors.As(err, &domainErr)
}

func newStartedGame(t *testing.T) *TicTacToe {
	t.Helper()
	g := NewTicTacToe()
	if err := g.Join("p1"); err != nil {
		t.Fatalf("first join failed: %v", err)
	}
	if g.Status() != models.GameWaitingToStart {
		t.Fatalf("expected game to wait for second player, got %s", g.Status())
	}
	if err := g.Join("p2"); err != nil {
		t.Fatalf("second join failed: %v", err)
	}
	return g
}

func mustMove(t *testing.T, g *TicTacToe, playerID string, row, col int) {
	t.Helper()
	if err := g.ApplyMove(playerID, models.TicTacToeMove{Row: row, Col: col}); err != nil {
		t.Fatalf("move (%d,%d) by %s failed: %v", row, col, playerID, err)
	}
}

func TestJoin_AssignsRolesInOrder(t *testing.T) {
	g := newStartedGame(t)

	m := g.ToModel()
	if m.State.X != "p1" {
		t.Errorf("expected first joiner to be x, got %s", m.State.X)
	}
	if m.State.O != "p2" {
		t.Errorf("expected second joiner to be o, got %s", m.State.O)
	}
	if g.Status() != models.GameInProgress {
		t.Errorf("expected game to start once both roles filled, got %s", g.Status())
	}
}

func TestJoin_RejectsThirdPlayer(t *testing.T) {
	g := newStartedGame(t)

	err := g.Join("p3")
	if err == nil {
		t.Fatal("expected third join to be rejected")
	}
	if !isDomainError(err) {
		t.Errorf("expected a domain error, got %v", err)
	}
}

func TestJoin_RejectsSamePlayerTwice(t *testing.T) {
	g := NewTicTacToe()
	if err := g.Join("p1"); err != nil {
		t.Fatalf("first join failed: %v", err)
	}
	if err := g.Join("p1"); err == nil {
		t.Fatal("expected duplicate join to be rejected")
	}
	if g.Status() != models.GameWaitingToStart {
		t.Errorf("status should remain WAITING_TO_START, got %s", g.Status())
	}
}

func TestApplyMove_BeforeStartRejected(t *testing.T) {
	g := NewTicTacToe()
	g.Join("p1")
	err := g.ApplyMove("p1", models.TicTacToeMove{Row: 0, Col: 0})
	if err == nil {
		t.Fatal("expected move before start to be rejected")
	}
	if len(g.ToModel().State.Moves) != 0 {
		t.Error("rejected move must not mutate state")
	}
}

func TestApplyMove_TurnAlternates(t *testing.T) {
	g := newStartedGame(t)

	// o may not open the game
	if err := g.ApplyMove("p2", models.TicTacToeMove{Row: 0, Col: 0}); err == nil {
		t.Fatal("expected out-of-turn move to be rejected")
	}

	mustMove(t, g, "p1", 0, 0)

	// x may not move twice in a row
	if err := g.ApplyMove("p1", models.TicTacToeMove{Row: 1, Col: 1}); err == nil {
		t.Fatal("expected out-of-turn move to be rejected")
	}

	mustMove(t, g, "p2", 1, 1)
	if len(g.ToModel().State.Moves) != 2 {
		t.Errorf("expected 2 moves recorded, got %d", len(g.ToModel().State.Moves))
	}
}

func TestApplyMove_OccupiedCellRejected(t *testing.T) {
	g := newStartedGame(t)
	mustMove(t, g, "p1", 0, 0)

	err := g.ApplyMove("p2", models.TicTacToeMove{Row: 0, Col: 0})
	if err == nil {
		t.Fatal("expected move onto occupied cell to be rejected")
	}
	if !isDomainError(err) {
		t.Errorf("expected a domain error, got %v", err)
	}
	if len(g.ToModel().State.Moves) != 1 {
		t.Error("rejected move must not mutate state")
	}
}

func TestApplyMove_OutOfBoundsRejected(t *testing.T) {
	g := newStartedGame(t)
	if err := g.ApplyMove("p1", models.TicTacToeMove{Row: 3, Col: 0}); err == nil {
		t.Fatal("expected out-of-bounds move to be rejected")
	}
	if err := g.ApplyMove("p1", models.TicTacToeMove{Row: 0, Col: -1}); err == nil {
		t.Fatal("expected out-of-bounds move to be rejected")
	}
}

func TestApplyMove_NonPlayerRejected(t *testing.T) {
	g := newStartedGame(t)
	if err := g.ApplyMove("stranger", models.TicTacToeMove{Row: 0, Col: 0}); err == nil {
		t.Fatal("expected move by non-participant to be rejected")
	}
}

func TestWin_Row(t *testing.T) {
	g := newStartedGame(t)
	mustMove(t, g, "p1", 0, 0)
	mustMove(t, g, "p2", 1, 0)
	mustMove(t, g, "p1", 0, 1)
	mustMove(t, g, "p2", 1, 1)
	mustMove(t, g, "p1", 0, 2)

	if g.Status() != models.GameOver {
		t.Fatalf("expected game over, got %s", g.Status())
	}
	if winner := g.ToModel().State.Winner; winner != "p1" {
		t.Errorf("expected p1 to win, got %q", winner)
	}
}

func TestWin_Column(t *testing.T) {
	g := newStartedGame(t)
	mustMove(t, g, "p1", 0, 0)
	mustMove(t, g, "p2", 0, 1)
	mustMove(t, g, "p1", 1, 0)
	mustMove(t, g, "p2", 1, 1)
	mustMove(t, g, "p1", 2, 0)

	if g.Status() != models.GameOver {
		t.Fatalf("expected game over, got %s", g.Status())
	}
	if winner := g.ToModel().State.Winner; winner != "p1" {
		t.Errorf("expected p1 to win, got %q", winner)
	}
}

func TestWin_DiagonalByO(t *testing.T) {
	g := newStartedGame(t)
	mustMove(t, g, "p1", 0, 1)
	mustMove(t, g, "p2", 0, 0)
	mustMove(t, g, "p1", 0, 2)
	mustMove(t, g, "p2", 1, 1)
	mustMove(t, g, "p1", 2, 1)
	mustMove(t, g, "p2", 2, 2)

	if g.Status() != models.GameOver {
		t.Fatalf("expected game over, got %s", g.Status())
	}
	if winner := g.ToModel().State.Winner; winner != "p2" {
		t.Errorf("expected p2 to win, got %q", winner)
	}
}

func TestWin_AntiDiagonal(t *testing.T) {
	g := newStartedGame(t)
	mustMove(t, g, "p1", 0, 2)
	mustMove(t, g, "p2", 0, 0)
	mustMove(t, g, "p1", 1, 1)
	mustMove(t, g, "p2", 0, 1)
	mustMove(t, g, "p1", 2, 0)

	if g.Status() != models.GameOver {
		t.Fatalf("expected game over, got %s", g.Status())
	}
	if winner := g.ToModel().State.Winner; winner != "p1" {
		t.Errorf("expected p1 to win, got %q", winner)
	}
}

func TestWin_EveryLine(t *testing.T) {
	lines := [8][3][2]int{
		{{0, 0}, {0, 1}, {0, 2}},
		{{1, 0}, {1, 1}, {1, 2}},
		{{2, 0}, {2, 1}, {2, 2}},
		{{0, 0}, {1, 0}, {2, 0}},
		{{0, 1}, {1, 1}, {2, 1}},
		{{0, 2}, {1, 2}, {2, 2}},
		{{0, 0}, {1, 1}, {2, 2}},
		{{0, 2}, {1, 1}, {2, 0}},
	}
	for _, line := range lines {
		g := newStartedGame(t)

		inLine := func(row, col int) bool {
			for _, cell := range line {
				if cell[0] == row && cell[1] == col {
					return true
				}
			}
			return false
		}
		var fillers [][2]int
		for row := 0; row < 3 && len(fillers) < 2; row++ {
			for col := 0; col < 3 && len(fillers) < 2; col++ {
				if !inLine(row, col) {
					fillers = append(fillers, [2]int{row, col})
				}
			}
		}

		mustMove(t, g, "p1", line[0][0], line[0][1])
		mustMove(t, g, "p2", fillers[0][0], fillers[0][1])
		mustMove(t, g, "p1", line[1][0], line[1][1])
		mustMove(t, g, "p2", fillers[1][0], fillers[1][1])
		mustMove(t, g, "p1", line[2][0], line[2][1])

		if g.Status() != models.GameOver {
			t.Errorf("line %v: expected game over, got %s", line, g.Status())
		}
		if winner := g.ToModel().State.Winner; winner != "p1" {
			t.Errorf("line %v: expected p1 to win, got %q", line, winner)
		}
	}
}

func TestDraw_FullBoardNoWinner(t *testing.T) {
	g := newStartedGame(t)
	// x: (0,0) (0,1) (1,2) (2,0) (2,2) / o: (0,2) (1,0) (1,1) (2,1) - no line
	mustMove(t, g, "p1", 0, 0)
	mustMove(t, g, "p2", 0, 2)
	mustMove(t, g, "p1", 0, 1)
	mustMove(t, g, "p2", 1, 0)
	mustMove(t, g, "p1", 1, 2)
	mustMove(t, g, "p2", 1, 1)
	mustMove(t, g, "p1", 2, 0)
	mustMove(t, g, "p2", 2, 1)
	mustMove(t, g, "p1", 2, 2)

	if g.Status() != models.GameOver {
		t.Fatalf("expected game over after 9 moves, got %s", g.Status())
	}
	if winner := g.ToModel().State.Winner; winner != "" {
		t.Errorf("expected a draw, got winner %q", winner)
	}
}

func TestLeave_MidGameForfeits(t *testing.T) {
	g := newStartedGame(t)
	mustMove(t, g, "p1", 0, 0)

	if err := g.Leave("p1"); err != nil {
		t.Fatalf("leave failed: %v", err)
	}
	if g.Status() != models.GameOver {
		t.Fatalf("expected game over after forfeit, got %s", g.Status())
	}
	if winner := g.ToModel().State.Winner; winner != "p2" {
		t.Errorf("expected remaining player to win, got %q", winner)
	}
}

func TestLeave_BeforeStartFreesRole(t *testing.T) {
	g := NewTicTacToe()
	g.Join("p1")
	if err := g.Leave("p1"); err != nil {
		t.Fatalf("leave failed: %v", err)
	}
	if g.Status() != models.GameWaitingToStart {
		t.Errorf("expected game still waiting, got %s", g.Status())
	}
	if err := g.Join("p3"); err != nil {
		t.Errorf("freed role should be joinable again: %v", err)
	}
}

func TestLeave_NonPlayerRejected(t *testing.T) {
	g := newStartedGame(t)
	if err := g.Leave("stranger"); err == nil {
		t.Fatal("expected leave by non-participant to be rejected")
	}
}

func TestToModel_CopiesMoves(t *testing.T) {
	g := newStartedGame(t)
	mustMove(t, g, "p1", 0, 0)

	m := g.ToModel()
	m.State.Moves[0].Row = 2

	if g.ToModel().State.Moves[0].Row != 0 {
		t.Error("mutating a model snapshot must not affect the game")
	}
}

func TestNewGame_HasFreshID(t *testing.T) {
	a := NewTicTacToe()
	b := NewTicTacToe()
	if a.ID() == b.ID() {
		t.Error("expected every instance to get its own id")
	}
}
