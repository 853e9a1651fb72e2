// Package tictactoe is the smallest real instantiation of the engine's
// capability set: the ordinary 3×3 game. It exists to exercise the engine
// end to end; nothing in the engine depends on it.
package tictactoe

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/domino14/plybot/game"
)

// Player marks a side. The zero value means nobody: an empty cell, or no
// player to move on a finished board.
type Player uint8

const (
	Nobody Player = iota
	PlayerX
	PlayerO
)

func (p Player) String() string {
	switch p {
	case PlayerX:
		return "X"
	case PlayerO:
		return "O"
	}
	return " "
}

func (p Player) opponent() Player {
	switch p {
	case PlayerX:
		return PlayerO
	case PlayerO:
		return PlayerX
	}
	return Nobody
}

// Move is a cell coordinate. Col and Row both run 0 through 2, with (0,0)
// the top-left corner.
type Move struct {
	Col, Row int
}

func (m Move) String() string {
	return fmt.Sprintf("(%d,%d)", m.Col, m.Row)
}

// ParseMove reads a move as typed at a prompt: "col,row", with or without
// surrounding parentheses.
func ParseMove(s string) (Move, error) {
	s = strings.Trim(strings.TrimSpace(s), "()")
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return Move{}, fmt.Errorf("expected col,row but got %q", s)
	}
	col, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return Move{}, fmt.Errorf("bad column in %q: %w", s, err)
	}
	row, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return Move{}, fmt.Errorf("bad row in %q: %w", s, err)
	}
	return Move{Col: col, Row: row}, nil
}

// State is a full position: the nine cells plus whose turn it is. It is a
// plain value; MakeMove returns fresh copies and never mutates. The active
// player is Nobody exactly when the game is over.
type State struct {
	cells  [9]Player // column-major: index col*3+row
	active Player
}

func (s State) cell(col, row int) Player { return s.cells[col*3+row] }

// lines are the eight winning cell-index triples, column-major.
var lines = [8][3]int{
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8}, // rows
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8}, // columns
	{0, 4, 8}, {2, 4, 6}, // diagonals
}

func winningPlayer(cells [9]Player) Player {
	for _, ln := range lines {
		if cells[ln[0]] != Nobody && cells[ln[0]] == cells[ln[1]] && cells[ln[1]] == cells[ln[2]] {
			return cells[ln[0]]
		}
	}
	return Nobody
}

func boardFull(cells [9]Player) bool {
	for _, c := range cells {
		if c == Nobody {
			return false
		}
	}
	return true
}

// Rules implements game.Rules for tic-tac-toe.
type Rules struct{}

var _ game.Rules[State, Move, Player] = Rules{}

func (Rules) StartingState() State {
	return State{active: PlayerX}
}

func (Rules) ActivePlayer(s State) (Player, bool) {
	if s.active == Nobody {
		return Nobody, false
	}
	return s.active, true
}

func (Rules) IsFinished(s State) bool { return s.active == Nobody }

func (Rules) AllLegalMoves(s State) []Move {
	if s.active == Nobody {
		return nil
	}
	moves := make([]Move, 0, 9)
	for col := 0; col < 3; col++ {
		for row := 0; row < 3; row++ {
			if s.cell(col, row) == Nobody {
				moves = append(moves, Move{Col: col, Row: row})
			}
		}
	}
	return moves
}

func (Rules) MakeMove(s State, mv Move) (State, error) {
	if s.active == Nobody {
		return State{}, &game.IllegalMoveError{Move: mv, Reason: "game is already finished"}
	}
	if mv.Col < 0 || mv.Col > 2 || mv.Row < 0 || mv.Row > 2 {
		return State{}, &game.IllegalMoveError{Move: mv, Reason: "cell is off the board"}
	}
	idx := mv.Col*3 + mv.Row
	if s.cells[idx] != Nobody {
		return State{}, &game.IllegalMoveError{Move: mv, Reason: "cell is already taken"}
	}
	next := s
	next.cells[idx] = s.active
	if winningPlayer(next.cells) != Nobody || boardFull(next.cells) {
		next.active = Nobody
	} else {
		next.active = s.active.opponent()
	}
	return next, nil
}

func (Rules) Winner(s State) (Player, bool, error) {
	if s.active != Nobody {
		return Nobody, false, &game.InvalidStateError{Op: "winner", Reason: "game is not finished"}
	}
	w := winningPlayer(s.cells)
	if w == Nobody {
		return Nobody, false, nil
	}
	return w, true, nil
}

// Evaluate is zero-sum: a win is +1 for the winner and -1 for the loser,
// and both a draw and an unfinished game are 0 for both sides.
func (Rules) Evaluate(s State) game.Valuation[Player] {
	if s.active == Nobody {
		switch winningPlayer(s.cells) {
		case PlayerX:
			return game.Valuation[Player]{PlayerX: 1, PlayerO: -1}
		case PlayerO:
			return game.Valuation[Player]{PlayerX: -1, PlayerO: 1}
		}
	}
	return game.Valuation[Player]{PlayerX: 0, PlayerO: 0}
}

// NodeKey is the nine cells in column-major order. The side to move is
// recoverable from the piece counts, so the board alone identifies the
// position; any move order reaching the same board collapses to one key.
func (Rules) NodeKey(s State) game.Key {
	var b strings.Builder
	b.Grow(9)
	for _, c := range s.cells {
		b.WriteString(c.String())
	}
	return game.Key(b.String())
}

func (Rules) Describe(s State) string {
	var b strings.Builder
	for row := 0; row < 3; row++ {
		if row > 0 {
			b.WriteString("---+---+---\n")
		}
		fmt.Fprintf(&b, " %s | %s | %s\n", s.cell(0, row), s.cell(1, row), s.cell(2, row))
	}
	switch {
	case s.active != Nobody:
		fmt.Fprintf(&b, "Move: %s", s.active)
	default:
		if w := winningPlayer(s.cells); w != Nobody {
			fmt.Fprintf(&b, "Winner: %s", w)
		} else {
			b.WriteString("Draw")
		}
	}
	return b.String()
}
