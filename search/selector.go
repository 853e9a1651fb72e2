package search

import (
	"lukechampine.com/frand"

	"github.com/domino14/plybot/game"
)

// MoveSelector turns the scored tree into a single move for the current
// position. Selectors run after the expansion phase. When a budget stopped
// expansion before any successor earned a score, the score-aware selectors
// fall back to the full legal move set: running out of budget is a normal
// outcome and must not fail the decision.
type MoveSelector[S any, M comparable, P comparable] interface {
	Select(d *Driver[S, M, P]) (M, error)
}

// candidateMoves returns the moves tied for best when any successor has a
// defined score, else every legal move.
func candidateMoves[S any, M comparable, P comparable](d *Driver[S, M, P]) ([]M, error) {
	if d.IsFinished() {
		return nil, &game.IllegalMoveError{Reason: "game is already finished"}
	}
	if best := d.Scorer().BestMoves(d.Table(), d.CurrentNode()); len(best) > 0 {
		return best, nil
	}
	moves := d.AllLegalMoves()
	if len(moves) == 0 {
		return nil, &game.InvalidStateError{Op: "select-move", Reason: "no legal moves in a non-terminal position"}
	}
	return moves, nil
}

// FirstMoveSelector picks the lowest-ordered move achieving the best score.
// Deterministic, and therefore exploitable by an opponent who knows it.
type FirstMoveSelector[S any, M comparable, P comparable] struct{}

func (FirstMoveSelector[S, M, P]) Select(d *Driver[S, M, P]) (M, error) {
	moves, err := candidateMoves(d)
	if err != nil {
		var zero M
		return zero, err
	}
	return moves[0], nil
}

// RandomMoveSelector ignores scores entirely and plays uniformly at random
// over the legal moves. It is the baseline opponent.
type RandomMoveSelector[S any, M comparable, P comparable] struct{}

func (RandomMoveSelector[S, M, P]) Select(d *Driver[S, M, P]) (M, error) {
	var zero M
	if d.IsFinished() {
		return zero, &game.IllegalMoveError{Reason: "game is already finished"}
	}
	moves := d.AllLegalMoves()
	if len(moves) == 0 {
		return zero, &game.InvalidStateError{Op: "select-move", Reason: "no legal moves in a non-terminal position"}
	}
	return moves[frand.Intn(len(moves))], nil
}

// BestRandomMoveSelector picks uniformly among the moves tied for the best
// score, keeping optimal play unpredictable.
type BestRandomMoveSelector[S any, M comparable, P comparable] struct{}

func (BestRandomMoveSelector[S, M, P]) Select(d *Driver[S, M, P]) (M, error) {
	moves, err := candidateMoves(d)
	if err != nil {
		var zero M
		return zero, err
	}
	return moves[frand.Intn(len(moves))], nil
}
