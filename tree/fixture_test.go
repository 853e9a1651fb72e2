package tree

import (
	"slices"

	"github.com/domino14/plybot/game"
)

// graphGame is a hand-built game over an explicit digraph. It makes shapes
// that real games produce only deep in their trees (diamond transpositions,
// cycles, dangling frontiers) trivial to set up. States are vertex names, a
// move is the destination vertex, and payoffs are given for player "a" with
// "b" getting the negation.
type graphGame struct {
	start    string
	edges    map[string][]string
	active   map[string]string  // player to move per vertex, "a" if absent
	terminal map[string]float64 // payoff for "a"; presence marks the vertex terminal
}

var _ game.Rules[string, string, string] = graphGame{}

func (g graphGame) StartingState() string { return g.start }

func (g graphGame) ActivePlayer(s string) (string, bool) {
	if _, ok := g.terminal[s]; ok {
		return "", false
	}
	if p, ok := g.active[s]; ok {
		return p, true
	}
	return "a", true
}

func (g graphGame) IsFinished(s string) bool {
	_, ok := g.terminal[s]
	return ok
}

func (g graphGame) AllLegalMoves(s string) []string {
	if g.IsFinished(s) {
		return nil
	}
	return g.edges[s]
}

func (g graphGame) MakeMove(s, mv string) (string, error) {
	if g.IsFinished(s) {
		return "", &game.IllegalMoveError{Move: mv, Reason: "game is already finished"}
	}
	if !slices.Contains(g.edges[s], mv) {
		return "", &game.IllegalMoveError{Move: mv, Reason: "no such edge"}
	}
	return mv, nil
}

func (g graphGame) Winner(s string) (string, bool, error) {
	v, ok := g.terminal[s]
	if !ok {
		return "", false, &game.InvalidStateError{Op: "winner", Reason: "game is not finished"}
	}
	switch {
	case v > 0:
		return "a", true, nil
	case v < 0:
		return "b", true, nil
	}
	return "", false, nil
}

func (g graphGame) Evaluate(s string) game.Valuation[string] {
	if v, ok := g.terminal[s]; ok {
		return game.Valuation[string]{"a": v, "b": -v}
	}
	return game.Valuation[string]{"a": 0, "b": 0}
}

func (g graphGame) NodeKey(s string) game.Key { return game.Key(s) }

func (g graphGame) Describe(s string) string { return s }
