package search

import (
	"slices"
	"strconv"
	"time"

	"github.com/domino14/plybot/game"
)

// graphGame is a hand-built game over an explicit digraph: states are
// vertex names, a move is the destination vertex, payoffs are for player
// "a" with "b" getting the negation. It makes awkward tree shapes cheap to
// set up.
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

// counterGame never ends: every state has exactly one successor, counting
// upward. An optional per-move delay stands in for games whose expansion is
// expensive, which is what time budgets exist for.
type counterGame struct {
	delay time.Duration
}

var _ game.Rules[int, int, string] = counterGame{}

func (g counterGame) StartingState() int { return 0 }

func (g counterGame) ActivePlayer(int) (string, bool) { return "p", true }

func (g counterGame) IsFinished(int) bool { return false }

func (g counterGame) AllLegalMoves(s int) []int { return []int{s + 1} }

func (g counterGame) MakeMove(s, mv int) (int, error) {
	if mv != s+1 {
		return 0, &game.IllegalMoveError{Move: mv, Reason: "can only count up"}
	}
	if g.delay > 0 {
		time.Sleep(g.delay)
	}
	return mv, nil
}

func (g counterGame) Winner(int) (string, bool, error) {
	return "", false, &game.InvalidStateError{Op: "winner", Reason: "game is not finished"}
}

func (g counterGame) Evaluate(int) game.Valuation[string] {
	return game.Valuation[string]{"p": 0}
}

func (g counterGame) NodeKey(s int) game.Key { return game.Key(strconv.Itoa(s)) }

func (g counterGame) Describe(s int) string { return strconv.Itoa(s) }

// reachableCount walks the rules directly, independent of the table, and
// counts the distinct positions reachable from a state. It is the oracle
// the pruning tests compare the table against.
func reachableCount[S any, M comparable, P comparable](r game.Rules[S, M, P], from S) int {
	seen := map[game.Key]struct{}{r.NodeKey(from): {}}
	frontier := []S{from}
	for len(frontier) > 0 {
		s := frontier[len(frontier)-1]
		frontier = frontier[:len(frontier)-1]
		for _, mv := range r.AllLegalMoves(s) {
			next, err := r.MakeMove(s, mv)
			if err != nil {
				panic(err)
			}
			key := r.NodeKey(next)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			frontier = append(frontier, next)
		}
	}
	return len(seen)
}
