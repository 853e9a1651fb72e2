package tree

import "github.com/domino14/plybot/game"

// Minimax scores nodes by backward induction through the table: a terminal
// node takes its adapter evaluation, an expanded node takes the full
// valuation of the successor that maximizes the active player's score.
// Because the chosen successor's whole valuation propagates, the opponent's
// side of a zero-sum pair comes along for free.
//
// Scores are defined bottom-up only. An unexpanded non-terminal node has no
// valuation, and neither does an expanded node none of whose successors has
// one; there is no heuristic fallback. Results are memoized on the node and
// tagged with the table generation, so any structural change invalidates
// every cached score at once.
type Minimax[S any, M comparable, P comparable] struct{}

// Valuation returns the per-player score of the node, if defined.
func (m Minimax[S, M, P]) Valuation(t *Table[S, M, P], n *Node[S, M, P]) (game.Valuation[P], bool) {
	val, _, ok := m.valuation(t, n, make(map[game.Key]struct{}))
	return val, ok
}

// BestMoves returns the moves tied for the best reachable score for the
// active player, in the adapter's enumeration order. Nil when the node is
// terminal or has no scored successor yet.
func (m Minimax[S, M, P]) BestMoves(t *Table[S, M, P], n *Node[S, M, P]) []M {
	_, best, ok := m.valuation(t, n, make(map[game.Key]struct{}))
	if !ok {
		return nil
	}
	return best
}

func (m Minimax[S, M, P]) valuation(t *Table[S, M, P], n *Node[S, M, P], visiting map[game.Key]struct{}) (game.Valuation[P], []M, bool) {
	if val, best, ok := n.cachedValuation(t.gen); ok {
		return val, best, true
	}
	active, ok := t.rules.ActivePlayer(n.state)
	if !ok {
		// Terminal: the adapter evaluation is the truth.
		val := t.rules.Evaluate(n.state)
		n.memoize(t.gen, val, nil)
		return val, nil, true
	}
	if !n.expanded {
		return nil, nil, false
	}
	if _, seen := visiting[n.key]; seen {
		// Back edge in a cyclic game graph; count it as unknown for this
		// pass rather than recursing forever.
		return nil, nil, false
	}
	visiting[n.key] = struct{}{}
	defer delete(visiting, n.key)

	var best game.Valuation[P]
	var bestMoves []M
	for _, mv := range n.moves {
		child, ok := t.nodes[n.successors[mv]]
		if !ok {
			continue
		}
		val, _, ok := m.valuation(t, child, visiting)
		if !ok {
			continue
		}
		if best == nil || val[active] > best[active] {
			best = val
			bestMoves = []M{mv}
		} else if val[active] == best[active] {
			bestMoves = append(bestMoves, mv)
		}
	}
	if best == nil {
		return nil, nil, false
	}
	n.memoize(t.gen, best, bestMoves)
	return best, bestMoves, true
}
