// Package tree implements the transposition table and its nodes: one node
// per distinct position, shared by every line of play that reaches it. The
// table is the single owner of all nodes. Expansion is routed through the
// table so every generated successor is deduplicated before anything else
// can hold a reference to it.
package tree

import (
	"fmt"

	"github.com/domino14/plybot/game"
)

// Node wraps one game state known to the table. A node is created for the
// starting position or during the expansion of a parent, made resident via
// AddOrMerge, and never copied afterwards. Successors are recorded by key,
// not by pointer; the table resolves them.
type Node[S any, M comparable, P comparable] struct {
	rules game.Rules[S, M, P]
	state S
	key   game.Key

	expanded   bool
	moves      []M // legal moves in the adapter's enumeration order
	successors map[M]game.Key

	// Score caches, valid only while cachedAt matches the table generation.
	val       game.Valuation[P]
	bestMoves []M
	cachedAt  uint64
	hasCached bool
}

func newNode[S any, M comparable, P comparable](rules game.Rules[S, M, P], state S) *Node[S, M, P] {
	return &Node[S, M, P]{
		rules: rules,
		state: state,
		key:   rules.NodeKey(state),
	}
}

// State returns the wrapped game state.
func (n *Node[S, M, P]) State() S { return n.state }

// Key returns the canonical identity of the wrapped state.
func (n *Node[S, M, P]) Key() game.Key { return n.key }

// Expanded reports whether the node's successors have been generated. The
// flag only ever moves from false to true; merges keep it monotonic.
func (n *Node[S, M, P]) Expanded() bool { return n.expanded }

// Moves returns the legal moves discovered at expansion time, in the
// adapter's enumeration order. Nil before expansion.
func (n *Node[S, M, P]) Moves() []M { return n.moves }

// SuccessorKey returns the identity of the position mv leads to.
func (n *Node[S, M, P]) SuccessorKey(mv M) (game.Key, bool) {
	key, ok := n.successors[mv]
	return key, ok
}

// SuccessorKeys returns the identities of every successor, in move order.
func (n *Node[S, M, P]) SuccessorKeys() []game.Key {
	if len(n.moves) == 0 {
		return nil
	}
	keys := make([]game.Key, len(n.moves))
	for i, mv := range n.moves {
		keys[i] = n.successors[mv]
	}
	return keys
}

// SuccessorCount returns the number of distinct successor moves.
func (n *Node[S, M, P]) SuccessorCount() int { return len(n.successors) }

// successor pairs a move with the freshly built node it leads to, before
// table routing has deduplicated it.
type successor[S any, M comparable, P comparable] struct {
	move M
	node *Node[S, M, P]
}

// expand generates all successors of an unexpanded node. Only the table
// calls this; routing the result through AddOrMerge is what keeps positions
// unique. The successor map is populated in one shot, so a failed expansion
// leaves the node untouched and unexpanded.
func (n *Node[S, M, P]) expand() ([]successor[S, M, P], error) {
	if n.expanded {
		return nil, &game.InvalidStateError{Op: "expand", Reason: "node is already expanded"}
	}
	moves := n.rules.AllLegalMoves(n.state)
	succs := make([]successor[S, M, P], 0, len(moves))
	keys := make(map[M]game.Key, len(moves))
	for _, mv := range moves {
		next, err := n.rules.MakeMove(n.state, mv)
		if err != nil {
			return nil, err
		}
		child := newNode(n.rules, next)
		keys[mv] = child.key
		succs = append(succs, successor[S, M, P]{move: mv, node: child})
	}
	n.moves = moves
	n.successors = keys
	n.expanded = true
	return succs, nil
}

// Merge folds another node for the same position into this one: successor
// maps are unioned with unseen moves appended in the other node's order,
// the expanded flag is adopted monotonically, and cached scores are
// dropped. Merging an identical twin is a no-op, so the operation is
// idempotent.
func (n *Node[S, M, P]) Merge(other *Node[S, M, P]) error {
	if n.key != other.key {
		return &game.InvalidStateError{
			Op:     "merge",
			Reason: fmt.Sprintf("key mismatch: %q vs %q", n.key, other.key),
		}
	}
	if other == n {
		return nil
	}
	for _, mv := range other.moves {
		if _, ok := n.successors[mv]; ok {
			continue
		}
		if n.successors == nil {
			n.successors = make(map[M]game.Key, len(other.successors))
		}
		n.successors[mv] = other.successors[mv]
		n.moves = append(n.moves, mv)
	}
	if other.expanded {
		n.expanded = true
	}
	n.dropCaches()
	return nil
}

func (n *Node[S, M, P]) dropCaches() {
	n.val = nil
	n.bestMoves = nil
	n.hasCached = false
}

// cachedValuation returns the memoized score and best moves if they were
// computed at the given table generation.
func (n *Node[S, M, P]) cachedValuation(gen uint64) (game.Valuation[P], []M, bool) {
	if !n.hasCached || n.cachedAt != gen {
		return nil, nil, false
	}
	return n.val, n.bestMoves, true
}

func (n *Node[S, M, P]) memoize(gen uint64, val game.Valuation[P], best []M) {
	n.val = val
	n.bestMoves = best
	n.cachedAt = gen
	n.hasCached = true
}
