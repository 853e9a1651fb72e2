package tree

import (
	"sync/atomic"

	"github.com/samber/lo"

	"github.com/domino14/plybot/game"
)

// AddResult says what AddOrMerge did with a node.
type AddResult int

const (
	// Inserted means the position was new and the node is now resident.
	Inserted AddResult = iota
	// Merged means the position was already resident and the incoming node
	// was folded into the existing one.
	Merged
)

// Table is the transposition table: every distinct position maps to exactly
// one resident node. All node creation and expansion routes through the
// table, which is what guarantees uniqueness. A generation counter moves on
// every structural change (insert, merge, expansion, removal); node score
// caches are tagged with the generation they were computed at and silently
// expire when it moves.
//
// The table is single-writer. The statistics counters are atomics only so a
// progress ticker on another goroutine can read them while a search runs.
type Table[S any, M comparable, P comparable] struct {
	rules game.Rules[S, M, P]
	nodes map[game.Key]*Node[S, M, P]
	gen   uint64

	inserted atomic.Uint64
	merged   atomic.Uint64
	expanded atomic.Uint64
	removed  atomic.Uint64
}

// TableStats is a point-in-time snapshot of the table counters.
type TableStats struct {
	Inserted uint64
	Merged   uint64
	Expanded uint64
	Removed  uint64
}

// NewTable builds an empty table over the given adapter.
func NewTable[S any, M comparable, P comparable](rules game.Rules[S, M, P]) *Table[S, M, P] {
	return &Table[S, M, P]{
		rules: rules,
		nodes: make(map[game.Key]*Node[S, M, P]),
		gen:   1,
	}
}

// Rules returns the adapter the table was built over.
func (t *Table[S, M, P]) Rules() game.Rules[S, M, P] { return t.rules }

// NewNode builds a node for a state without making it resident. Route it
// through AddOrMerge before handing the position to anything else.
func (t *Table[S, M, P]) NewNode(state S) *Node[S, M, P] {
	return newNode(t.rules, state)
}

// AddOrMerge makes the node's position resident: a new position is inserted
// as-is, a known one absorbs the incoming node via Merge. This is the only
// write path into the table.
func (t *Table[S, M, P]) AddOrMerge(n *Node[S, M, P]) (AddResult, error) {
	if existing, ok := t.nodes[n.key]; ok {
		if err := existing.Merge(n); err != nil {
			return Merged, err
		}
		t.gen++
		t.merged.Add(1)
		return Merged, nil
	}
	t.nodes[n.key] = n
	t.gen++
	t.inserted.Add(1)
	return Inserted, nil
}

// Expand generates the node's successors and routes every one of them back
// through AddOrMerge, then drops the node's cached scores. It returns
// whether the node has any successors at all; terminal nodes expand to
// none. Expanding a node twice is a contract violation and fails with an
// *InvalidStateError.
func (t *Table[S, M, P]) Expand(n *Node[S, M, P]) (bool, error) {
	succs, err := n.expand()
	if err != nil {
		return false, err
	}
	for _, sc := range succs {
		if _, err := t.AddOrMerge(sc.node); err != nil {
			return false, err
		}
	}
	n.dropCaches()
	t.gen++
	t.expanded.Add(1)
	return len(succs) > 0, nil
}

// Get returns the resident node for a key.
func (t *Table[S, M, P]) Get(key game.Key) (*Node[S, M, P], bool) {
	n, ok := t.nodes[key]
	return n, ok
}

// Size returns the number of resident positions.
func (t *Table[S, M, P]) Size() int { return len(t.nodes) }

// Keys returns a snapshot of every resident key. The snapshot stays valid
// while the table is mutated underneath it.
func (t *Table[S, M, P]) Keys() []game.Key {
	return lo.Keys(t.nodes)
}

// Unexpanded returns a snapshot of every resident node that still needs
// expansion.
func (t *Table[S, M, P]) Unexpanded() []*Node[S, M, P] {
	return lo.Filter(lo.Values(t.nodes), func(n *Node[S, M, P], _ int) bool {
		return !n.expanded
	})
}

// HasUnexpanded reports whether any resident node still needs expansion.
func (t *Table[S, M, P]) HasUnexpanded() bool {
	for _, n := range t.nodes {
		if !n.expanded {
			return true
		}
	}
	return false
}

// Remove deletes a position outright. Only pruning should use this; the
// table never fixes up successor references pointing at removed keys, it
// relies on pruning to remove whole unreachable regions.
func (t *Table[S, M, P]) Remove(key game.Key) bool {
	if _, ok := t.nodes[key]; !ok {
		return false
	}
	delete(t.nodes, key)
	t.gen++
	t.removed.Add(1)
	return true
}

// Generation returns the current structural generation. Any insert, merge,
// expansion or removal moves it forward.
func (t *Table[S, M, P]) Generation() uint64 { return t.gen }

// Stats returns a snapshot of the table counters. Safe to call from another
// goroutine.
func (t *Table[S, M, P]) Stats() TableStats {
	return TableStats{
		Inserted: t.inserted.Load(),
		Merged:   t.merged.Load(),
		Expanded: t.expanded.Load(),
		Removed:  t.removed.Load(),
	}
}
