package search

import "github.com/domino14/plybot/game"

// PruningPolicy runs after every committed move and decides which table
// entries survive. Policies only ever remove nodes; the table never grows
// during a prune.
type PruningPolicy[S any, M comparable, P comparable] interface {
	// Prune removes entries per the policy and returns how many went away.
	Prune(d *Driver[S, M, P]) int
}

// KeepAll retains the whole table. Transpositions from abandoned lines stay
// warm, at the cost of memory.
type KeepAll[S any, M comparable, P comparable] struct{}

func (KeepAll[S, M, P]) Prune(*Driver[S, M, P]) int { return 0 }

// ReachabilityPruner drops every position the game can no longer reach:
// anything outside the transitive successor hull of the new current node.
// Reachability is computed forward from the current node over successor
// keys; nothing tracks predecessors. A pruned position that turns up again
// through a later transposition is simply re-inserted and re-scored.
type ReachabilityPruner[S any, M comparable, P comparable] struct{}

func (ReachabilityPruner[S, M, P]) Prune(d *Driver[S, M, P]) int {
	t := d.Table()
	cur := d.CurrentNode().Key()
	reachable := map[game.Key]struct{}{cur: {}}
	frontier := []game.Key{cur}
	for len(frontier) > 0 {
		key := frontier[len(frontier)-1]
		frontier = frontier[:len(frontier)-1]
		n, ok := t.Get(key)
		if !ok {
			continue
		}
		for _, succ := range n.SuccessorKeys() {
			if _, ok := reachable[succ]; ok {
				continue
			}
			reachable[succ] = struct{}{}
			frontier = append(frontier, succ)
		}
	}

	removed := 0
	for _, key := range t.Keys() {
		if _, ok := reachable[key]; ok {
			continue
		}
		if t.Remove(key) {
			removed++
		}
	}
	return removed
}
