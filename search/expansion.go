package search

// ExpansionStrategy is one unit of tree growth. A step expands some set of
// nodes, routing every product through the table. The return value says
// whether another step could still do work, not whether this one did any.
type ExpansionStrategy[S any, M comparable, P comparable] interface {
	Step(d *Driver[S, M, P]) (bool, error)
}

// CurrentNodeExpansion expands only the node the game is actually at. Once
// that node is expanded every further step is a no-op until a commit moves
// the current position.
type CurrentNodeExpansion[S any, M comparable, P comparable] struct{}

func (CurrentNodeExpansion[S, M, P]) Step(d *Driver[S, M, P]) (bool, error) {
	cur := d.CurrentNode()
	if cur.Expanded() {
		return false, nil
	}
	return d.Table().Expand(cur)
}

// OneStepExpansion advances the whole frontier: every node that is resident
// and unexpanded when the step begins is expanded exactly once. Nodes
// created during the sweep wait for the next step. The step reports work
// remaining only if some expanded node actually had successors; a sweep
// that only closed out terminal positions is a fixed point.
type OneStepExpansion[S any, M comparable, P comparable] struct{}

func (OneStepExpansion[S, M, P]) Step(d *Driver[S, M, P]) (bool, error) {
	progressed := false
	for _, n := range d.Table().Unexpanded() {
		hadSuccessors, err := d.Table().Expand(n)
		if err != nil {
			return false, err
		}
		if hadSuccessors {
			progressed = true
		}
	}
	return progressed, nil
}
