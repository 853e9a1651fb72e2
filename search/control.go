package search

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/domino14/plybot/game"
	"github.com/domino14/plybot/tree"
)

// ExpansionControl decides how much work the expansion phase of one
// decision cycle gets. A control is itself a strategy, so controls nest,
// and the chain order is the semantics: bounding a full expansion runs the
// full expansion to its fixed point inside a single step and the budget
// never fires, while a full expansion of bounded steps stops at the budget.
type ExpansionControl[S any, M comparable, P comparable] interface {
	ExpansionStrategy[S, M, P]
	// Expand performs one decision cycle's worth of expansion.
	Expand(d *Driver[S, M, P]) error
}

// StepOnce runs exactly one step of the inner strategy per cycle.
type StepOnce[S any, M comparable, P comparable] struct {
	inner ExpansionStrategy[S, M, P]
}

func NewStepOnce[S any, M comparable, P comparable](inner ExpansionStrategy[S, M, P]) *StepOnce[S, M, P] {
	return &StepOnce[S, M, P]{inner: inner}
}

func (c *StepOnce[S, M, P]) Step(d *Driver[S, M, P]) (bool, error) {
	return c.inner.Step(d)
}

func (c *StepOnce[S, M, P]) Expand(d *Driver[S, M, P]) error {
	_, err := c.inner.Step(d)
	return err
}

// FullExpansion steps the inner strategy until no resident node is left
// unexpanded. It also stops when the inner strategy reports no progress, so
// a strategy that cannot reach the remaining frontier does not loop
// forever.
type FullExpansion[S any, M comparable, P comparable] struct {
	inner ExpansionStrategy[S, M, P]
}

func NewFullExpansion[S any, M comparable, P comparable](inner ExpansionStrategy[S, M, P]) *FullExpansion[S, M, P] {
	return &FullExpansion[S, M, P]{inner: inner}
}

// Step runs the whole fixed-point loop before reporting that nothing is
// left. A budget wrapped around FullExpansion therefore cannot interrupt
// it; put the budget inside if that is not what you want.
func (c *FullExpansion[S, M, P]) Step(d *Driver[S, M, P]) (bool, error) {
	if err := c.Expand(d); err != nil {
		return false, err
	}
	return false, nil
}

func (c *FullExpansion[S, M, P]) Expand(d *Driver[S, M, P]) error {
	for d.Table().HasUnexpanded() {
		progressed, err := c.inner.Step(d)
		if err != nil {
			return err
		}
		if !progressed {
			break
		}
	}
	return nil
}

// BoundedExpansion wraps a strategy with wall-clock and tree-size budgets.
// Budgets are checked after each inner step, never during one, so a step
// overshoots by whatever work it was already committed to. A zero limit
// disables that budget. The clock covers one burst of consecutive steps and
// re-arms on the next burst. Exhausting a budget stops expansion without an
// error; it is a normal outcome, visible only in the debug log.
type BoundedExpansion[S any, M comparable, P comparable] struct {
	inner     ExpansionStrategy[S, M, P]
	timeLimit time.Duration
	nodeLimit int
	started   time.Time
}

func NewBoundedExpansion[S any, M comparable, P comparable](inner ExpansionStrategy[S, M, P], timeLimit time.Duration, nodeLimit int) *BoundedExpansion[S, M, P] {
	return &BoundedExpansion[S, M, P]{inner: inner, timeLimit: timeLimit, nodeLimit: nodeLimit}
}

func (c *BoundedExpansion[S, M, P]) Step(d *Driver[S, M, P]) (bool, error) {
	if c.started.IsZero() {
		c.started = time.Now()
	}
	more, err := c.inner.Step(d)
	if err != nil {
		return false, err
	}
	if c.exhausted(d) {
		log.Debug().Int("tree-size", d.TreeSize()).
			Dur("elapsed", time.Since(c.started)).Msg("expansion-budget-exhausted")
		more = false
	}
	if !more {
		c.started = time.Time{}
	}
	return more, nil
}

func (c *BoundedExpansion[S, M, P]) exhausted(d *Driver[S, M, P]) bool {
	if c.nodeLimit > 0 && d.TreeSize() >= c.nodeLimit {
		return true
	}
	if c.timeLimit > 0 && time.Since(c.started) >= c.timeLimit {
		return true
	}
	return false
}

func (c *BoundedExpansion[S, M, P]) Expand(d *Driver[S, M, P]) error {
	for {
		more, err := c.Step(d)
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
}

// ForwardSweep expands in layers away from the current node: layer zero is
// the current node itself, layer k+1 holds every successor of layer k not
// already seen in this sweep. One step expands one layer; a full sweep runs
// to the configured depth in plies or stops early once a layer contributes
// nothing new. The sweep remembers which position it started from: if the
// game has moved on, the next step begins a fresh sweep, while an
// unfinished sweep from the same position picks up where a budget stopped
// it.
type ForwardSweep[S any, M comparable, P comparable] struct {
	depth int

	origin game.Key
	layer  []*tree.Node[S, M, P]
	seen   map[game.Key]struct{}
	plies  int
}

// NewForwardSweep builds the sweep control. depth is in plies and must be
// at least 1.
func NewForwardSweep[S any, M comparable, P comparable](depth int) (*ForwardSweep[S, M, P], error) {
	if depth < 1 {
		return nil, &game.InvalidStateError{Op: "forward-sweep", Reason: "search depth must be at least 1"}
	}
	return &ForwardSweep[S, M, P]{depth: depth}, nil
}

func (c *ForwardSweep[S, M, P]) begin(d *Driver[S, M, P]) {
	cur := d.CurrentNode()
	c.origin = cur.Key()
	c.layer = []*tree.Node[S, M, P]{cur}
	c.seen = map[game.Key]struct{}{cur.Key(): {}}
	c.plies = 0
}

func (c *ForwardSweep[S, M, P]) resetSweep() {
	c.origin = ""
	c.layer = nil
	c.seen = nil
	c.plies = 0
}

// Step expands the next layer of the sweep.
func (c *ForwardSweep[S, M, P]) Step(d *Driver[S, M, P]) (bool, error) {
	if c.layer == nil || c.origin != d.CurrentNode().Key() {
		c.begin(d)
	}
	var next []*tree.Node[S, M, P]
	for _, n := range c.layer {
		if !n.Expanded() {
			if _, err := d.Table().Expand(n); err != nil {
				return false, err
			}
		}
		for _, key := range n.SuccessorKeys() {
			if _, ok := c.seen[key]; ok {
				continue
			}
			c.seen[key] = struct{}{}
			child, ok := d.Table().Get(key)
			if !ok {
				continue
			}
			next = append(next, child)
		}
	}
	c.plies++
	c.layer = next
	if c.plies >= c.depth || len(next) == 0 {
		c.resetSweep()
		return false, nil
	}
	return true, nil
}

func (c *ForwardSweep[S, M, P]) Expand(d *Driver[S, M, P]) error {
	plies := 0
	for {
		more, err := c.Step(d)
		if err != nil {
			return err
		}
		plies++
		if !more {
			break
		}
	}
	log.Debug().Int("plies", plies).Int("tree-size", d.TreeSize()).Msg("sweep-finished")
	return nil
}
