// Package search wires the engine together: a Driver owning the
// transposition table and the current position, plus the policies injected
// into it. Expansion strategies decide which nodes one step touches;
// expansion controls decide how many steps a decision cycle gets; pruning
// policies decide what survives a committed move; move selectors turn
// scores into a move. Everything runs on the caller's goroutine.
package search

import (
	"context"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/domino14/plybot/game"
	"github.com/domino14/plybot/tree"
)

// Scorer assigns valuations to table-resident nodes.
type Scorer[S any, M comparable, P comparable] interface {
	// Valuation returns the node's per-player score, if defined.
	Valuation(t *tree.Table[S, M, P], n *tree.Node[S, M, P]) (game.Valuation[P], bool)
	// BestMoves returns the moves tied for the best score for the active
	// player, in the adapter's enumeration order, or nil if undefined.
	BestMoves(t *tree.Table[S, M, P], n *tree.Node[S, M, P]) []M
}

// Driver runs the decision cycle for one game: expand the tree under the
// configured control, pick a move, commit it, prune. It owns the table and
// tracks the current position. The zero-argument constructor seeds a
// working default policy set; use the setters to swap pieces in.
type Driver[S any, M comparable, P comparable] struct {
	rules    game.Rules[S, M, P]
	table    *tree.Table[S, M, P]
	current  *tree.Node[S, M, P]
	control  ExpansionControl[S, M, P]
	scorer   Scorer[S, M, P]
	selector MoveSelector[S, M, P]
	pruner   PruningPolicy[S, M, P]

	cycles     uint64
	cycleStart time.Time
	logStream  io.Writer
}

// NewDriver builds a driver over the adapter and makes the starting
// position resident. Defaults: one current-node expansion step per cycle,
// minimax scoring, random selection among the best moves, no pruning.
func NewDriver[S any, M comparable, P comparable](rules game.Rules[S, M, P]) (*Driver[S, M, P], error) {
	t := tree.NewTable(rules)
	start := t.NewNode(rules.StartingState())
	if _, err := t.AddOrMerge(start); err != nil {
		return nil, err
	}
	return &Driver[S, M, P]{
		rules:    rules,
		table:    t,
		current:  start,
		control:  NewStepOnce[S, M, P](CurrentNodeExpansion[S, M, P]{}),
		scorer:   tree.Minimax[S, M, P]{},
		selector: BestRandomMoveSelector[S, M, P]{},
		pruner:   KeepAll[S, M, P]{},
	}, nil
}

// SetExpansionControl replaces the per-cycle expansion policy.
func (d *Driver[S, M, P]) SetExpansionControl(c ExpansionControl[S, M, P]) { d.control = c }

// SetScorer replaces the scorer.
func (d *Driver[S, M, P]) SetScorer(s Scorer[S, M, P]) { d.scorer = s }

// SetMoveSelector replaces the move selector.
func (d *Driver[S, M, P]) SetMoveSelector(sel MoveSelector[S, M, P]) { d.selector = sel }

// SetPruningPolicy replaces the post-commit pruning policy.
func (d *Driver[S, M, P]) SetPruningPolicy(p PruningPolicy[S, M, P]) { d.pruner = p }

// SetLogStream directs a per-cycle YAML record stream to w. Nil disables
// it.
func (d *Driver[S, M, P]) SetLogStream(w io.Writer) { d.logStream = w }

// Rules returns the adapter the driver plays by.
func (d *Driver[S, M, P]) Rules() game.Rules[S, M, P] { return d.rules }

// Table exposes the transposition table for strategies and inspection.
func (d *Driver[S, M, P]) Table() *tree.Table[S, M, P] { return d.table }

// Scorer returns the configured scorer; selectors consult it.
func (d *Driver[S, M, P]) Scorer() Scorer[S, M, P] { return d.scorer }

// CurrentNode returns the node for the position the game is actually at.
func (d *Driver[S, M, P]) CurrentNode() *tree.Node[S, M, P] { return d.current }

// CurrentState returns the position the game is actually at.
func (d *Driver[S, M, P]) CurrentState() S { return d.current.State() }

// ActivePlayer mirrors the adapter over the current state.
func (d *Driver[S, M, P]) ActivePlayer() (P, bool) {
	return d.rules.ActivePlayer(d.current.State())
}

// IsFinished mirrors the adapter over the current state.
func (d *Driver[S, M, P]) IsFinished() bool { return d.rules.IsFinished(d.current.State()) }

// AllLegalMoves mirrors the adapter over the current state.
func (d *Driver[S, M, P]) AllLegalMoves() []M { return d.rules.AllLegalMoves(d.current.State()) }

// Winner mirrors the adapter over the current state.
func (d *Driver[S, M, P]) Winner() (P, bool, error) { return d.rules.Winner(d.current.State()) }

// Describe renders the current position.
func (d *Driver[S, M, P]) Describe() string { return d.rules.Describe(d.current.State()) }

// Valuation returns the full per-player score of the current position, if
// the tree knows it yet.
func (d *Driver[S, M, P]) Valuation() (game.Valuation[P], bool) {
	return d.scorer.Valuation(d.table, d.current)
}

// Score returns the current position's score for one player, if known.
func (d *Driver[S, M, P]) Score(p P) (float64, bool) {
	val, ok := d.Valuation()
	if !ok {
		return 0, false
	}
	return val[p], true
}

// TreeSize returns the number of positions in the table.
func (d *Driver[S, M, P]) TreeSize() int { return d.table.Size() }

// Cycles returns how many moves have been committed.
func (d *Driver[S, M, P]) Cycles() uint64 { return d.cycles }

// ChooseMove runs one expansion phase under the configured control and asks
// the selector for a move. The game does not advance; CommitMove does that.
func (d *Driver[S, M, P]) ChooseMove() (M, error) {
	var zero M
	if d.IsFinished() {
		return zero, &game.IllegalMoveError{Reason: "game is already finished"}
	}
	d.cycleStart = time.Now()
	if err := d.control.Expand(d); err != nil {
		return zero, err
	}
	return d.selector.Select(d)
}

// CommitMove plays mv on the current position: the current node advances
// along that successor edge, expanding it first if the tree had not gotten
// there yet, and the pruning policy then decides what survives. An illegal
// move is rejected before anything is touched, so the table and current
// node are unchanged by a failed commit.
func (d *Driver[S, M, P]) CommitMove(mv M) error {
	if d.IsFinished() {
		return &game.IllegalMoveError{Move: mv, Reason: "game is already finished"}
	}
	if !slices.Contains(d.rules.AllLegalMoves(d.current.State()), mv) {
		return &game.IllegalMoveError{Move: mv, Reason: "not a legal move in this position"}
	}
	if !d.current.Expanded() {
		if _, err := d.table.Expand(d.current); err != nil {
			return err
		}
	}
	key, ok := d.current.SuccessorKey(mv)
	if !ok {
		return &game.InvalidStateError{Op: "commit-move", Reason: "legal move missing from expanded node"}
	}
	next, ok := d.table.Get(key)
	if !ok {
		return &game.InvalidStateError{Op: "commit-move", Reason: "successor missing from table"}
	}
	d.current = next
	d.cycles++

	sizeBefore := d.table.Size()
	removed := d.pruner.Prune(d)
	if removed > 0 {
		log.Debug().Int("size-before", sizeBefore).Int("removed", removed).
			Int("size-after", d.table.Size()).Msg("search-tree-pruned")
	}
	d.logCycle(mv, removed, d.endCycle())
	return nil
}

// endCycle returns the time spent since the matching ChooseMove, or zero for
// a commit that never went through ChooseMove (a human move).
func (d *Driver[S, M, P]) endCycle() time.Duration {
	if d.cycleStart.IsZero() {
		return 0
	}
	elapsed := time.Since(d.cycleStart)
	d.cycleStart = time.Time{}
	return elapsed
}

// Play drives decision cycles until the game finishes, choosing every move
// with the configured selector. ctx is consulted between cycles only; a
// cycle that has started always runs to completion.
func (d *Driver[S, M, P]) Play(ctx context.Context) error {
	for !d.IsFinished() {
		if err := ctx.Err(); err != nil {
			return err
		}
		mv, err := d.ChooseMove()
		if err != nil {
			return err
		}
		if err := d.CommitMove(mv); err != nil {
			return err
		}
		log.Debug().Uint64("cycle", d.cycles).Str("move", fmt.Sprint(mv)).
			Int("tree-size", d.table.Size()).Str("position", string(d.current.Key())).
			Msg("move-committed")
	}
	return nil
}

// cycleRecord is one decision cycle in the driver's log stream.
type cycleRecord struct {
	Cycle    uint64             `json:"cycle" yaml:"cycle"`
	Move     string             `json:"move" yaml:"move"`
	Scores   map[string]float64 `json:"scores,omitempty" yaml:"scores,omitempty"`
	TreeSize int                `json:"treeSize" yaml:"tree_size"`
	Pruned   int                `json:"pruned,omitempty" yaml:"pruned,omitempty"`
	Elapsed  float64            `json:"elapsedSec" yaml:"elapsed_sec"`
}

func (d *Driver[S, M, P]) logCycle(mv M, pruned int, elapsed time.Duration) {
	if d.logStream == nil {
		return
	}
	rec := cycleRecord{
		Cycle:    d.cycles,
		Move:     fmt.Sprint(mv),
		TreeSize: d.table.Size(),
		Pruned:   pruned,
		Elapsed:  elapsed.Seconds(),
	}
	if val, ok := d.Valuation(); ok {
		rec.Scores = make(map[string]float64, len(val))
		for p, v := range val {
			rec.Scores[fmt.Sprint(p)] = v
		}
	}
	out, err := yaml.Marshal(rec)
	if err != nil {
		log.Err(err).Msg("marshalling-cycle-record")
		return
	}
	if _, err := d.logStream.Write(append([]byte("---\n"), out...)); err != nil {
		log.Err(err).Msg("writing-cycle-record")
	}
}
