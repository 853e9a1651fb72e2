package search

import (
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/plybot/tictactoe"
)

func TestBuildControlComposesTheChain(t *testing.T) {
	is := is.New(t)

	// A positive depth puts a forward sweep at the core.
	ctl, err := BuildControl[tictactoe.State, tictactoe.Move, tictactoe.Player](ControlBounded, StrategyOneStep, 0, 0, 2)
	is.NoErr(err)
	d := newTTTDriver(t)
	d.SetExpansionControl(ctl)
	is.NoErr(d.control.Expand(d))
	is.Equal(d.TreeSize(), 82)

	// Without a depth the named strategy drives; unlimited bounded runs it
	// to the fixed point.
	ctl, err = BuildControl[tictactoe.State, tictactoe.Move, tictactoe.Player](ControlBounded, StrategyOneStep, 0, 0, 0)
	is.NoErr(err)
	d = newTTTDriver(t)
	d.SetExpansionControl(ctl)
	is.NoErr(d.control.Expand(d))
	is.Equal(d.TreeSize(), legalPositionCount)
}

func TestFactoriesRejectUnknownNames(t *testing.T) {
	is := is.New(t)

	_, err := StrategyByName[int, int, string]("alpha-beta")
	is.True(err != nil)
	_, err = BuildControl[int, int, string]("warp", StrategyOneStep, 0, 0, 0)
	is.True(err != nil)
	_, err = SelectorByName[int, int, string]("psychic")
	is.True(err != nil)
	_, err = PrunerByName[int, int, string]("aggressive")
	is.True(err != nil)
}

func TestFactoryDefaults(t *testing.T) {
	is := is.New(t)

	sel, err := SelectorByName[int, int, string]("")
	is.NoErr(err)
	_, ok := sel.(BestRandomMoveSelector[int, int, string])
	is.True(ok)

	pr, err := PrunerByName[int, int, string]("")
	is.NoErr(err)
	_, ok = pr.(ReachabilityPruner[int, int, string])
	is.True(ok)
}

func TestSuggestNodeLimitIsAlwaysUsable(t *testing.T) {
	is := is.New(t)
	is.True(SuggestNodeLimit(0.25) >= 1)
	is.True(SuggestNodeLimit(0) >= 1)
}
