package search

import (
	"testing"

	"github.com/matryer/is"
)

// scoredStart builds a driver on a one-shot game with the given payoffs per
// move and expands it fully, so the selectors see real scores.
func scoredStart(t *testing.T, payoffs map[string]float64, order []string) *Driver[string, string, string] {
	t.Helper()
	g := graphGame{
		start:    "start",
		edges:    map[string][]string{"start": order},
		terminal: payoffs,
	}
	d, err := NewDriver[string, string, string](g)
	if err != nil {
		t.Fatal(err)
	}
	d.SetExpansionControl(NewFullExpansion[string, string, string](OneStepExpansion[string, string, string]{}))
	if err := d.control.Expand(d); err != nil {
		t.Fatal(err)
	}
	return d
}

func TestFirstSelectorTakesTheLowestOrderedBestMove(t *testing.T) {
	is := is.New(t)
	// m1 comes first in move order but is not best; m2 and m3 tie for
	// best and m2 is the earlier of them.
	d := scoredStart(t,
		map[string]float64{"m1": 0, "m2": 1, "m3": 1},
		[]string{"m1", "m2", "m3"},
	)
	d.SetMoveSelector(FirstMoveSelector[string, string, string]{})
	for i := 0; i < 10; i++ {
		mv, err := d.ChooseMove()
		is.NoErr(err)
		is.Equal(mv, "m2")
	}
}

func TestBestRandomStaysAmongTheBest(t *testing.T) {
	is := is.New(t)
	d := scoredStart(t,
		map[string]float64{"m1": 0, "m2": 1, "m3": 1},
		[]string{"m1", "m2", "m3"},
	)
	d.SetMoveSelector(BestRandomMoveSelector[string, string, string]{})

	seen := map[string]int{}
	for i := 0; i < 200; i++ {
		mv, err := d.ChooseMove()
		is.NoErr(err)
		seen[mv]++
	}
	is.Equal(seen["m1"], 0)
	// Both tied moves show up over 200 draws.
	is.True(seen["m2"] > 0)
	is.True(seen["m3"] > 0)
}

func TestRandomSelectorIgnoresScores(t *testing.T) {
	is := is.New(t)
	d := scoredStart(t,
		map[string]float64{"bad": -1, "good": 1},
		[]string{"bad", "good"},
	)
	d.SetMoveSelector(RandomMoveSelector[string, string, string]{})

	seen := map[string]int{}
	for i := 0; i < 300; i++ {
		mv, err := d.ChooseMove()
		is.NoErr(err)
		seen[mv]++
	}
	// A score-aware selector would never touch the losing move.
	is.True(seen["bad"] > 0)
	is.True(seen["good"] > 0)
	is.Equal(seen["bad"]+seen["good"], 300)
}

func TestSelectorsFallBackWhenNothingIsScored(t *testing.T) {
	is := is.New(t)
	d, err := NewDriver[int, int, string](counterGame{})
	is.NoErr(err)
	d.SetExpansionControl(NewBoundedExpansion[int, int, string](OneStepExpansion[int, int, string]{}, 0, 2))

	for _, sel := range []MoveSelector[int, int, string]{
		FirstMoveSelector[int, int, string]{},
		BestRandomMoveSelector[int, int, string]{},
		RandomMoveSelector[int, int, string]{},
	} {
		d.SetMoveSelector(sel)
		mv, err := d.ChooseMove()
		is.NoErr(err)
		is.Equal(mv, 1)
	}
}
