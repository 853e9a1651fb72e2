package search

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/plybot/game"
	"github.com/domino14/plybot/tictactoe"
)

func newTTTDriver(t *testing.T) *Driver[tictactoe.State, tictactoe.Move, tictactoe.Player] {
	t.Helper()
	d, err := NewDriver[tictactoe.State, tictactoe.Move, tictactoe.Player](tictactoe.Rules{})
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestNewDriverSeedsTheStartingPosition(t *testing.T) {
	is := is.New(t)
	d := newTTTDriver(t)
	is.Equal(d.TreeSize(), 1)
	is.Equal(d.CurrentNode().Key(), game.Key("         "))
	is.True(!d.IsFinished())
	p, ok := d.ActivePlayer()
	is.True(ok)
	is.Equal(p, tictactoe.PlayerX)
	is.Equal(d.Cycles(), uint64(0))
}

func TestChooseMoveReturnsALegalMove(t *testing.T) {
	is := is.New(t)
	d := newTTTDriver(t)
	mv, err := d.ChooseMove()
	is.NoErr(err)
	legal := d.AllLegalMoves()
	found := false
	for _, m := range legal {
		if m == mv {
			found = true
		}
	}
	is.True(found)
	// Choosing alone never advances the game.
	is.Equal(d.Cycles(), uint64(0))
	is.True(!d.IsFinished())
}

func TestCommitMoveAdvancesAndAutoExpands(t *testing.T) {
	is := is.New(t)
	d := newTTTDriver(t)
	// Commit without choosing first: the unexpanded current node gets
	// expanded on the way through.
	is.NoErr(d.CommitMove(tictactoe.Move{Col: 0, Row: 0}))
	is.Equal(d.CurrentNode().Key(), game.Key("X        "))
	is.Equal(d.TreeSize(), 10) // the old root plus its nine children
	is.Equal(d.Cycles(), uint64(1))
}

func TestIllegalCommitLeavesTheTreeUntouched(t *testing.T) {
	is := is.New(t)
	d := newTTTDriver(t)

	// Out of range, against a still-unexpanded current node: validation
	// has to come before the auto-expansion.
	err := d.CommitMove(tictactoe.Move{Col: 7, Row: 7})
	var ime *game.IllegalMoveError
	is.True(errors.As(err, &ime))
	is.Equal(d.TreeSize(), 1)
	is.Equal(d.CurrentNode().Key(), game.Key("         "))
	is.Equal(d.Cycles(), uint64(0))

	// Occupied cell after a real move.
	is.NoErr(d.CommitMove(tictactoe.Move{Col: 1, Row: 1}))
	size := d.TreeSize()
	err = d.CommitMove(tictactoe.Move{Col: 1, Row: 1})
	is.True(errors.As(err, &ime))
	is.Equal(d.TreeSize(), size)
	is.Equal(d.CurrentNode().Key(), game.Key("    X    "))
}

func TestPlayRunsToTheEnd(t *testing.T) {
	is := is.New(t)
	d := newTTTDriver(t)
	is.NoErr(d.Play(context.Background()))
	is.True(d.IsFinished())
	is.True(d.Cycles() >= 5) // X needs at least five moves total
	_, _, err := d.Winner()
	is.NoErr(err)
}

func TestPlayHonorsContextBetweenCycles(t *testing.T) {
	is := is.New(t)
	d := newTTTDriver(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := d.Play(ctx)
	is.True(errors.Is(err, context.Canceled))
	is.Equal(d.Cycles(), uint64(0))
}

func TestChoosingOnAFinishedGameFails(t *testing.T) {
	is := is.New(t)
	d := newTTTDriver(t)
	is.NoErr(d.Play(context.Background()))

	_, err := d.ChooseMove()
	var ime *game.IllegalMoveError
	is.True(errors.As(err, &ime))

	err = d.CommitMove(tictactoe.Move{Col: 0, Row: 0})
	is.True(errors.As(err, &ime))
}

func TestCycleLogStream(t *testing.T) {
	is := is.New(t)
	d := newTTTDriver(t)
	var buf bytes.Buffer
	d.SetLogStream(&buf)
	is.NoErr(d.Play(context.Background()))

	out := buf.String()
	is.True(strings.Contains(out, "---\n"))
	is.True(strings.Contains(out, "cycle:"))
	is.True(strings.Contains(out, "move:"))
	is.True(strings.Contains(out, "tree_size:"))
	// One document per committed move.
	is.Equal(strings.Count(out, "---\n"), int(d.Cycles()))
}

func TestScoreIsUnknownBeforeTheTreeReachesAnEnd(t *testing.T) {
	is := is.New(t)
	d := newTTTDriver(t)
	_, ok := d.Score(tictactoe.PlayerX)
	is.True(!ok)
	_, ok = d.Valuation()
	is.True(!ok)
}
