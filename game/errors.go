package game

import "fmt"

// IllegalMoveError reports an attempt to play a move that is not legal in
// the state it was played on, including any move on an already finished
// game. The rejected operation must leave the game and the search tree
// untouched.
type IllegalMoveError struct {
	Move   any
	Reason string
}

func (e *IllegalMoveError) Error() string {
	if e.Move == nil {
		return fmt.Sprintf("illegal move: %s", e.Reason)
	}
	return fmt.Sprintf("illegal move %v: %s", e.Move, e.Reason)
}

// InvalidStateError reports a broken structural contract: asking for the
// winner of an unfinished game, expanding a node twice, merging nodes for
// different positions, or configuring a component with out-of-range
// parameters. These are programming errors, not conditions to retry.
type InvalidStateError struct {
	Op     string
	Reason string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}
