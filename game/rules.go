// Package game defines the capability set a game supplies to the search
// engine, together with the error taxonomy for contract violations. The
// engine knows nothing about any concrete game; every question it asks goes
// through the Rules interface.
package game

// Key is the canonical identity of a game state. Two states are the same
// position exactly when their keys are equal, so implementations must be
// deterministic and collision-free over every reachable state. The order of
// moves that led to a position must not leak into its key; that collapse is
// what makes transpositions merge.
type Key string

// Valuation holds one score per player for a single position, zero-sum
// across players. A nil Valuation means the score is not known yet; there is
// no numeric sentinel for "unknown".
type Valuation[P comparable] map[P]float64

// Rules is the full capability set for one game. States are treated as
// immutable values: MakeMove returns a successor and never modifies its
// input. All methods must be deterministic.
type Rules[S any, M comparable, P comparable] interface {
	// StartingState returns the initial position.
	StartingState() S

	// ActivePlayer returns the player to move. ok is false on terminal
	// states, which have nobody to move.
	ActivePlayer(state S) (p P, ok bool)

	// IsFinished reports whether the game is over in this state.
	IsFinished(state S) bool

	// AllLegalMoves enumerates every legal move in a stable order. The
	// order is meaningful: selectors use it for tie-breaking. Terminal
	// states have no legal moves.
	AllLegalMoves(state S) []M

	// MakeMove returns the successor state reached by playing mv. Illegal
	// moves, including any move on a finished game, fail with an
	// *IllegalMoveError.
	MakeMove(state S, mv M) (S, error)

	// Winner returns the winning player of a finished game; ok is false on
	// a draw. Asking before the game is over fails with an
	// *InvalidStateError.
	Winner(state S) (p P, ok bool, err error)

	// Evaluate scores a state directly, without search. Terminal states
	// carry their true outcome; non-terminal states evaluate to all zeros.
	Evaluate(state S) Valuation[P]

	// NodeKey returns the canonical identity of the state.
	NodeKey(state S) Key

	// Describe renders the state for logs and interactive display.
	Describe(state S) string
}
