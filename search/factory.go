package search

import (
	"fmt"
	"time"
)

// Policy names accepted by the factories. The CLI and the shell resolve
// user-facing option strings through these.
const (
	StrategyCurrent = "current"
	StrategyOneStep = "one-step"

	ControlOnce    = "once"
	ControlFull    = "full"
	ControlBounded = "bounded"

	SelectorFirst      = "first"
	SelectorRandom     = "random"
	SelectorBestRandom = "best-random"

	PruningNone      = "none"
	PruningReachable = "reachable"
)

// StrategyByName returns the expansion strategy for a user-facing name.
func StrategyByName[S any, M comparable, P comparable](name string) (ExpansionStrategy[S, M, P], error) {
	switch name {
	case StrategyCurrent:
		return CurrentNodeExpansion[S, M, P]{}, nil
	case StrategyOneStep, "":
		return OneStepExpansion[S, M, P]{}, nil
	}
	return nil, fmt.Errorf("unknown expansion strategy %q", name)
}

// BuildControl assembles the expansion control chain from names and
// budgets. The named strategy sits at the core; a positive sweep depth
// replaces it with a forward sweep of that many plies; the named control
// wraps the result. For the bounded control, zero limits mean unlimited,
// which expands the core to its fixed point.
func BuildControl[S any, M comparable, P comparable](controlName, strategyName string, timeLimit time.Duration, nodeLimit, depth int) (ExpansionControl[S, M, P], error) {
	var core ExpansionStrategy[S, M, P]
	if depth > 0 {
		sweep, err := NewForwardSweep[S, M, P](depth)
		if err != nil {
			return nil, err
		}
		core = sweep
	} else {
		strategy, err := StrategyByName[S, M, P](strategyName)
		if err != nil {
			return nil, err
		}
		core = strategy
	}
	switch controlName {
	case ControlOnce:
		return NewStepOnce(core), nil
	case ControlFull:
		return NewFullExpansion(core), nil
	case ControlBounded, "":
		return NewBoundedExpansion(core, timeLimit, nodeLimit), nil
	}
	return nil, fmt.Errorf("unknown expansion control %q", controlName)
}

// SelectorByName returns the move selector for a user-facing name.
func SelectorByName[S any, M comparable, P comparable](name string) (MoveSelector[S, M, P], error) {
	switch name {
	case SelectorFirst:
		return FirstMoveSelector[S, M, P]{}, nil
	case SelectorRandom:
		return RandomMoveSelector[S, M, P]{}, nil
	case SelectorBestRandom, "":
		return BestRandomMoveSelector[S, M, P]{}, nil
	}
	return nil, fmt.Errorf("unknown move selector %q", name)
}

// PrunerByName returns the pruning policy for a user-facing name.
func PrunerByName[S any, M comparable, P comparable](name string) (PruningPolicy[S, M, P], error) {
	switch name {
	case PruningNone:
		return KeepAll[S, M, P]{}, nil
	case PruningReachable, "":
		return ReachabilityPruner[S, M, P]{}, nil
	}
	return nil, fmt.Errorf("unknown pruning policy %q", name)
}
