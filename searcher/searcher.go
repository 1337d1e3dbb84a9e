// Package searcher provides interchangeable decision engines for chance
// games: a depth-bounded expectiminimax searcher and a Monte-Carlo tree
// searcher. Both consume the same time controls and expose the same
// facade, so callers stay engine-agnostic.
package searcher

import (
	"errors"
	"fmt"

	"gambit/game"
	"gambit/timectl"
)

// ErrNoMoves reports a ChooseBest call without any move to choose from.
// Callers must not ask for a decision on a terminal position.
var ErrNoMoves = errors.New("no moves to choose from")

// ErrUnbounded reports a search started with neither a deadline nor a
// playout cap to stop it.
var ErrUnbounded = errors.New("search has no time or playout bound")

// Engine ranks moves for positions of a chance game. An instance owns
// mutable caches, so it is not safe for concurrent ChooseBest calls;
// concurrent workers each need their own instance.
type Engine interface {
	// ChooseBest returns the best of the given legal moves for the
	// position. A nil control leaves only the engine's own configured
	// bounds. An exhausted budget is never an error: the best answer
	// found within the budget is returned.
	ChooseBest(moves []game.Move, state game.State, tc timectl.Control) (game.Move, error)
	// Stats snapshots the work counters accumulated so far.
	Stats() Stats
	// ClearCache discards all state reused between decisions, making the
	// engine safe to carry into an independent game.
	ClearCache()
}

// ConfigError reports a malformed engine option. Construction fails
// rather than silently clamping the value.
type ConfigError struct {
	Option string
	Value  any
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configure %s=%v: %s", e.Option, e.Value, e.Reason)
}
