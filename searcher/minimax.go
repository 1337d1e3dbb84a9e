package searcher

import (
	"errors"
	"math"
	"time"

	"gambit/game"
	"gambit/timectl"
)

var errSearchTimeout = errors.New("search timeout")

// Minimax is a depth-bounded expectiminimax engine: depth-first search
// over alternating maximizing, minimizing and chance layers, with
// transposition caching and probe-window pruning at chance layers.
type Minimax struct {
	maxDepth  int
	maxTime   time.Duration
	deepening bool
	probe     ProbeWindow
	tableSize int
	strict    bool

	table *transposition
	tc    timectl.Control
	stats Stats
}

type MinimaxOption func(*Minimax)

// WithMaxDepth sets the hard search-depth ceiling.
func WithMaxDepth(depth int) MinimaxOption {
	return func(m *Minimax) {
		m.maxDepth = depth
	}
}

// WithMaxTime caps the wall-clock budget per decision. The cap combines
// with whatever control the caller passes, whichever is tighter.
func WithMaxTime(limit time.Duration) MinimaxOption {
	return func(m *Minimax) {
		m.maxTime = limit
	}
}

// WithIterativeDeepening repeats the search at depth limits 1, 2, ... up
// to the ceiling, keeping the answer of the deepest completed iteration.
func WithIterativeDeepening(enabled bool) MinimaxOption {
	return func(m *Minimax) {
		m.deepening = enabled
	}
}

// WithProbeWindow sets the chance-layer expansion strategy.
func WithProbeWindow(probe ProbeWindow) MinimaxOption {
	return func(m *Minimax) {
		m.probe = probe
	}
}

// WithTableSize sets the transposition table capacity in entries, rounded
// down to a power of two.
func WithTableSize(entries int) MinimaxOption {
	return func(m *Minimax) {
		m.tableSize = entries
	}
}

// WithStrictTranspositions verifies every table hit by full position
// equality, guarding against fingerprint collisions at the cost of the
// comparison.
func WithStrictTranspositions(enabled bool) MinimaxOption {
	return func(m *Minimax) {
		m.strict = enabled
	}
}

func NewMinimax(options ...MinimaxOption) (*Minimax, error) {
	m := &Minimax{ // Default values
		maxDepth:  6,
		deepening: true,
		probe:     ProbeNone,
		tableSize: 1 << 16,
	}
	for _, option := range options {
		option(m)
	}
	if m.maxDepth < 1 {
		return nil, &ConfigError{Option: "max-depth", Value: m.maxDepth, Reason: "must be at least 1"}
	}
	if m.maxTime < 0 {
		return nil, &ConfigError{Option: "max-time", Value: m.maxTime, Reason: "cannot be negative"}
	}
	if m.probe < ProbeNone || m.probe > ProbeEdgeToEnd {
		return nil, &ConfigError{Option: "chance-node-probe-window", Value: m.probe, Reason: "unknown strategy"}
	}
	if m.tableSize < 1 {
		return nil, &ConfigError{Option: "transposition-table-size", Value: m.tableSize, Reason: "must hold at least one entry"}
	}
	m.table = newTransposition(m.tableSize, m.strict)
	return m, nil
}

func (m *Minimax) ChooseBest(moves []game.Move, state game.State, tc timectl.Control) (game.Move, error) {
	if len(moves) == 0 {
		return nil, ErrNoMoves
	}
	start := time.Now()
	defer func() {
		m.stats.Elapsed += time.Since(start)
		m.tc = nil
	}()

	if m.maxTime > 0 {
		if tc == nil {
			tc = timectl.NewAbsolute(m.maxTime)
		} else {
			limit := m.maxTime
			tc.Constrain(&limit)
		}
	}
	m.tc = tc

	best := moves[0]
	if len(moves) == 1 {
		return best, nil
	}

	firstDepth := m.maxDepth
	if m.deepening {
		firstDepth = 1
	}
	for depth := firstDepth; depth <= m.maxDepth; depth++ {
		if tc != nil && tc.IsExceeded() {
			break
		}
		move, completed := m.searchToDepth(moves, state, depth)
		if !completed {
			break
		}
		best = move
	}
	return best, nil
}

func (m *Minimax) Stats() Stats {
	return m.stats
}

func (m *Minimax) ClearCache() {
	m.table.clear()
}

// searchToDepth runs one full iteration at the given depth limit,
// reporting completed=false when the deadline interrupted it.
func (m *Minimax) searchToDepth(moves []game.Move, state game.State, depth int) (move game.Move, completed bool) {
	defer func() {
		if r := recover(); r != nil {
			if r == errSearchTimeout {
				return
			}
			panic(r)
		}
	}()

	move = m.searchRoot(moves, state, depth)
	completed = true
	return move, completed
}

// searchRoot ranks the candidate moves in caller order; ties keep the
// earlier move.
func (m *Minimax) searchRoot(moves []game.Move, state game.State, depth int) game.Move {
	maximizing := state.Player() == game.Max
	alpha, beta := math.Inf(-1), math.Inf(1)

	best := moves[0]
	bestValue := math.Inf(-1)
	if !maximizing {
		bestValue = math.Inf(1)
	}
	for _, move := range moves {
		value := m.expectation(move.Perform(state), depth-1, alpha, beta)
		if maximizing {
			if value > bestValue {
				bestValue, best = value, move
			}
			if bestValue > alpha {
				alpha = bestValue
			}
		} else {
			if value < bestValue {
				bestValue, best = value, move
			}
			if bestValue < beta {
				beta = bestValue
			}
		}
	}
	return best
}

// search evaluates a position to a value in [-1, 1] from Max's
// perspective, within the fail-soft (alpha, beta) window.
func (m *Minimax) search(state game.State, depth int, alpha, beta float64) float64 {
	m.incNodes()

	moves := state.LegalMoves()
	if len(moves) == 0 || depth <= 0 {
		return state.Score()
	}

	var ttMove game.Move
	entry, found := m.table.read(state)
	if found && int(entry.depth) >= depth {
		m.stats.CacheHits++
		switch {
		case entry.bound == boundExact,
			entry.bound == boundLower && entry.score >= beta,
			entry.bound == boundUpper && entry.score <= alpha:
			return entry.score
		}
		ttMove = entry.move
	} else {
		m.stats.CacheMisses++
		if found {
			// Too shallow to reuse, still a good first try
			ttMove = entry.move
		}
	}
	if ttMove != nil {
		moves = hoist(moves, ttMove)
	}

	maximizing := state.Player() == game.Max
	alphaOrig, betaOrig := alpha, beta

	best := math.Inf(-1)
	if !maximizing {
		best = math.Inf(1)
	}
	var bestMove game.Move
	for _, move := range moves {
		value := m.expectation(move.Perform(state), depth-1, alpha, beta)
		if maximizing {
			if value > best {
				best, bestMove = value, move
			}
			if best > alpha {
				alpha = best
			}
		} else {
			if value < best {
				best, bestMove = value, move
			}
			if best < beta {
				beta = best
			}
		}
		if alpha >= beta {
			break
		}
	}

	bound := uint8(boundExact)
	if best <= alphaOrig {
		bound = boundUpper
	} else if best >= betaOrig {
		bound = boundLower
	}
	m.table.write(state, depth, best, bound, bestMove)

	return best
}

// expectation evaluates a chance layer: the probability-weighted value of
// the move's outcomes, expanded per the configured probe window. A pruned
// expansion returns an exact bound on the true expectation instead of the
// expectation itself.
func (m *Minimax) expectation(dist game.Distribution, depth int, alpha, beta float64) float64 {
	n := dist.Len()
	if n == 1 { // Deterministic move, pass the window through
		outcome, _ := dist.Outcome(0)
		return m.search(outcome, depth, alpha, beta)
	}

	order := m.probe.schedule(n)
	expectation := 0.0
	remaining := 1.0 // probability mass not yet expanded
	for i, index := range order {
		if m.probe.checkpoint(i, n) {
			if lower := expectation - remaining; lower >= beta {
				return lower
			}
			if upper := expectation + remaining; upper <= alpha {
				return upper
			}
		}

		outcome, prob := dist.Outcome(index)

		// Window of outcome values that keep the overall expectation
		// inside (alpha, beta), clipped to the score range
		childAlpha, childBeta := -1.0, 1.0
		if m.probe != ProbeNone && prob > 0 {
			rest := remaining - prob
			if a := (alpha - (expectation + rest)) / prob; a > childAlpha {
				childAlpha = a
			}
			if b := (beta - (expectation - rest)) / prob; b < childBeta {
				childBeta = b
			}
		}

		expectation += prob * m.search(outcome, depth, childAlpha, childBeta)
		remaining -= prob
	}
	return expectation
}

func (m *Minimax) incNodes() {
	m.stats.Nodes++
	if m.stats.Nodes&255 == 0 && m.tc != nil && m.tc.IsExceeded() {
		panic(errSearchTimeout)
	}
}

// hoist moves the transposition move to the front of the ordering.
func hoist(moves []game.Move, first game.Move) []game.Move {
	for i, move := range moves {
		if move.String() == first.String() {
			ordered := make([]game.Move, 0, len(moves))
			ordered = append(ordered, move)
			ordered = append(ordered, moves[:i]...)
			ordered = append(ordered, moves[i+1:]...)
			return ordered
		}
	}
	return moves
}
