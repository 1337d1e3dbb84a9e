package searcher

import (
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"gambit/game"
	"gambit/timectl"
)

func newTestMinimax(t *testing.T, options ...MinimaxOption) *Minimax {
	t.Helper()
	engine, err := NewMinimax(options...)
	require.NoError(t, err, "Engine construction should accept the test configuration")
	return engine
}

func TestNewMinimax(t *testing.T) {
	t.Run("rejecting a non-positive depth", func(t *testing.T) {
		_, err := NewMinimax(WithMaxDepth(0))

		var confErr *ConfigError
		require.ErrorAs(t, err, &confErr, "A zero depth should fail construction")
		require.Equal(t, "max-depth", confErr.Option)
	})

	t.Run("rejecting a negative time budget", func(t *testing.T) {
		_, err := NewMinimax(WithMaxTime(-time.Second))

		var confErr *ConfigError
		require.ErrorAs(t, err, &confErr, "A negative budget should fail construction")
	})

	t.Run("rejecting an unknown probe window", func(t *testing.T) {
		_, err := NewMinimax(WithProbeWindow(ProbeWindow(9)))

		var confErr *ConfigError
		require.ErrorAs(t, err, &confErr, "An unknown strategy should fail construction")
	})

	t.Run("rejecting an empty transposition table", func(t *testing.T) {
		_, err := NewMinimax(WithTableSize(0))

		var confErr *ConfigError
		require.ErrorAs(t, err, &confErr, "A zero capacity should fail construction")
	})

	t.Run("accepting the defaults", func(t *testing.T) {
		_, err := NewMinimax()

		require.NoError(t, err, "The default configuration should be valid")
	})
}

func TestMinimaxChooseBest(t *testing.T) {
	t.Run("rejecting an empty move list", func(t *testing.T) {
		engine := newTestMinimax(t)

		_, err := engine.ChooseBest(nil, trapGame().state("root"), nil)

		require.ErrorIs(t, err, ErrNoMoves, "A terminal position is a caller error")
	})

	t.Run("returning the only move without searching", func(t *testing.T) {
		engine := newTestMinimax(t)
		state := trapGame().state("setup")
		moves := state.LegalMoves()

		move, err := engine.ChooseBest(moves, state, nil)

		require.NoError(t, err)
		require.Equal(t, "reply", move.String(), "A forced move should be returned as is")
		require.Zero(t, engine.Stats().Nodes, "A forced move should not cost any search")
	})

	t.Run("taking the bank at depth one", func(t *testing.T) {
		engine := newTestMinimax(t, WithMaxDepth(1), WithIterativeDeepening(false))
		state := trapGame().state("root")

		move, err := engine.ChooseBest(state.LegalMoves(), state, nil)

		require.NoError(t, err)
		require.Equal(t, "greedy", move.String(),
			"At depth one only the immediate scores are visible")
	})

	t.Run("finding the trap line at depth two and beyond", func(t *testing.T) {
		for depth := 2; depth <= 4; depth++ {
			engine := newTestMinimax(t, WithMaxDepth(depth), WithIterativeDeepening(false))
			state := trapGame().state("root")

			move, err := engine.ChooseBest(state.LegalMoves(), state, nil)

			require.NoError(t, err)
			require.Equal(t, "patient", move.String(),
				"Depth %d should see through the trap", depth)
		}
	})

	t.Run("preferring the safe move over an even gamble", func(t *testing.T) {
		engine := newTestMinimax(t, WithMaxDepth(2), WithIterativeDeepening(false))
		state := gambleGame().state("root")

		move, err := engine.ChooseBest(state.LegalMoves(), state, nil)

		require.NoError(t, err)
		require.Equal(t, "safe", move.String(),
			"An expectation of zero should lose to a certain 0.4")
	})

	t.Run("degrading to the first move on a spent budget", func(t *testing.T) {
		engine := newTestMinimax(t)
		state := trapGame().state("root")
		moves := state.LegalMoves()

		move, err := engine.ChooseBest(moves, state, timectl.NewAbsolute(0))

		require.NoError(t, err, "Budget exhaustion is never an error")
		require.Equal(t, moves[0].String(), move.String(),
			"With no completed iteration the seeded answer stands")
	})
}

func TestMinimaxIterativeDeepening(t *testing.T) {
	t.Run("agreeing with a fixed-depth search given time", func(t *testing.T) {
		deepened := newTestMinimax(t, WithMaxDepth(4), WithIterativeDeepening(true))
		fixed := newTestMinimax(t, WithMaxDepth(4), WithIterativeDeepening(false))
		state := trapGame().state("root")

		deepenedMove, err := deepened.ChooseBest(state.LegalMoves(), state, nil)
		require.NoError(t, err)
		fixedMove, err := fixed.ChooseBest(state.LegalMoves(), state, nil)
		require.NoError(t, err)

		require.Equal(t, fixedMove.String(), deepenedMove.String(),
			"Unconstrained deepening should land on the fixed-depth answer")
	})
}

// randomChanceTree builds a game tree whose probabilities are sixteenths
// and whose scores are eighths, so expectations are exact in floating
// point no matter the summation order.
func randomChanceTree(rng *rand.Rand, depth int) (*treeGame, treeState) {
	g := &treeGame{nodes: map[string]*treeNode{}}
	id := 0

	var build func(player game.Seat, depth int) string
	build = func(player game.Seat, depth int) string {
		name := fmt.Sprintf("n%d", id)
		id++
		node := &treeNode{
			player: player,
			score:  float64(rng.Intn(17)-8) / 8,
		}
		g.nodes[name] = node
		if depth == 0 {
			return name
		}

		edges := 2 + rng.Intn(2)
		for e := 0; e < edges; e++ {
			edge := treeEdge{label: fmt.Sprintf("%s-e%d", name, e)}
			outcomes := 1
			if rng.Intn(2) == 1 {
				outcomes = 2 + rng.Intn(3)
			}
			if outcomes == 1 {
				edge.outcomes = []treeOutcome{{dest: build(player.Flip(), depth-1), prob: 1}}
			} else {
				for _, weight := range sixteenthWeights(rng, outcomes) {
					edge.outcomes = append(edge.outcomes, treeOutcome{
						dest: build(player.Flip(), depth-1),
						prob: float64(weight) / 16,
					})
				}
			}
			node.edges = append(node.edges, edge)
		}
		return name
	}

	root := build(game.Max, depth)
	return g, g.state(root)
}

// sixteenthWeights splits 16 into k positive integer weights.
func sixteenthWeights(rng *rand.Rand, k int) []int {
	cuts := rng.Perm(15)[:k-1]
	for i := range cuts {
		cuts[i]++
	}
	sort.Ints(cuts)

	weights := make([]int, k)
	prev := 0
	for i, cut := range cuts {
		weights[i] = cut - prev
		prev = cut
	}
	weights[k-1] = 16 - prev
	return weights
}

func TestMinimaxProbeWindows(t *testing.T) {
	windows := []ProbeWindow{ProbeOverlapping, ProbeCenterToEnd, ProbeEdgeToEnd}

	t.Run("agreeing with the full-width search on random chance trees", func(t *testing.T) {
		for seed := uint64(1); seed <= 12; seed++ {
			rng := rand.New(rand.NewSource(seed))
			_, state := randomChanceTree(rng, 3)
			moves := state.LegalMoves()

			baseline := newTestMinimax(t,
				WithMaxDepth(3), WithIterativeDeepening(false), WithProbeWindow(ProbeNone))
			want, err := baseline.ChooseBest(moves, state, nil)
			require.NoError(t, err)

			for _, window := range windows {
				engine := newTestMinimax(t,
					WithMaxDepth(3), WithIterativeDeepening(false), WithProbeWindow(window))
				got, err := engine.ChooseBest(moves, state, nil)

				require.NoError(t, err)
				require.Equal(t, want.String(), got.String(),
					"Probing with %v on seed %d should pick the full-width move", window, seed)
			}
		}
	})

	t.Run("agreeing on the even gamble", func(t *testing.T) {
		for _, window := range windows {
			engine := newTestMinimax(t,
				WithMaxDepth(2), WithIterativeDeepening(false), WithProbeWindow(window))
			state := gambleGame().state("root")

			move, err := engine.ChooseBest(state.LegalMoves(), state, nil)

			require.NoError(t, err)
			require.Equal(t, "safe", move.String(),
				"Probing with %v should not change the expectation ranking", window)
		}
	})
}

func TestMinimaxStrictTranspositions(t *testing.T) {
	t.Run("choosing the same move as the trusting mode", func(t *testing.T) {
		rng := rand.New(rand.NewSource(42))
		_, state := randomChanceTree(rng, 3)
		moves := state.LegalMoves()

		strict := newTestMinimax(t, WithMaxDepth(3), WithStrictTranspositions(true))
		loose := newTestMinimax(t, WithMaxDepth(3), WithStrictTranspositions(false))

		strictMove, err := strict.ChooseBest(moves, state, nil)
		require.NoError(t, err)
		looseMove, err := loose.ChooseBest(moves, state, nil)
		require.NoError(t, err)

		require.Equal(t, looseMove.String(), strictMove.String(),
			"With collision-free hashing strictness only changes the work done")
	})
}

func TestMinimaxStats(t *testing.T) {
	t.Run("counting search work", func(t *testing.T) {
		engine := newTestMinimax(t, WithMaxDepth(3))
		state := trapGame().state("root")

		_, err := engine.ChooseBest(state.LegalMoves(), state, nil)
		require.NoError(t, err)

		stats := engine.Stats()
		require.Positive(t, stats.Nodes, "The search should visit nodes")
		require.Positive(t, stats.CacheMisses, "A cold cache should record misses")
		require.Zero(t, stats.Playouts, "Expectiminimax runs no playouts")
	})

	t.Run("reproducing a fresh profile after clearing the cache", func(t *testing.T) {
		engine := newTestMinimax(t, WithMaxDepth(3))
		state := trapGame().state("root")
		moves := state.LegalMoves()

		_, err := engine.ChooseBest(moves, state, nil)
		require.NoError(t, err)
		first := engine.Stats()

		engine.ClearCache()
		_, err = engine.ChooseBest(moves, state, nil)
		require.NoError(t, err)
		second := engine.Stats().Sub(first)

		first.Elapsed, second.Elapsed = 0, 0
		require.Equal(t, first, second,
			"Clearing the cache should restore the fresh-engine work profile")
	})
}
