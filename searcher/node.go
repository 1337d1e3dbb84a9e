package searcher

import (
	"math"

	"gambit/game"
)

// node is one element of the playout tree: a decision to make or a
// stochastic resolution to draw.
type node interface {
	// selectOrExpand descends one step from the node, returning the next
	// node and its position. expanded is true when the step created the
	// node it returns; a terminal node returns itself.
	selectOrExpand(m *MCTS, state game.State) (child node, childState game.State, expanded bool)
	// backup folds a playout score, in [-1, 1] from Max's perspective,
	// into the node and returns its parent.
	backup(score float64) node
	// valueVisits reports accumulated value and visit count, the value
	// from the perspective of the seat that owns the edge into the node.
	valueVisits() (float64, float64)
}

// uct scores a child by exploitation plus exploration, with the
// c^2 * ln(parentVisits) numerator precomputed by the caller.
func uct(q, n, c2LnN float64) float64 {
	if n == 0 { // Prioritize unexplored children
		return math.Inf(1)
	}
	return q/n + math.Sqrt(c2LnN/n)
}

// puct weights exploration by a learned move prior; unexplored children
// score on their prior alone.
func puct(q, n, prior, cPuct, sqrtN float64) float64 {
	exploit := 0.0
	if n > 0 {
		exploit = q / n
	}
	return exploit + cPuct*prior*sqrtN/(1+n)
}
