package searcher

import (
	"math"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"

	"gambit/game"
	"gambit/timectl"
)

// rebindDepth caps how many plies of the old tree are searched when
// rebinding the root to a new position.
const rebindDepth = 4

// MCTS is a Monte-Carlo tree search engine: repeated select, expand,
// simulate and backpropagate passes over a playout tree that is reused
// across the successive positions of one game.
type MCTS struct {
	maxDepth    int
	maxTime     time.Duration
	maxPlayouts int
	expandDepth int
	cUct        float64
	cPuct       float64
	seed        uint64

	rng   *rand.Rand
	root  *decision
	stats Stats
}

type MCTSOption func(*MCTS)

// WithMCTSMaxDepth caps tree and rollout depth; playouts reaching the cap
// score the position heuristically. Zero leaves depth unbounded.
func WithMCTSMaxDepth(depth int) MCTSOption {
	return func(m *MCTS) {
		m.maxDepth = depth
	}
}

// WithMCTSMaxTime caps the wall-clock budget per decision. The cap
// combines with whatever control the caller passes, whichever is tighter.
func WithMCTSMaxTime(limit time.Duration) MCTSOption {
	return func(m *MCTS) {
		m.maxTime = limit
	}
}

// WithMaxPlayouts caps the simulation count per decision. Zero disables
// the search entirely: ChooseBest answers with a uniformly random move.
func WithMaxPlayouts(playouts int) MCTSOption {
	return func(m *MCTS) {
		m.maxPlayouts = playouts
	}
}

// WithExpandDepth caps how many fresh children one expansion phase adds,
// bounding tree growth per playout.
func WithExpandDepth(depth int) MCTSOption {
	return func(m *MCTS) {
		m.expandDepth = depth
	}
}

// WithCUct sets the UCT exploration constant.
func WithCUct(c float64) MCTSOption {
	return func(m *MCTS) {
		m.cUct = c
	}
}

// WithCPuct sets the exploration constant for prior-carrying moves.
func WithCPuct(c float64) MCTSOption {
	return func(m *MCTS) {
		m.cPuct = c
	}
}

// WithSeed seeds the engine's random source. Runs with the same seed,
// positions and bounds reproduce the same tree.
func WithSeed(seed uint64) MCTSOption {
	return func(m *MCTS) {
		m.seed = seed
	}
}

func NewMCTS(options ...MCTSOption) (*MCTS, error) {
	m := &MCTS{ // Default values
		maxPlayouts: -1,
		expandDepth: 1,
		cUct:        math.Sqrt2,
		cPuct:       1.0,
		seed:        1,
	}
	for _, option := range options {
		option(m)
	}
	if m.maxDepth < 0 {
		return nil, &ConfigError{Option: "max-depth", Value: m.maxDepth, Reason: "cannot be negative"}
	}
	if m.maxTime < 0 {
		return nil, &ConfigError{Option: "max-time", Value: m.maxTime, Reason: "cannot be negative"}
	}
	if m.maxPlayouts < -1 {
		return nil, &ConfigError{Option: "max-playouts", Value: m.maxPlayouts, Reason: "cannot be negative"}
	}
	if m.expandDepth < 1 {
		return nil, &ConfigError{Option: "expand-depth", Value: m.expandDepth, Reason: "must be at least 1"}
	}
	if m.cUct <= 0 {
		return nil, &ConfigError{Option: "c-uct", Value: m.cUct, Reason: "must be positive"}
	}
	if m.cPuct <= 0 {
		return nil, &ConfigError{Option: "c-puct", Value: m.cPuct, Reason: "must be positive"}
	}
	m.rng = rand.New(rand.NewSource(m.seed))
	return m, nil
}

func (m *MCTS) ChooseBest(moves []game.Move, state game.State, tc timectl.Control) (game.Move, error) {
	if len(moves) == 0 {
		return nil, ErrNoMoves
	}
	start := time.Now()
	defer func() {
		m.stats.Elapsed += time.Since(start)
	}()

	if len(moves) == 1 {
		return moves[0], nil
	}
	if m.maxPlayouts == 0 { // No playout budget: any legal move is as good
		return moves[m.rng.Intn(len(moves))], nil
	}

	if m.maxTime > 0 {
		if tc == nil {
			tc = timectl.NewAbsolute(m.maxTime)
		} else {
			limit := m.maxTime
			tc.Constrain(&limit)
		}
	}
	if tc == nil && m.maxPlayouts < 0 {
		return nil, ErrUnbounded
	}

	m.rebind(state, moves)

	playouts := 0
	for m.maxPlayouts < 0 || playouts < m.maxPlayouts {
		if tc != nil && tc.IsExceeded() {
			break
		}
		m.playout(state)
		playouts++
	}

	if len(m.root.children) == 0 {
		// Deadline expired before the first playout finished
		return moves[0], nil
	}
	best := m.root.bestMove()
	for _, move := range moves {
		if move.String() == best.String() {
			return move, nil
		}
	}
	return best, nil
}

func (m *MCTS) Stats() Stats {
	return m.stats
}

// ClearCache drops the playout tree and rewinds the random source to its
// seed, so the next decision starts from the same blank slate as a fresh
// engine.
func (m *MCTS) ClearCache() {
	m.root = nil
	m.rng = rand.New(rand.NewSource(m.seed))
}

// playout runs one select/expand/simulate/backpropagate pass.
func (m *MCTS) playout(state game.State) {
	var current node = m.root
	currentState := state
	depth := 0
	for {
		if m.maxDepth > 0 && depth >= m.maxDepth {
			break
		}
		child, childState, expanded := current.selectOrExpand(m, currentState)
		if child == current { // Terminal node
			break
		}
		current, currentState = child, childState
		depth++
		if expanded {
			break
		}
	}

	score := m.rollout(currentState, depth)
	for n := current; n != nil; n = n.backup(score) {
	}
	m.stats.Playouts++
}

// rollout plays the default random policy to a terminal position or the
// depth cap, scoring the final position.
func (m *MCTS) rollout(state game.State, depth int) float64 {
	moves := state.LegalMoves()
	for len(moves) > 0 && (m.maxDepth == 0 || depth < m.maxDepth) {
		move := moves[m.rng.Intn(len(moves))]
		state = move.Perform(state).Sample(m.rng.Float64())
		moves = state.LegalMoves()
		depth++
	}
	return state.Score()
}

// rebind moves the root to the explored node for the new position, keeping
// the subtree's statistics, or starts a fresh tree when the position was
// never explored.
func (m *MCTS) rebind(state game.State, moves []game.Move) {
	if m.root != nil {
		if found := m.findNode(state.Hash()); found != nil {
			if sameMoves(found.moves, moves) {
				found.parent = nil
				m.root = found
				return
			}
			log.Warn().Uint64("hash", uint64(state.Hash())).
				Msg("explored node matches position hash but not its moves, rebuilding tree")
		}
	}
	m.root = newRoot(state, moves)
	m.stats.Nodes++
}

// findNode searches the explored tree for a position, at most rebindDepth
// plies below the old root.
func (m *MCTS) findNode(hash game.StateHash) *decision {
	type item struct {
		n   node
		ply int
	}
	queue := []item{{m.root, 0}}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		switch n := next.n.(type) {
		case *decision:
			if n.hash == hash {
				return n
			}
			if next.ply < rebindDepth {
				for _, child := range n.children {
					queue = append(queue, item{child, next.ply + 1})
				}
			}
		case *chance:
			// Outcomes sit on the same ply as the move that caused them
			for _, child := range n.children {
				queue = append(queue, item{child, next.ply})
			}
		}
	}
	return nil
}

func sameMoves(a, b []game.Move) bool {
	if len(a) != len(b) {
		return false
	}
	counts := make(map[string]int, len(a))
	for _, move := range a {
		counts[move.String()]++
	}
	for _, move := range b {
		if counts[move.String()] == 0 {
			return false
		}
		counts[move.String()]--
	}
	return true
}
