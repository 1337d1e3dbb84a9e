package game

// StateHash fingerprints a position for caching and tree reuse.
type StateHash uint64

// Seat identifies the side to move. Engines maximize for Max and minimize
// for Min; scores are always reported from Max's perspective.
type Seat int8

const (
	Max Seat = 1
	Min Seat = -1
)

func (s Seat) Flip() Seat { return -s }

func (s Seat) String() string {
	switch s {
	case Max:
		return "max"
	case Min:
		return "min"
	default:
		return "none"
	}
}

// State should be immutable - operations on State always return a new copy.
// A position with no legal moves is terminal.
type State interface {
	Player() Seat
	LegalMoves() []Move
	// Score evaluates the position to a value between -1 and 1 from Max's
	// perspective: the terminal result for ended games, a heuristic otherwise.
	Score() float64
	Hash() StateHash
}

// Move is a single player action. Performing it yields the distribution of
// positions the move can resolve to; deterministic moves yield one outcome.
type Move interface {
	String() string
	Perform(state State) Distribution
}

// PriorMove is an optional Move capability carrying a policy prior in [0, 1]
// for prior-weighted selection.
type PriorMove interface {
	Move
	Prior() float64
}

// Distribution enumerates the outcomes of a move in a canonical order.
type Distribution interface {
	Len() int
	// Outcome returns the ith outcome and its probability. Probabilities
	// over all outcomes sum to 1.
	Outcome(i int) (State, float64)
	// Sample picks an outcome deterministically from a uniform u in [0, 1).
	Sample(u float64) State
}
