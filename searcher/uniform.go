package searcher

import (
	"time"

	"golang.org/x/exp/rand"

	"gambit/game"
	"gambit/timectl"
)

// Uniform picks a uniformly random legal move: the baseline opponent for
// ranking real engines.
type Uniform struct {
	seed  uint64
	rng   *rand.Rand
	stats Stats
}

func NewUniform(seed uint64) *Uniform {
	return &Uniform{seed: seed, rng: rand.New(rand.NewSource(seed))}
}

func (u *Uniform) ChooseBest(moves []game.Move, _ game.State, _ timectl.Control) (game.Move, error) {
	if len(moves) == 0 {
		return nil, ErrNoMoves
	}
	start := time.Now()
	move := moves[u.rng.Intn(len(moves))]
	u.stats.Elapsed += time.Since(start)
	return move, nil
}

func (u *Uniform) Stats() Stats {
	return u.stats
}

func (u *Uniform) ClearCache() {
	u.rng = rand.New(rand.NewSource(u.seed))
}

// Fixed always picks the nth legal move, wrapping past the end of the
// list. Useful as a fully deterministic opponent.
type Fixed struct {
	n     int
	stats Stats
}

func NewFixed(n int) (*Fixed, error) {
	if n < 0 {
		return nil, &ConfigError{Option: "move-index", Value: n, Reason: "cannot be negative"}
	}
	return &Fixed{n: n}, nil
}

func (f *Fixed) ChooseBest(moves []game.Move, _ game.State, _ timectl.Control) (game.Move, error) {
	if len(moves) == 0 {
		return nil, ErrNoMoves
	}
	start := time.Now()
	move := moves[f.n%len(moves)]
	f.stats.Elapsed += time.Since(start)
	return move, nil
}

func (f *Fixed) Stats() Stats {
	return f.stats
}

func (f *Fixed) ClearCache() {}
