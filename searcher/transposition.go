package searcher

import "gambit/game"

const (
	boundLower = 1 << iota
	boundUpper
)

const boundExact = boundLower | boundUpper

// ttEntry caches the search result of one position. In strict mode the
// position itself is kept so hits can be verified against fingerprint
// collisions.
type ttEntry struct {
	key   game.StateHash
	state game.State
	move  game.Move
	score float64
	depth int16
	bound uint8
	used  bool
}

// transposition is a fixed-capacity, power-of-two sized cache from
// position fingerprints to search results.
type transposition struct {
	entries []ttEntry
	mask    uint64
	strict  bool
}

func roundPowerOfTwo(size int) int {
	x := 1
	for (x << 1) <= size {
		x <<= 1
	}
	return x
}

func newTransposition(size int, strict bool) *transposition {
	n := roundPowerOfTwo(size)
	return &transposition{
		entries: make([]ttEntry, n),
		mask:    uint64(n - 1),
		strict:  strict,
	}
}

// read returns the cached entry for the position, however shallow its
// recorded depth. Callers decide whether the depth suffices.
func (t *transposition) read(state game.State) (ttEntry, bool) {
	entry := t.entries[uint64(state.Hash())&t.mask]
	if !entry.used || entry.key != state.Hash() {
		return ttEntry{}, false
	}
	if t.strict && !game.Equal(entry.state, state) {
		return ttEntry{}, false
	}
	return entry, true
}

// write caches a search result. On an index collision the deeper search
// survives.
func (t *transposition) write(state game.State, depth int, score float64, bound uint8, move game.Move) {
	index := uint64(state.Hash()) & t.mask
	if prev := t.entries[index]; prev.used && int(prev.depth) > depth {
		return
	}
	entry := ttEntry{
		key:   state.Hash(),
		move:  move,
		score: score,
		depth: int16(depth),
		bound: bound,
		used:  true,
	}
	if t.strict {
		entry.state = state
	}
	t.entries[index] = entry
}

func (t *transposition) clear() {
	for i := range t.entries {
		t.entries[i] = ttEntry{}
	}
}
