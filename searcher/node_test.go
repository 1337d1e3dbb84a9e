package searcher

import (
	"fmt"

	"gambit/game"
)

type mockMove struct {
	id    int
	next  []mockState
	probs []float64
}

func (m mockMove) String() string {
	return fmt.Sprintf("move%d", m.id)
}

func (m mockMove) Perform(game.State) game.Distribution {
	if len(m.next) == 1 {
		return game.Unit(m.next[0])
	}
	states := make([]game.State, len(m.next))
	for i, next := range m.next {
		states[i] = next
	}
	return game.Explicit{States: states, Probs: m.probs}
}

// mockPriorMove is a mockMove carrying a policy prior.
type mockPriorMove struct {
	mockMove
	prior float64
}

func (m mockPriorMove) Prior() float64 {
	return m.prior
}

type mockState struct {
	player game.Seat
	moves  []game.Move
	score  float64
	hash   game.StateHash
}

func (m mockState) Player() game.Seat {
	return m.player
}

func (m mockState) LegalMoves() []game.Move {
	return m.moves
}

func (m mockState) Score() float64 {
	return m.score
}

func (m mockState) Hash() game.StateHash {
	return m.hash
}
