package searcher

import (
	"math"

	"gambit/game"
)

// decision is a position where a player picks the next move. children[i]
// is the explored node behind moves[i]; moves beyond len(children) are
// still unexplored.
type decision struct {
	parent   node
	seat     game.Seat // seat that owns the edge into this node
	player   game.Seat
	hash     game.StateHash
	moves    []game.Move
	children []node
	value    float64
	visits   float64
}

func newDecision(parent node, seat game.Seat, state game.State) *decision {
	return &decision{
		parent: parent,
		seat:   seat,
		player: state.Player(),
		hash:   state.Hash(),
		moves:  state.LegalMoves(),
	}
}

// newRoot builds a tree root ranking the caller's moves instead of the
// position's own enumeration.
func newRoot(state game.State, moves []game.Move) *decision {
	return &decision{
		seat:   state.Player(),
		player: state.Player(),
		hash:   state.Hash(),
		moves:  moves,
	}
}

func (d *decision) selectOrExpand(m *MCTS, state game.State) (node, game.State, bool) {
	if len(d.moves) == 0 { // Terminal node
		return d, state, false
	}

	if len(d.children) < len(d.moves) { // Expandable node
		child, childState := d.expand(m, state)
		return child, childState, true
	}

	// Fully expanded node
	ith := d.pickChild(m)
	move := d.moves[ith]
	switch child := d.children[ith].(type) {
	case *decision:
		outcome, _ := move.Perform(state).Outcome(0)
		return child, outcome, false
	case *chance:
		// Draw this traversal's outcome; the chance node resolves it
		outcome := move.Perform(state).Sample(m.rng.Float64())
		return child, outcome, false
	default:
		panic("unexpected node type")
	}
}

// expand explores up to expandDepth fresh moves at once. The playout
// continues from the first of them; the rest await selection by their
// infinite exploration score.
func (d *decision) expand(m *MCTS, state game.State) (node, game.State) {
	count := m.expandDepth
	if unexplored := len(d.moves) - len(d.children); count > unexplored {
		count = unexplored
	}

	var first node
	var firstState game.State
	for i := 0; i < count; i++ {
		move := d.moves[len(d.children)]
		dist := move.Perform(state)

		var child node
		var childState game.State
		if dist.Len() == 1 {
			outcome, _ := dist.Outcome(0)
			child, childState = newDecision(d, d.player, outcome), outcome
		} else {
			child = newChance(d, d.player)
			childState = dist.Sample(m.rng.Float64())
		}
		d.children = append(d.children, child)
		m.stats.Nodes++

		if first == nil {
			first, firstState = child, childState
		}
	}
	return first, firstState
}

func (d *decision) pickChild(m *MCTS) int {
	if d.visits == 0 {
		panic("node has children but no visits")
	}

	normalizer := m.cUct * m.cUct * math.Log(d.visits)
	sqrtVisits := math.Sqrt(d.visits)

	maxIndex := -1
	maxScore := math.Inf(-1)
	for i, child := range d.children {
		q, n := child.valueVisits()
		var score float64
		if prior, ok := d.moves[i].(game.PriorMove); ok {
			score = puct(q, n, prior.Prior(), m.cPuct, sqrtVisits)
		} else {
			score = uct(q, n, normalizer)
		}
		if score == math.Inf(1) {
			return i
		}
		if score > maxScore {
			maxScore = score
			maxIndex = i
		}
	}
	return maxIndex
}

func (d *decision) backup(score float64) node {
	d.value += float64(d.seat) * score
	d.visits++
	return d.parent
}

func (d *decision) valueVisits() (float64, float64) {
	return d.value, d.visits
}

// bestMove picks the most visited child, the robust criterion, rather
// than the highest raw value.
func (d *decision) bestMove() game.Move {
	if len(d.children) == 0 {
		panic("node has no children")
	}

	bestIndex := 0
	_, maxVisits := d.children[0].valueVisits()
	for i, child := range d.children[1:] {
		if _, n := child.valueVisits(); n > maxVisits {
			maxVisits = n
			bestIndex = i + 1
		}
	}
	return d.moves[bestIndex]
}
