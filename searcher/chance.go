package searcher

import "gambit/game"

// chance is a committed move whose stochastic outcome is not yet drawn.
// Children are the outcomes seen so far, told apart by position hash.
type chance struct {
	parent   node
	seat     game.Seat
	children []*decision
	value    float64
	visits   float64
}

func newChance(parent node, seat game.Seat) *chance {
	return &chance{parent: parent, seat: seat}
}

// selectOrExpand resolves a drawn outcome: the position arrives already
// sampled by the parent decision.
func (c *chance) selectOrExpand(m *MCTS, state game.State) (node, game.State, bool) {
	// Select if explored outcome
	if child := c.find(state.Hash()); child != nil {
		return child, state, false
	}
	// Expand if unexplored outcome
	child := newDecision(c, c.seat, state)
	c.children = append(c.children, child)
	m.stats.Nodes++
	return child, state, true
}

func (c *chance) find(hash game.StateHash) *decision {
	for _, child := range c.children {
		if child.hash == hash {
			return child
		}
	}
	return nil
}

func (c *chance) backup(score float64) node {
	c.value += float64(c.seat) * score
	c.visits++
	return c.parent
}

func (c *chance) valueVisits() (float64, float64) {
	return c.value, c.visits
}
