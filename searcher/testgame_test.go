package searcher

import (
	"fmt"
	"hash/fnv"

	"gambit/game"
)

// treeGame is a hand-built game tree with known best moves. Nodes carry a
// player, a score and labelled edges; an edge with several outcomes is a
// stochastic move.
type treeGame struct {
	nodes map[string]*treeNode
}

type treeNode struct {
	player game.Seat
	score  float64
	hash   game.StateHash // 0 derives the hash from the node name
	edges  []treeEdge
}

type treeEdge struct {
	label    string
	outcomes []treeOutcome
}

type treeOutcome struct {
	dest string
	prob float64
}

func (g *treeGame) state(name string) treeState {
	node, ok := g.nodes[name]
	if !ok {
		panic(fmt.Sprintf("unknown tree node %q", name))
	}
	return treeState{game: g, name: name, node: node}
}

type treeState struct {
	game *treeGame
	name string
	node *treeNode
}

func (s treeState) Player() game.Seat {
	return s.node.player
}

func (s treeState) LegalMoves() []game.Move {
	moves := make([]game.Move, len(s.node.edges))
	for i := range s.node.edges {
		moves[i] = treeMove{game: s.game, from: s.name, edge: i}
	}
	return moves
}

func (s treeState) Score() float64 {
	return s.node.score
}

func (s treeState) Hash() game.StateHash {
	if s.node.hash != 0 {
		return s.node.hash
	}
	h := fnv.New64a()
	h.Write([]byte(s.name))
	return game.StateHash(h.Sum64())
}

type treeMove struct {
	game *treeGame
	from string
	edge int
}

func (m treeMove) String() string {
	return m.game.nodes[m.from].edges[m.edge].label
}

func (m treeMove) Perform(game.State) game.Distribution {
	outcomes := m.game.nodes[m.from].edges[m.edge].outcomes
	if len(outcomes) == 1 {
		return game.Unit(m.game.state(outcomes[0].dest))
	}
	states := make([]game.State, len(outcomes))
	probs := make([]float64, len(outcomes))
	for i, outcome := range outcomes {
		states[i] = m.game.state(outcome.dest)
		probs[i] = outcome.prob
	}
	return game.Explicit{States: states, Probs: probs}
}

// trapGame rewards the patient line only visible two plies deep: "greedy"
// banks 0.4 immediately while "patient" looks worse at depth one (-0.2)
// but forces a win.
func trapGame() *treeGame {
	return &treeGame{nodes: map[string]*treeNode{
		"root": {player: game.Max, edges: []treeEdge{
			{label: "greedy", outcomes: []treeOutcome{{dest: "bank", prob: 1}}},
			{label: "patient", outcomes: []treeOutcome{{dest: "setup", prob: 1}}},
		}},
		"bank":  {player: game.Min, score: 0.4},
		"setup": {player: game.Min, score: -0.2, edges: []treeEdge{
			{label: "reply", outcomes: []treeOutcome{{dest: "win", prob: 1}}},
		}},
		"win": {player: game.Max, score: 1},
	}}
}

// gambleGame offers an even coin flip worth 0 in expectation against a
// safe 0.4.
func gambleGame() *treeGame {
	return &treeGame{nodes: map[string]*treeNode{
		"root": {player: game.Max, edges: []treeEdge{
			{label: "gamble", outcomes: []treeOutcome{
				{dest: "jackpot", prob: 0.5},
				{dest: "bust", prob: 0.5},
			}},
			{label: "safe", outcomes: []treeOutcome{{dest: "bank", prob: 1}}},
		}},
		"jackpot": {player: game.Min, score: 1},
		"bust":    {player: game.Min, score: -1},
		"bank":    {player: game.Min, score: 0.4},
	}}
}
