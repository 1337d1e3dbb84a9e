// Package pig implements the dice game Pig, a two-seat chance game small
// enough to exercise every engine feature: stochastic and deterministic
// moves, terminal scoring and a midgame heuristic.
//
// On their turn a player repeatedly rolls a die, accumulating a turn
// total. Rolling a 1 forfeits the turn total and passes the turn; holding
// banks it. The first seat to bank the target total wins.
package pig

import (
	"encoding/binary"
	"hash/fnv"

	"gambit/game"
)

// DefaultTarget is the banked total that wins the game.
const DefaultTarget = 50

// Position is one Pig game state. Positions are immutable values; moves
// return fresh copies.
type Position struct {
	Banked    [2]int // banked totals, indexed by seat
	TurnTotal int    // unbanked total of the seat to move
	ToMove    game.Seat
	Target    int
}

// New returns the starting position. A non-positive target selects
// DefaultTarget.
func New(target int) Position {
	if target < 1 {
		target = DefaultTarget
	}
	return Position{ToMove: game.Max, Target: target}
}

func seatIndex(s game.Seat) int {
	if s == game.Max {
		return 0
	}
	return 1
}

func (p Position) Player() game.Seat {
	return p.ToMove
}

// Winner returns the winning seat of an ended game.
func (p Position) Winner() (game.Seat, bool) {
	switch {
	case p.Banked[0] >= p.Target:
		return game.Max, true
	case p.Banked[1] >= p.Target:
		return game.Min, true
	default:
		return 0, false
	}
}

func (p Position) LegalMoves() []game.Move {
	if _, over := p.Winner(); over {
		return nil
	}
	return []game.Move{Roll, Hold}
}

// Score is +1 or -1 for an ended game. Otherwise it is the banked margin
// scaled by the target, with the mover's turn total half-credited since it
// is still at risk; progress is capped just short of the target so only a
// won game scores +-1.
func (p Position) Score() float64 {
	if winner, over := p.Winner(); over {
		return float64(winner)
	}
	progress := [2]float64{float64(p.Banked[0]), float64(p.Banked[1])}
	progress[seatIndex(p.ToMove)] += float64(p.TurnTotal) / 2
	for i, v := range progress {
		if limit := float64(p.Target - 1); v > limit {
			progress[i] = limit
		}
	}
	return (progress[0] - progress[1]) / float64(p.Target)
}

func (p Position) Hash() game.StateHash {
	hasher := fnv.New64a()
	binary.Write(hasher, binary.LittleEndian, int64(p.Banked[0]))
	binary.Write(hasher, binary.LittleEndian, int64(p.Banked[1]))
	binary.Write(hasher, binary.LittleEndian, int64(p.TurnTotal))
	binary.Write(hasher, binary.LittleEndian, int64(p.ToMove))
	binary.Write(hasher, binary.LittleEndian, int64(p.Target))
	return game.StateHash(hasher.Sum64())
}

// Equals implements game.Comparable.
func (p Position) Equals(other game.State) bool {
	o, ok := other.(Position)
	return ok && o == p
}

// roll resolves one die face.
func (p Position) roll(face int) Position {
	next := p
	if face == 1 {
		next.TurnTotal = 0
		next.ToMove = p.ToMove.Flip()
		return next
	}
	next.TurnTotal += face
	return next
}

// hold banks the turn total and passes the turn.
func (p Position) hold() Position {
	next := p
	next.Banked[seatIndex(p.ToMove)] += p.TurnTotal
	next.TurnTotal = 0
	next.ToMove = p.ToMove.Flip()
	return next
}

// Move is one of the two Pig actions.
type Move uint8

const (
	Roll Move = iota
	Hold
)

func (m Move) String() string {
	if m == Roll {
		return "roll"
	}
	return "hold"
}

func (m Move) Perform(state game.State) game.Distribution {
	p, ok := state.(Position)
	if !ok {
		panic("pig move performed on a foreign position")
	}
	if m == Hold {
		return game.Unit(p.hold())
	}
	states := make([]game.State, 6)
	probs := make([]float64, 6)
	for face := 1; face <= 6; face++ {
		states[face-1] = p.roll(face)
		probs[face-1] = 1.0 / 6
	}
	return game.Explicit{States: states, Probs: probs}
}

// ParseMove maps a move description back to the move.
func ParseMove(text string) (Move, bool) {
	switch text {
	case "roll":
		return Roll, true
	case "hold":
		return Hold, true
	default:
		return 0, false
	}
}
