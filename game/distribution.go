package game

// Unit wraps the single outcome of a deterministic move.
func Unit(state State) Distribution {
	return unit{state: state}
}

type unit struct {
	state State
}

func (d unit) Len() int { return 1 }

func (d unit) Outcome(int) (State, float64) { return d.state, 1 }

func (d unit) Sample(float64) State { return d.state }

// Explicit is a Distribution enumerated as parallel outcome and probability
// slices. Outcomes keep their slice order as the canonical order.
type Explicit struct {
	States []State
	Probs  []float64
}

func (d Explicit) Len() int { return len(d.States) }

func (d Explicit) Outcome(i int) (State, float64) { return d.States[i], d.Probs[i] }

func (d Explicit) Sample(u float64) State {
	cumulative := 0.0
	for i, p := range d.Probs {
		cumulative += p
		if u < cumulative {
			return d.States[i]
		}
	}
	// Guard against probabilities summing to slightly under 1
	return d.States[len(d.States)-1]
}
