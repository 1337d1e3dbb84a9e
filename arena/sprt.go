package arena

import "math"

// Verdict is the state of a sequential test.
type Verdict int

const (
	// Continue means the games so far are not decisive either way.
	Continue Verdict = iota
	// AcceptStronger accepts that the contender is at least Elo1 stronger.
	AcceptStronger
	// AcceptNotStronger accepts that the contender is at most Elo0 stronger.
	AcceptNotStronger
)

func (v Verdict) String() string {
	switch v {
	case AcceptStronger:
		return "accept H1"
	case AcceptNotStronger:
		return "accept H0"
	default:
		return "continue"
	}
}

// SPRT is a sequential probability ratio test over a running Score,
// deciding between the hypotheses "the contender is Elo1 stronger" (H1)
// and "the contender is Elo0 stronger" (H0) at the given error rates. It
// uses the generalized form on the observed score distribution, so draws
// count without a separate draw model.
type SPRT struct {
	Elo0  float64 // H0 rating advantage, typically 0
	Elo1  float64 // H1 rating advantage, typically a few points
	Alpha float64 // false positive rate
	Beta  float64 // false negative rate
}

// expectedScore is the winning fraction a rating advantage predicts.
func expectedScore(elo float64) float64 {
	return 1 / (1 + math.Pow(10, -elo/400))
}

// LLR approximates the log-likelihood ratio of H1 over H0 for the score.
func (s SPRT) LLR(score Score) float64 {
	n := float64(score.Games())
	if n < 2 {
		return 0
	}
	wins := float64(score.Wins)
	draws := float64(score.Draws)
	losses := float64(score.Losses)
	// A small uniform prior keeps the variance positive for spotless
	// records.
	const epsilon = 1e-3
	if wins < epsilon || draws < epsilon || losses < epsilon {
		wins = (1-epsilon)*wins + epsilon*n/3
		draws = (1-epsilon)*draws + epsilon*n/3
		losses = (1-epsilon)*losses + epsilon*n/3
	}
	// First and second moments of the per-game score (win 1, draw 0.5)
	mean := (wins + 0.5*draws) / n
	second := (wins + 0.25*draws) / n
	variance := second - mean*mean
	if variance <= 0 {
		return 0
	}
	score0 := expectedScore(s.Elo0)
	score1 := expectedScore(s.Elo1)
	return (score1 - score0) * (2*mean - score0 - score1) / (2 * variance / n)
}

// Decision applies the test bounds to the score so far.
func (s SPRT) Decision(score Score) Verdict {
	llr := s.LLR(score)
	upper := math.Log((1 - s.Beta) / s.Alpha)
	lower := math.Log(s.Beta / (1 - s.Alpha))
	switch {
	case llr >= upper:
		return AcceptStronger
	case llr <= lower:
		return AcceptNotStronger
	default:
		return Continue
	}
}
