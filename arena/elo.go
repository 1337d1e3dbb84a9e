package arena

import "math"

// Score tallies a series of games from the contender's perspective.
type Score struct {
	Wins   int
	Losses int
	Draws  int
}

func (s Score) Games() int {
	return s.Wins + s.Losses + s.Draws
}

// WinningFraction counts a draw as half a win.
func (s Score) WinningFraction() float64 {
	return (float64(s.Wins) + 0.5*float64(s.Draws)) / float64(s.Games())
}

// Elo estimates the contender's rating advantage from the winning
// fraction. A score without any games, wins or losses has no estimate and
// reports an infinity.
func (s Score) Elo() float64 {
	return -math.Log(1/s.WinningFraction()-1) * 400 / math.Ln10
}

// LOS is the likelihood of superiority: the probability that the
// contender is genuinely stronger given the decisive games.
func (s Score) LOS() float64 {
	decisive := float64(s.Wins + s.Losses)
	return 0.5 + 0.5*math.Erf(float64(s.Wins-s.Losses)/math.Sqrt(2*decisive))
}
