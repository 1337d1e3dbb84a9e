// Package arena evaluates engines against each other: single games, batch
// runs over a worker pool, rating estimates and a sequential stopping
// test, with CSV export of the collected records.
package arena

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/exp/rand"

	"gambit/game"
	"gambit/searcher"
	"gambit/timectl"
)

// DefaultMoveCap adjudicates runaway games.
const DefaultMoveCap = 1000

// MoveRecord is one decision of a game: who moved, what they played and
// what the search cost.
type MoveRecord struct {
	Step  int
	Seat  game.Seat
	Move  string
	Stats searcher.Stats
}

// GameRecord is the outcome of one game. Winner is 0 when the game ended
// level or hit the move cap undecided.
type GameRecord struct {
	ID        int
	MaxName   string
	MinName   string
	Winner    game.Seat
	Final     float64 // score of the last position
	Capped    bool
	Moves     []MoveRecord
	StartTime time.Time
	EndTime   time.Time
}

func (r GameRecord) Duration() time.Duration {
	return r.EndTime.Sub(r.StartTime)
}

// Match drives one game between two engines. The zero value plays without
// time budgets; engines must then bound themselves.
type Match struct {
	MaxEngine searcher.Engine
	MinEngine searcher.Engine
	MaxName   string
	MinName   string
	PerGame   time.Duration // wall-clock budget per seat for the whole game
	PerMove   time.Duration // wall-clock budget per decision
	MoveCap   int
	Seed      uint64 // seed for resolving chance outcomes
}

// controller builds one seat's per-game budget, or nil when the match
// carries none.
func (m Match) controller() (*timectl.Controller, error) {
	if m.PerGame <= 0 && m.PerMove <= 0 {
		return nil, nil
	}
	var outer timectl.Control
	if m.PerGame > 0 {
		outer = timectl.NewAbsolute(m.PerGame)
	}
	return timectl.NewController(outer, m.PerMove)
}

// Play runs the game to the end, the move cap or the context's
// cancellation, whichever is first.
func (m Match) Play(ctx context.Context, start game.State) (record GameRecord, err error) {
	record = GameRecord{
		MaxName:   m.MaxName,
		MinName:   m.MinName,
		StartTime: time.Now(),
	}
	defer func() {
		record.EndTime = time.Now()
	}()

	maxCtl, err := m.controller()
	if err != nil {
		return record, fmt.Errorf("max seat budget: %w", err)
	}
	minCtl, err := m.controller()
	if err != nil {
		return record, fmt.Errorf("min seat budget: %w", err)
	}

	m.MaxEngine.ClearCache()
	m.MinEngine.ClearCache()
	rng := rand.New(rand.NewSource(m.Seed))

	moveCap := m.MoveCap
	if moveCap <= 0 {
		moveCap = DefaultMoveCap
	}

	state := start
	for step := 1; ; step++ {
		if err := ctx.Err(); err != nil {
			return record, err
		}

		moves := state.LegalMoves()
		if len(moves) == 0 {
			break
		}
		if step > moveCap {
			record.Capped = true
			break
		}

		engine, ctl := m.MaxEngine, maxCtl
		if state.Player() == game.Min {
			engine, ctl = m.MinEngine, minCtl
		}
		var tc timectl.Control
		if ctl != nil {
			tc = ctl.ForMove()
		}

		before := engine.Stats()
		move, err := engine.ChooseBest(moves, state, tc)
		if err != nil {
			return record, fmt.Errorf("move %d (%v): %w", step, state.Player(), err)
		}
		record.Moves = append(record.Moves, MoveRecord{
			Step:  step,
			Seat:  state.Player(),
			Move:  move.String(),
			Stats: engine.Stats().Sub(before),
		})

		state = move.Perform(state).Sample(rng.Float64())
	}

	record.Final = state.Score()
	switch {
	case record.Final > 0:
		record.Winner = game.Max
	case record.Final < 0:
		record.Winner = game.Min
	}
	return record, nil
}
