package arena

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"gambit/game"
	"gambit/searcher"
)

// EngineFactory builds a private engine instance. Workers never share
// instances, so factories are called once per engine per worker.
type EngineFactory func() (searcher.Engine, error)

// Arena runs a batch of games between a contender and a baseline engine,
// alternating seats, and tallies the outcome from the contender's side.
type Arena struct {
	Contender EngineFactory
	Baseline  EngineFactory
	Start     game.State
	Games     int
	Workers   int
	PerGame   time.Duration
	PerMove   time.Duration
	MoveCap   int
	Seed      uint64
	Test      *SPRT // optional early stop
}

type gameInfo struct {
	number         int
	contenderIsMax bool
}

type gameResult struct {
	info   gameInfo
	record GameRecord
}

// Result is the aggregated outcome of a batch.
type Result struct {
	Score   Score
	Verdict Verdict
	Records []GameRecord
}

// Run plays the configured number of games across the worker pool. The
// sequential test, when configured, stops the feed early; games already
// in flight still finish and count.
func (a *Arena) Run(ctx context.Context) (Result, error) {
	if a.Games < 1 {
		return Result{}, fmt.Errorf("arena: nothing to play")
	}
	workers := a.Workers
	if workers < 1 {
		workers = 1
	}

	g, ctx := errgroup.WithContext(ctx)
	infos := make(chan gameInfo)
	results := make(chan gameResult)
	stop := make(chan struct{})

	g.Go(func() error {
		defer close(infos)
		for number := 1; number <= a.Games; number++ {
			info := gameInfo{number: number, contenderIsMax: number%2 == 1}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-stop:
				return nil
			case infos <- info:
			}
		}
		return nil
	})

	wg := &sync.WaitGroup{}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		g.Go(func() error {
			defer wg.Done()
			return a.playGames(ctx, infos, results)
		})
	}
	g.Go(func() error {
		wg.Wait()
		close(results)
		return nil
	})

	result := Result{}
	g.Go(func() error {
		stopped := false
		for res := range results {
			result.Score = tally(result.Score, res)
			result.Records = append(result.Records, res.record)
			score := result.Score
			log.Info().
				Int("game", res.info.number).
				Str("winner", res.record.Winner.String()).
				Msgf("score %d-%d-%d after %d games",
					score.Wins, score.Losses, score.Draws, score.Games())
			if a.Test != nil && !stopped {
				if result.Verdict = a.Test.Decision(score); result.Verdict != Continue {
					log.Info().Msgf("sequential test: %v (llr %.2f)",
						result.Verdict, a.Test.LLR(score))
					close(stop)
					stopped = true
				}
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return result, err
	}
	return result, nil
}

// playGames is one worker: private engines, games drawn off the feed.
func (a *Arena) playGames(ctx context.Context, infos <-chan gameInfo, results chan<- gameResult) error {
	contender, err := a.Contender()
	if err != nil {
		return fmt.Errorf("build contender: %w", err)
	}
	baseline, err := a.Baseline()
	if err != nil {
		return fmt.Errorf("build baseline: %w", err)
	}

	for info := range infos {
		match := Match{
			MaxEngine: contender,
			MinEngine: baseline,
			MaxName:   "contender",
			MinName:   "baseline",
			PerGame:   a.PerGame,
			PerMove:   a.PerMove,
			MoveCap:   a.MoveCap,
			Seed:      a.Seed + uint64(info.number),
		}
		if !info.contenderIsMax {
			match.MaxEngine, match.MinEngine = baseline, contender
			match.MaxName, match.MinName = "baseline", "contender"
		}

		record, err := match.Play(ctx, a.Start)
		if err != nil {
			return fmt.Errorf("game %d: %w", info.number, err)
		}
		record.ID = info.number

		select {
		case <-ctx.Done():
			return ctx.Err()
		case results <- gameResult{info: info, record: record}:
		}
	}
	return nil
}

// tally folds a finished game into the contender's score.
func tally(score Score, res gameResult) Score {
	contenderSeat := game.Min
	if res.info.contenderIsMax {
		contenderSeat = game.Max
	}
	switch res.record.Winner {
	case contenderSeat:
		score.Wins++
	case contenderSeat.Flip():
		score.Losses++
	default:
		score.Draws++
	}
	return score
}
