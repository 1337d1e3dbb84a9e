package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"gambit/arena"
	"gambit/pig"
	"gambit/remote"
	"gambit/searcher"
)

type config struct {
	mode        string
	white       string
	black       string
	target      int
	games       int
	concurrency int
	perMove     time.Duration
	budget      time.Duration
	moveCap     int
	seed        uint64
	sprt        string
	out         string
	addr        string
	verbose     bool
}

func main() {
	cfg := parseFlags()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cfg.verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("exiting")
	}
}

func parseFlags() config {
	cfg := config{}
	flag.StringVar(&cfg.mode, "mode", "play", "play, compare or serve")
	flag.StringVar(&cfg.white, "white", "minimax:depth=8",
		"max seat engine spec; also the served engine in serve mode")
	flag.StringVar(&cfg.black, "black", "mcts:playouts=4000", "min seat engine spec")
	flag.IntVar(&cfg.target, "target", pig.DefaultTarget, "points needed to win")
	flag.IntVar(&cfg.games, "games", 100, "games per comparison")
	flag.IntVar(&cfg.concurrency, "concurrency", 4, "concurrent games in a comparison")
	flag.DurationVar(&cfg.perMove, "permove", 0, "wall clock budget per decision")
	flag.DurationVar(&cfg.budget, "budget", 0, "wall clock budget per seat per game")
	flag.IntVar(&cfg.moveCap, "movecap", 0, "adjudicate games longer than this many moves")
	flag.Uint64Var(&cfg.seed, "seed", 1, "seed for dice and seedable engines")
	flag.StringVar(&cfg.sprt, "sprt", "", "stop a comparison early: elo0,elo1,alpha,beta")
	flag.StringVar(&cfg.out, "out", "", "directory for CSV records of a comparison")
	flag.StringVar(&cfg.addr, "addr", ":8080", "listen address in serve mode")
	flag.BoolVar(&cfg.verbose, "v", false, "debug logging")
	flag.Parse()
	return cfg
}

func run(cfg config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch cfg.mode {
	case "play":
		return runPlay(ctx, cfg)
	case "compare":
		return runCompare(ctx, cfg)
	case "serve":
		return runServe(ctx, cfg)
	default:
		return fmt.Errorf("unknown mode %q", cfg.mode)
	}
}

func runPlay(ctx context.Context, cfg config) error {
	white, err := buildEngine(cfg.white, cfg.seed)
	if err != nil {
		return fmt.Errorf("white engine: %w", err)
	}
	black, err := buildEngine(cfg.black, cfg.seed+1)
	if err != nil {
		return fmt.Errorf("black engine: %w", err)
	}

	match := arena.Match{
		MaxEngine: white,
		MinEngine: black,
		MaxName:   cfg.white,
		MinName:   cfg.black,
		PerGame:   cfg.budget,
		PerMove:   cfg.perMove,
		MoveCap:   cfg.moveCap,
		Seed:      cfg.seed,
	}
	record, err := match.Play(ctx, pig.New(cfg.target))
	if err != nil {
		return err
	}

	for _, move := range record.Moves {
		log.Info().
			Int("step", move.Step).
			Str("seat", move.Seat.String()).
			Str("move", move.Move).
			Int64("nodes", move.Stats.Nodes).
			Int64("playouts", move.Stats.Playouts).
			Dur("elapsed", move.Stats.Elapsed).
			Msg("move")
	}
	log.Info().
		Str("winner", record.Winner.String()).
		Float64("final", record.Final).
		Bool("capped", record.Capped).
		Dur("duration", record.Duration()).
		Msgf("%s vs %s over %d moves", record.MaxName, record.MinName, len(record.Moves))
	return nil
}

func runCompare(ctx context.Context, cfg config) error {
	test, err := parseSPRT(cfg.sprt)
	if err != nil {
		return err
	}

	a := &arena.Arena{
		Contender: func() (searcher.Engine, error) { return buildEngine(cfg.white, cfg.seed) },
		Baseline:  func() (searcher.Engine, error) { return buildEngine(cfg.black, cfg.seed+1) },
		Start:     pig.New(cfg.target),
		Games:     cfg.games,
		Workers:   cfg.concurrency,
		PerGame:   cfg.budget,
		PerMove:   cfg.perMove,
		MoveCap:   cfg.moveCap,
		Seed:      cfg.seed,
		Test:      test,
	}

	result, err := a.Run(ctx)
	if err != nil {
		return err
	}

	score := result.Score
	log.Info().
		Float64("elo", score.Elo()).
		Float64("los", score.LOS()).
		Str("verdict", result.Verdict.String()).
		Msgf("final score %d-%d-%d over %d games",
			score.Wins, score.Losses, score.Draws, score.Games())

	if cfg.out != "" {
		writer, err := arena.NewWriter(cfg.out)
		if err != nil {
			return err
		}
		if err := writer.WriteGameRecords(result.Records); err != nil {
			return err
		}
		if err := writer.WriteMoveRecords(result.Records); err != nil {
			return err
		}
		log.Info().Str("dir", cfg.out).Msg("records written")
	}
	return nil
}

func runServe(ctx context.Context, cfg config) error {
	engine, err := buildEngine(cfg.white, cfg.seed)
	if err != nil {
		return fmt.Errorf("served engine: %w", err)
	}
	server := remote.NewServer(engine, pig.Codec{})
	return server.ListenAndServe(ctx, cfg.addr)
}

// buildEngine parses an engine spec: a name, optionally followed by a
// colon and arguments.
//
//	minimax:depth=8,probe=centerToEnd,table=65536
//	mcts:playouts=4000,cuct=1.4
//	uniform
//	fixed:2
//	remote:http://host:8080
func buildEngine(spec string, seed uint64) (searcher.Engine, error) {
	name, args, _ := strings.Cut(spec, ":")
	switch name {
	case "minimax":
		return buildMinimax(args)
	case "mcts":
		return buildMCTS(args, seed)
	case "uniform":
		return searcher.NewUniform(seed), nil
	case "fixed":
		n := 0
		if args != "" {
			parsed, err := strconv.Atoi(args)
			if err != nil {
				return nil, fmt.Errorf("fixed move index %q: %w", args, err)
			}
			n = parsed
		}
		return searcher.NewFixed(n)
	case "remote":
		if args == "" {
			return nil, fmt.Errorf("remote engine needs a URL")
		}
		return remote.NewClient(args, pig.Codec{}), nil
	default:
		return nil, fmt.Errorf("unknown engine %q", name)
	}
}

func buildMinimax(args string) (searcher.Engine, error) {
	kvs, err := pairs(args)
	if err != nil {
		return nil, err
	}
	var options []searcher.MinimaxOption
	for _, kv := range kvs {
		key, value := kv[0], kv[1]
		switch key {
		case "depth":
			n, err := strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("depth %q: %w", value, err)
			}
			options = append(options, searcher.WithMaxDepth(n))
		case "time":
			d, err := time.ParseDuration(value)
			if err != nil {
				return nil, fmt.Errorf("time %q: %w", value, err)
			}
			options = append(options, searcher.WithMaxTime(d))
		case "probe":
			probe, err := searcher.ParseProbeWindow(value)
			if err != nil {
				return nil, err
			}
			options = append(options, searcher.WithProbeWindow(probe))
		case "table":
			n, err := strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("table %q: %w", value, err)
			}
			options = append(options, searcher.WithTableSize(n))
		case "deepening":
			enabled, err := strconv.ParseBool(value)
			if err != nil {
				return nil, fmt.Errorf("deepening %q: %w", value, err)
			}
			options = append(options, searcher.WithIterativeDeepening(enabled))
		case "strict":
			enabled, err := strconv.ParseBool(value)
			if err != nil {
				return nil, fmt.Errorf("strict %q: %w", value, err)
			}
			options = append(options, searcher.WithStrictTranspositions(enabled))
		default:
			return nil, fmt.Errorf("unknown minimax option %q", key)
		}
	}
	return searcher.NewMinimax(options...)
}

func buildMCTS(args string, seed uint64) (searcher.Engine, error) {
	kvs, err := pairs(args)
	if err != nil {
		return nil, err
	}
	options := []searcher.MCTSOption{searcher.WithSeed(seed)}
	for _, kv := range kvs {
		key, value := kv[0], kv[1]
		switch key {
		case "playouts":
			n, err := strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("playouts %q: %w", value, err)
			}
			options = append(options, searcher.WithMaxPlayouts(n))
		case "time":
			d, err := time.ParseDuration(value)
			if err != nil {
				return nil, fmt.Errorf("time %q: %w", value, err)
			}
			options = append(options, searcher.WithMCTSMaxTime(d))
		case "depth":
			n, err := strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("depth %q: %w", value, err)
			}
			options = append(options, searcher.WithMCTSMaxDepth(n))
		case "expand":
			n, err := strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("expand %q: %w", value, err)
			}
			options = append(options, searcher.WithExpandDepth(n))
		case "cuct":
			c, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return nil, fmt.Errorf("cuct %q: %w", value, err)
			}
			options = append(options, searcher.WithCUct(c))
		case "cpuct":
			c, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return nil, fmt.Errorf("cpuct %q: %w", value, err)
			}
			options = append(options, searcher.WithCPuct(c))
		case "seed":
			s, err := strconv.ParseUint(value, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("seed %q: %w", value, err)
			}
			options = append(options, searcher.WithSeed(s))
		default:
			return nil, fmt.Errorf("unknown mcts option %q", key)
		}
	}
	return searcher.NewMCTS(options...)
}

func pairs(args string) ([][2]string, error) {
	if args == "" {
		return nil, nil
	}
	var out [][2]string
	for _, pair := range strings.Split(args, ",") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" || value == "" {
			return nil, fmt.Errorf("engine option %q is not key=value", pair)
		}
		out = append(out, [2]string{key, value})
	}
	return out, nil
}

func parseSPRT(spec string) (*arena.SPRT, error) {
	if spec == "" {
		return nil, nil
	}
	parts := strings.Split(spec, ",")
	if len(parts) != 4 {
		return nil, fmt.Errorf("sprt needs elo0,elo1,alpha,beta")
	}
	values := make([]float64, len(parts))
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("sprt value %q: %w", part, err)
		}
		values[i] = v
	}
	return &arena.SPRT{Elo0: values[0], Elo1: values[1], Alpha: values[2], Beta: values[3]}, nil
}
