package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"gambit/arena"
	"gambit/remote"
	"gambit/searcher"
)

func TestBuildEngine(t *testing.T) {
	t.Run("building each engine kind", func(t *testing.T) {
		engine, err := buildEngine("minimax:depth=6,probe=centerToEnd,table=1024,deepening=false,strict=true", 1)
		require.NoError(t, err)
		require.IsType(t, (*searcher.Minimax)(nil), engine)

		engine, err = buildEngine("mcts:playouts=100,cuct=1.2,cpuct=0.5,expand=2,depth=50,time=10ms,seed=9", 1)
		require.NoError(t, err)
		require.IsType(t, (*searcher.MCTS)(nil), engine)

		engine, err = buildEngine("uniform", 7)
		require.NoError(t, err)
		require.IsType(t, (*searcher.Uniform)(nil), engine)

		engine, err = buildEngine("fixed:2", 1)
		require.NoError(t, err)
		require.IsType(t, (*searcher.Fixed)(nil), engine)

		engine, err = buildEngine("fixed", 1)
		require.NoError(t, err, "A bare fixed spec plays the first move")
		require.IsType(t, (*searcher.Fixed)(nil), engine)

		engine, err = buildEngine("remote:http://localhost:9000", 1)
		require.NoError(t, err)
		require.IsType(t, (*remote.Client)(nil), engine)
	})

	t.Run("rejecting malformed specs", func(t *testing.T) {
		specs := []string{
			"alphabeta",
			"minimax:depth=abc",
			"minimax:depth",
			"minimax:probe=inward",
			"minimax:seed=1",
			"mcts:frob=1",
			"mcts:playouts=many",
			"fixed:x",
			"fixed:-1",
			"remote",
		}
		for _, spec := range specs {
			_, err := buildEngine(spec, 1)
			require.Error(t, err, "spec %q", spec)
		}
	})
}

func TestParseSPRT(t *testing.T) {
	t.Run("disabled without a spec", func(t *testing.T) {
		test, err := parseSPRT("")
		require.NoError(t, err)
		require.Nil(t, test)
	})

	t.Run("parsing the four parameters", func(t *testing.T) {
		test, err := parseSPRT("0, 20, 0.05, 0.1")
		require.NoError(t, err)
		require.Equal(t, &arena.SPRT{Elo0: 0, Elo1: 20, Alpha: 0.05, Beta: 0.1}, test)
	})

	t.Run("rejecting malformed specs", func(t *testing.T) {
		for _, spec := range []string{"0,20", "a,b,c,d", "0,20,0.05,0.05,1"} {
			_, err := parseSPRT(spec)
			require.Error(t, err, "spec %q", spec)
		}
	})
}
