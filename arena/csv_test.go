package arena

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"gambit/game"
	"gambit/searcher"
)

func sampleRecords() []GameRecord {
	start := time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)
	return []GameRecord{
		{
			ID:      1,
			MaxName: "contender",
			MinName: "baseline",
			Winner:  game.Max,
			Final:   1,
			Moves: []MoveRecord{
				{
					Step: 1, Seat: game.Max, Move: "roll",
					Stats: searcher.Stats{Nodes: 120, CacheMisses: 80, Elapsed: 3 * time.Millisecond},
				},
				{
					Step: 2, Seat: game.Min, Move: "hold",
					Stats: searcher.Stats{Playouts: 400, Elapsed: 7 * time.Millisecond},
				},
			},
			StartTime: start,
			EndTime:   start.Add(2 * time.Second),
		},
		{
			ID:        2,
			MaxName:   "baseline",
			MinName:   "contender",
			Final:     0.25,
			Capped:    true,
			Moves:     []MoveRecord{{Step: 1, Seat: game.Max, Move: "roll"}},
			StartTime: start.Add(time.Minute),
			EndTime:   start.Add(time.Minute + 900*time.Millisecond),
		},
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWriter(t *testing.T) {
	t.Run("creating the output directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "batch", "out")

		_, err := NewWriter(dir)

		require.NoError(t, err)
		info, err := os.Stat(dir)
		require.NoError(t, err)
		require.True(t, info.IsDir())
	})

	t.Run("exporting game records", func(t *testing.T) {
		dir := t.TempDir()
		writer, err := NewWriter(dir)
		require.NoError(t, err)

		require.NoError(t, writer.WriteGameRecords(sampleRecords()))

		rows := readCSV(t, filepath.Join(dir, "game_records.csv"))
		require.Len(t, rows, 3, "Header plus one row per game")
		require.Equal(t,
			[]string{"id", "max", "min", "winner", "final", "moves", "capped",
				"start_time", "end_time", "duration"},
			rows[0])
		require.Equal(t,
			[]string{"1", "contender", "baseline", "max", "1", "2", "false",
				"2024-05-02T10:00:00Z", "2024-05-02T10:00:02Z", "2s"},
			rows[1])
		require.Equal(t, "none", rows[2][3], "A capped game has no winner")
		require.Equal(t, "0.25", rows[2][4])
		require.Equal(t, "true", rows[2][6])
		require.Equal(t, "900ms", rows[2][9])
	})

	t.Run("exporting move records", func(t *testing.T) {
		dir := t.TempDir()
		writer, err := NewWriter(dir)
		require.NoError(t, err)

		require.NoError(t, writer.WriteMoveRecords(sampleRecords()))

		rows := readCSV(t, filepath.Join(dir, "move_records.csv"))
		require.Len(t, rows, 4, "Header plus one row per move")
		require.Equal(t,
			[]string{"game", "step", "seat", "move", "nodes", "playouts",
				"cache_hits", "cache_misses", "elapsed"},
			rows[0])
		require.Equal(t,
			[]string{"1", "1", "max", "roll", "120", "0", "0", "80", "3ms"},
			rows[1])
		require.Equal(t,
			[]string{"1", "2", "min", "hold", "0", "400", "0", "0", "7ms"},
			rows[2])
		require.Equal(t,
			[]string{"2", "1", "max", "roll", "0", "0", "0", "0", "0s"},
			rows[3])
	})
}
