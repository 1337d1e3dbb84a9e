package arena

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Writer exports batch records as CSV files under one directory.
type Writer struct {
	baseDir string
}

func NewWriter(baseDir string) (*Writer, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	return &Writer{baseDir: baseDir}, nil
}

func (w *Writer) WriteGameRecords(records []GameRecord) error {
	path := filepath.Join(w.baseDir, "game_records.csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create game records file: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	defer writer.Flush()

	header := []string{"id", "max", "min", "winner", "final", "moves", "capped", "start_time", "end_time", "duration"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write game records header: %w", err)
	}

	for _, record := range records {
		row := []string{
			strconv.Itoa(record.ID),
			record.MaxName,
			record.MinName,
			record.Winner.String(),
			strconv.FormatFloat(record.Final, 'f', -1, 64),
			strconv.Itoa(len(record.Moves)),
			strconv.FormatBool(record.Capped),
			record.StartTime.Format(time.RFC3339),
			record.EndTime.Format(time.RFC3339),
			record.Duration().String(),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write game record row: %w", err)
		}
	}
	return writer.Error()
}

func (w *Writer) WriteMoveRecords(records []GameRecord) error {
	path := filepath.Join(w.baseDir, "move_records.csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create move records file: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	defer writer.Flush()

	header := []string{"game", "step", "seat", "move", "nodes", "playouts", "cache_hits", "cache_misses", "elapsed"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write move records header: %w", err)
	}

	for _, record := range records {
		for _, move := range record.Moves {
			row := []string{
				strconv.Itoa(record.ID),
				strconv.Itoa(move.Step),
				move.Seat.String(),
				move.Move,
				strconv.FormatInt(move.Stats.Nodes, 10),
				strconv.FormatInt(move.Stats.Playouts, 10),
				strconv.FormatInt(move.Stats.CacheHits, 10),
				strconv.FormatInt(move.Stats.CacheMisses, 10),
				move.Stats.Elapsed.String(),
			}
			if err := writer.Write(row); err != nil {
				return fmt.Errorf("failed to write move record row: %w", err)
			}
		}
	}
	return writer.Error()
}
