// Package remote serves a search engine over HTTP and consumes a served
// one: Server wraps any engine behind a small JSON API, and Client is
// itself an engine, so a served engine drops into matches unchanged. Time
// budgets travel in their wire form and are rebuilt on receipt, keeping
// the deadline meaningful across the network boundary.
package remote

import (
	"encoding/json"
	"fmt"
	"time"

	"gambit/game"
	"gambit/searcher"
	"gambit/timectl"
)

// Codec translates game states to and from the wire form both ends agree
// on. Each game supplies its own codec.
type Codec interface {
	EncodeState(state game.State) ([]byte, error)
	DecodeState(data []byte) (game.State, error)
}

type chooseRequest struct {
	State   json.RawMessage `json:"state"`
	Time    string          `json:"time,omitempty"`
	Reltime string          `json:"reltime,omitempty"`
}

// control rebuilds the caller's deadline. Absent keys leave only the
// engine's own configured bounds.
func (r chooseRequest) control() (timectl.Control, error) {
	switch {
	case r.Time != "" && r.Reltime != "":
		return nil, fmt.Errorf("both time and reltime given")
	case r.Time != "":
		return timectl.FromParam(timectl.Param{Key: timectl.KeyTime, Value: r.Time})
	case r.Reltime != "":
		return timectl.FromParam(timectl.Param{Key: timectl.KeyReltime, Value: r.Reltime})
	default:
		return nil, nil
	}
}

type chooseResponse struct {
	Move  string   `json:"move"`
	Stats statsDTO `json:"stats"`
}

type statsDTO struct {
	Nodes       int64   `json:"nodes"`
	Playouts    int64   `json:"playouts"`
	CacheHits   int64   `json:"cache_hits"`
	CacheMisses int64   `json:"cache_misses"`
	ElapsedMs   float64 `json:"elapsed_ms"`
}

func statsToDTO(s searcher.Stats) statsDTO {
	return statsDTO{
		Nodes:       s.Nodes,
		Playouts:    s.Playouts,
		CacheHits:   s.CacheHits,
		CacheMisses: s.CacheMisses,
		ElapsedMs:   float64(s.Elapsed) / float64(time.Millisecond),
	}
}

func (d statsDTO) toStats() searcher.Stats {
	return searcher.Stats{
		Nodes:       d.Nodes,
		Playouts:    d.Playouts,
		CacheHits:   d.CacheHits,
		CacheMisses: d.CacheMisses,
		Elapsed:     time.Duration(d.ElapsedMs * float64(time.Millisecond)),
	}
}
