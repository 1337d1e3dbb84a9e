package searcher

import "time"

// Stats counts the work an engine performed. Snapshots taken around a
// decision subtract to a per-decision delta; deltas add up across games.
type Stats struct {
	Nodes       int64
	Playouts    int64
	CacheHits   int64
	CacheMisses int64
	Elapsed     time.Duration
}

func (s Stats) Add(other Stats) Stats {
	return Stats{
		Nodes:       s.Nodes + other.Nodes,
		Playouts:    s.Playouts + other.Playouts,
		CacheHits:   s.CacheHits + other.CacheHits,
		CacheMisses: s.CacheMisses + other.CacheMisses,
		Elapsed:     s.Elapsed + other.Elapsed,
	}
}

func (s Stats) Sub(other Stats) Stats {
	return Stats{
		Nodes:       s.Nodes - other.Nodes,
		Playouts:    s.Playouts - other.Playouts,
		CacheHits:   s.CacheHits - other.CacheHits,
		CacheMisses: s.CacheMisses - other.CacheMisses,
		Elapsed:     s.Elapsed - other.Elapsed,
	}
}
