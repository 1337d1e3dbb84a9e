package searcher

import (
	"fmt"
	"strings"
)

// ProbeWindow selects how a chance layer schedules its outcome expansion.
// Outcomes are visited in an order derived from the distribution's
// canonical ordering; all strategies but ProbeNone cut the expansion short
// once the partial expectation plus the value range of the unexpanded mass
// bounds the node's value outside the search window. Cutoffs use exact
// bounds, so the move chosen at the root matches a full-width search.
type ProbeWindow int

const (
	// ProbeNone expands every outcome in canonical order, no cutoffs.
	ProbeNone ProbeWindow = iota
	// ProbeOverlapping expands in canonical order, checking bounds at
	// half-overlapping windows of outcomes.
	ProbeOverlapping
	// ProbeCenterToEnd expands from the middle of the ordering outward,
	// checking bounds before each outcome.
	ProbeCenterToEnd
	// ProbeEdgeToEnd expands in canonical order, checking bounds before
	// each outcome.
	ProbeEdgeToEnd
)

func (p ProbeWindow) String() string {
	switch p {
	case ProbeNone:
		return "none"
	case ProbeOverlapping:
		return "overlapping"
	case ProbeCenterToEnd:
		return "centerToEnd"
	case ProbeEdgeToEnd:
		return "edgeToEnd"
	default:
		return fmt.Sprintf("ProbeWindow(%d)", int(p))
	}
}

// ParseProbeWindow maps a configuration name to its strategy.
func ParseProbeWindow(name string) (ProbeWindow, error) {
	windows := []ProbeWindow{ProbeNone, ProbeOverlapping, ProbeCenterToEnd, ProbeEdgeToEnd}
	for _, p := range windows {
		if strings.EqualFold(name, p.String()) {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown probe window %q", name)
}

// schedule returns the order in which n outcomes are visited.
func (p ProbeWindow) schedule(n int) []int {
	order := make([]int, n)
	if p == ProbeCenterToEnd {
		// Middle outcome first, then alternating outward
		mid := n / 2
		order[0] = mid
		i := 1
		for offset := 1; i < n; offset++ {
			if mid-offset >= 0 {
				order[i] = mid - offset
				i++
			}
			if i < n && mid+offset < n {
				order[i] = mid + offset
				i++
			}
		}
		return order
	}
	for i := range order {
		order[i] = i
	}
	return order
}

// checkpoint reports whether bounds are checked before the ith visit of n.
func (p ProbeWindow) checkpoint(i, n int) bool {
	if i == 0 {
		return false
	}
	switch p {
	case ProbeNone:
		return false
	case ProbeOverlapping:
		window := n / 4
		if window < 2 {
			window = 2
		}
		step := window / 2
		return i%step == 0
	default:
		return true
	}
}
