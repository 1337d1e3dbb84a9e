package pig

import (
	"encoding/json"
	"fmt"

	"gambit/game"
)

// Codec translates Pig positions to and from their JSON wire form, for
// engines served over the network.
type Codec struct{}

type wirePosition struct {
	Banked    [2]int `json:"banked"`
	TurnTotal int    `json:"turnTotal"`
	ToMove    string `json:"toMove"`
	Target    int    `json:"target"`
}

func (Codec) EncodeState(state game.State) ([]byte, error) {
	p, ok := state.(Position)
	if !ok {
		return nil, fmt.Errorf("encode state: not a pig position")
	}
	return json.Marshal(wirePosition{
		Banked:    p.Banked,
		TurnTotal: p.TurnTotal,
		ToMove:    p.ToMove.String(),
		Target:    p.Target,
	})
}

func (Codec) DecodeState(data []byte) (game.State, error) {
	var wire wirePosition
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}

	var seat game.Seat
	switch wire.ToMove {
	case game.Max.String():
		seat = game.Max
	case game.Min.String():
		seat = game.Min
	default:
		return nil, fmt.Errorf("decode state: unknown seat %q", wire.ToMove)
	}
	if wire.Target < 1 {
		return nil, fmt.Errorf("decode state: target %d out of range", wire.Target)
	}
	if wire.Banked[0] < 0 || wire.Banked[1] < 0 || wire.TurnTotal < 0 {
		return nil, fmt.Errorf("decode state: negative totals")
	}

	return Position{
		Banked:    wire.Banked,
		TurnTotal: wire.TurnTotal,
		ToMove:    seat,
		Target:    wire.Target,
	}, nil
}
