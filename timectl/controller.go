package timectl

import (
	"errors"
	"time"
)

// ErrNoBudget reports a controller built without any bound to enforce.
var ErrNoBudget = errors.New("controller needs an outer control or a per-move budget")

// Controller derives one fresh control per move decision from an outer
// per-game or per-batch budget, so no single move outlives the remaining
// overall time.
type Controller struct {
	outer   Control
	perMove time.Duration
}

// NewController builds a per-move control factory. A nil outer control
// bounds moves by perMove alone; perMove <= 0 bounds them by the outer
// deadline alone. At least one must be given.
func NewController(outer Control, perMove time.Duration) (*Controller, error) {
	if outer == nil && perMove <= 0 {
		return nil, ErrNoBudget
	}
	return &Controller{outer: outer, perMove: perMove}, nil
}

// ForMove returns the control for the next move decision: the per-move
// budget from now, capped by the outer deadline.
func (c *Controller) ForMove() Control {
	var end time.Time
	if c.perMove > 0 {
		end = time.Now().Add(c.perMove)
	}
	if c.outer != nil {
		if outer := c.outer.Deadline(); end.IsZero() || outer.Before(end) {
			end = outer
		}
	}
	return AbsoluteUntil(end)
}

// Exceeded reports whether the outer budget has run out.
func (c *Controller) Exceeded() bool {
	return c.outer != nil && c.outer.IsExceeded()
}
