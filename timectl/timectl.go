// Package timectl gives every search a uniform deadline that can only be
// tightened, never extended, so a nested or remote search cannot outlive
// the budget that encloses it.
package timectl

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// ErrInvalidOperation reports an operation the control's state forbids,
// such as serializing a relative control after it has been constrained.
var ErrInvalidOperation = errors.New("invalid operation")

// Wire keys for serialized controls.
const (
	KeyTime    = "time"    // absolute deadline, epoch milliseconds
	KeyReltime = "reltime" // budget counted from receipt, milliseconds
)

// Param is the serialized form of a control, safe to hand to a remote peer.
type Param struct {
	Key   string
	Value string
}

// Control is a deadline usable both locally and across a network boundary.
type Control interface {
	// Constrain tightens the deadline to at most limit from the control's
	// reference instant. A nil limit leaves the deadline unchanged but
	// still counts as a tightening touch.
	Constrain(limit *time.Duration)
	// IsExceeded reports whether the current instant is at or past the deadline.
	IsExceeded() bool
	// IsExceededAt reports whether instant is at or past the deadline.
	IsExceededAt(instant time.Time) bool
	Deadline() time.Time
	// Param serializes the control for a remote peer.
	Param() (Param, error)
}

// Absolute is a Control anchored to a wall-clock instant. Constraining
// tightens against "now", so the deadline stays meaningful no matter when
// a remote peer receives it.
type Absolute struct {
	end time.Time
}

// NewAbsolute returns a control expiring budget from now.
func NewAbsolute(budget time.Duration) *Absolute {
	return &Absolute{end: time.Now().Add(budget)}
}

// AbsoluteUntil returns a control expiring at deadline, as when rebuilding
// a control received over the wire.
func AbsoluteUntil(deadline time.Time) *Absolute {
	return &Absolute{end: deadline}
}

func (a *Absolute) Constrain(limit *time.Duration) {
	if limit == nil {
		return
	}
	if end := time.Now().Add(*limit); end.Before(a.end) {
		a.end = end
	}
}

func (a *Absolute) IsExceeded() bool { return a.IsExceededAt(time.Now()) }

func (a *Absolute) IsExceededAt(instant time.Time) bool { return !instant.Before(a.end) }

func (a *Absolute) Deadline() time.Time { return a.end }

func (a *Absolute) Param() (Param, error) {
	return Param{Key: KeyTime, Value: strconv.FormatInt(a.end.UnixMilli(), 10)}, nil
}

// Relative is a Control anchored to its own creation instant: a budget
// spent from then. Once constrained it can no longer be serialized - a
// peer restarting the budget on receipt would be granted time the sender
// already spent.
type Relative struct {
	start       time.Time
	budget      time.Duration
	constrained bool
}

func NewRelative(budget time.Duration) *Relative {
	return &Relative{start: time.Now(), budget: budget}
}

func (r *Relative) Constrain(limit *time.Duration) {
	r.constrained = true
	if limit != nil && *limit < r.budget {
		r.budget = *limit
	}
}

func (r *Relative) IsExceeded() bool { return r.IsExceededAt(time.Now()) }

func (r *Relative) IsExceededAt(instant time.Time) bool {
	return !instant.Before(r.Deadline())
}

func (r *Relative) Deadline() time.Time { return r.start.Add(r.budget) }

func (r *Relative) Param() (Param, error) {
	if r.constrained {
		return Param{}, fmt.Errorf("serialize constrained relative control: %w", ErrInvalidOperation)
	}
	return Param{Key: KeyReltime, Value: strconv.FormatInt(r.budget.Milliseconds(), 10)}, nil
}

// FromParam rebuilds a control from its wire form. Relative budgets restart
// from the instant of receipt.
func FromParam(p Param) (Control, error) {
	millis, err := strconv.ParseInt(p.Value, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse control value %q: %w", p.Value, err)
	}
	switch p.Key {
	case KeyTime:
		return AbsoluteUntil(time.UnixMilli(millis)), nil
	case KeyReltime:
		return NewRelative(time.Duration(millis) * time.Millisecond), nil
	default:
		return nil, fmt.Errorf("unknown control key %q: %w", p.Key, ErrInvalidOperation)
	}
}
