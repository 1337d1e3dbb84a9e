package game

import "reflect"

// Comparable is an optional State capability for exact position equality.
type Comparable interface {
	Equals(other State) bool
}

// Equal reports whether two positions are the same, preferring the game's
// own equality check over structural comparison.
func Equal(a, b State) bool {
	if a == nil || b == nil {
		return a == b
	}
	if c, ok := a.(Comparable); ok {
		return c.Equals(b)
	}
	return reflect.DeepEqual(a, b)
}
