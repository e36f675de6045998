package models

// Limit is a per-plan quota: either a finite count or unbounded. Modeled as a
// tagged value instead of a numeric infinity sentinel so comparisons at the
// boundary cannot go wrong.
type Limit struct {
	n         int
	unbounded bool
}

func Finite(n int) Limit {
	return Limit{n: n}
}

func Unbounded() Limit {
	return Limit{unbounded: true}
}

func (l Limit) IsUnbounded() bool {
	return l.unbounded
}

// Allows reports whether one more action is permitted after used prior ones.
// Reaching exactly the limit blocks the next action.
func (l Limit) Allows(used int) bool {
	return l.unbounded || used < l.n
}

// Remaining returns how many actions are left, clamped at zero. Unbounded
// limits report -1.
func (l Limit) Remaining(used int) int {
	if l.unbounded {
		return -1
	}
	if used >= l.n {
		return 0
	}
	return l.n - used
}

// Value returns the finite limit for display, or -1 when unbounded.
func (l Limit) Value() int {
	if l.unbounded {
		return -1
	}
	return l.n
}
