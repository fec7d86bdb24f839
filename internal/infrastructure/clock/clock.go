package clock

import "time"

// System is the wall clock.
type System struct{}

// NewSystem creates a wall clock.
func NewSystem() *System {
	return &System{}
}

// Now returns the current time.
func (*System) Now() time.Time {
	return time.Now()
}

// Fixed is a clock pinned to one instant, for deterministic window
// boundaries in tests.
type Fixed struct {
	at time.Time
}

// NewFixed creates a clock pinned to at.
func NewFixed(at time.Time) *Fixed {
	return &Fixed{at: at}
}

// Now returns the pinned instant.
func (f *Fixed) Now() time.Time {
	return f.at
}

// Set moves the pinned instant.
func (f *Fixed) Set(at time.Time) {
	f.at = at
}
