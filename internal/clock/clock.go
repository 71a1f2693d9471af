// Package clock abstracts the system clock so components that stamp state
// with the current time can be tested deterministically.
package clock

import "time"

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// System is the real wall clock.
type System struct{}

// New returns the system clock.
func New() *System {
	return &System{}
}

func (*System) Now() time.Time {
	return time.Now()
}
