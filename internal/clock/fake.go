package clock

import (
	"sync"
	"time"
)

// Fake is a deterministic Clock for testing. Time stands still until Advance
// is called. Safe for concurrent use.
type Fake struct {
	mu      sync.Mutex
	current time.Time
}

// NewFake returns a Fake initialized to the given time.
func NewFake(initial time.Time) *Fake {
	return &Fake{current: initial}
}

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

// Advance moves the clock forward by d.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	f.current = f.current.Add(d)
	f.mu.Unlock()
}
