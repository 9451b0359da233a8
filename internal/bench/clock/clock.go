// Package clock provides the time source used by the measurement engine.
package clock

import (
	"sync"
	"time"
)

// Clock produces time points for elapsed-time readings.
type Clock interface {
	Now() time.Time
}

// Elapsed returns the seconds between start and end.
//
// Time values produced by time.Now carry a monotonic reading, so the
// difference is unaffected by wall-clock adjustments between the two calls.
func Elapsed(start, end time.Time) float64 {
	return end.Sub(start).Seconds()
}

// System is the real clock.
type System struct{}

// Now returns the current time.
func (System) Now() time.Time {
	return time.Now()
}

// Fake is a manually advanced clock for deterministic tests.
type Fake struct {
	mu  sync.Mutex
	now time.Time
}

// NewFake creates a fake clock starting at the given time.
func NewFake(start time.Time) *Fake {
	return &Fake{now: start}
}

// Now returns the fake's current time.
func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Advance moves the fake clock forward by d.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}
