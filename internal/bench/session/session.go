// Package session tracks process-wide benchmarking state: the process start
// time and whether any benchmarking happened. When nothing was benchmarked,
// closing the session reports the whole-program elapsed time.
package session

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wesleyorama2/benchit/internal/bench/clock"
)

// Session owns the start time and the "invoked" flag.
type Session struct {
	clock   clock.Clock
	out     io.Writer
	start   time.Time
	invoked atomic.Bool
	once    sync.Once
}

var defaultSession = New(clock.System{}, os.Stdout)

// Default returns the session created when the process loaded this package.
func Default() *Session {
	return defaultSession
}

// New starts a session now. A nil clock selects the system clock and a nil
// writer discards the stopwatch line.
func New(c clock.Clock, out io.Writer) *Session {
	if c == nil {
		c = clock.System{}
	}
	if out == nil {
		out = io.Discard
	}
	return &Session{clock: c, out: out, start: c.Now()}
}

// MarkInvoked records that benchmarking happened, which suppresses the
// stopwatch line at Close.
func (s *Session) MarkInvoked() {
	s.invoked.Store(true)
}

// Invoked reports whether benchmarking happened.
func (s *Session) Invoked() bool {
	return s.invoked.Load()
}

// Elapsed returns the seconds since the session started.
func (s *Session) Elapsed() float64 {
	return clock.Elapsed(s.start, s.clock.Now())
}

// Close ends the session. If nothing was benchmarked it writes the total
// elapsed time as "%.4fs". Only the first call has any effect.
func (s *Session) Close() error {
	var err error
	s.once.Do(func() {
		if s.Invoked() {
			return
		}
		_, err = fmt.Fprintf(s.out, "%.4fs\n", s.Elapsed())
	})
	return err
}
