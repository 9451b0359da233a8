package measure

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/wesleyorama2/benchit/internal/bench/clock"
	"github.com/wesleyorama2/benchit/internal/bench/config"
	"github.com/wesleyorama2/benchit/internal/bench/registry"
)

// AutoBudget is the seconds threshold of the adaptive mode: a first call
// at least this long is a one-shot measurement, anything faster is
// repeated until this much time has accumulated.
const AutoBudget = 2.0

// Runner executes units of work repeatedly and accumulates elapsed time.
//
// Runner is not safe for concurrent use; units are measured one at a time.
type Runner struct {
	clock  clock.Clock
	logger *log.Logger
}

// NewRunner creates a runner. A nil clock selects the system clock and a
// nil logger discards output.
func NewRunner(c clock.Clock, logger *log.Logger) *Runner {
	if c == nil {
		c = clock.System{}
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Runner{clock: c, logger: logger}
}

// Measure times unit under the iteration count n.
//
//   - n == nil: one call; if it took less than AutoBudget seconds, continue
//     in budget mode until AutoBudget seconds have accumulated.
//   - *n >= 0: exactly *n calls.
//   - *n < 0: calls until at least |*n| seconds have accumulated, with at
//     least one call before the first check.
//
// An error from the unit of work is returned unmodified and the partial
// measurement is discarded.
func (r *Runner) Measure(unit config.Sub, n *int) (Measurement, error) {
	m := Measurement{Name: unit.Name}
	start := r.clock.Now()

	switch {
	case n == nil:
		if err := unit.Work(); err != nil {
			return Measurement{}, err
		}
		m.Calls = 1
		m.Elapsed = clock.Elapsed(start, r.clock.Now())
		if m.Elapsed >= AutoBudget {
			r.logger.Debug("one-shot measurement", "unit", unit.Name, "elapsed", m.Elapsed)
			return m, nil
		}
		r.logger.Debug("switching to time budget", "unit", unit.Name, "first", m.Elapsed, "budget", AutoBudget)
		for m.Elapsed < AutoBudget {
			if err := unit.Work(); err != nil {
				return Measurement{}, err
			}
			m.Calls++
			m.Elapsed = clock.Elapsed(start, r.clock.Now())
		}

	case *n >= 0:
		for i := 0; i < *n; i++ {
			if err := unit.Work(); err != nil {
				return Measurement{}, err
			}
		}
		m.Calls = uint64(*n)
		m.Elapsed = clock.Elapsed(start, r.clock.Now())

	default:
		budget := float64(-*n)
		for {
			if err := unit.Work(); err != nil {
				return Measurement{}, err
			}
			m.Calls++
			m.Elapsed = clock.Elapsed(start, r.clock.Now())
			if m.Elapsed >= budget {
				break
			}
		}
	}

	r.logger.Debug("measured", "unit", unit.Name, "calls", m.Calls, "elapsed", m.Elapsed)
	return m, nil
}

// MeasureAll measures every unit of reg in order. On the first error it
// stops and returns the measurements completed so far with that error.
func (r *Runner) MeasureAll(reg *registry.Registry, n *int) ([]Measurement, error) {
	out := make([]Measurement, 0, reg.Len())
	for _, unit := range reg.Units() {
		m, err := r.Measure(unit, n)
		if err != nil {
			return out, err
		}
		out = append(out, m)
	}
	return out, nil
}
