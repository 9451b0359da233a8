// Package hdr is an external backend that samples each unit of work many
// times and reports its latency distribution from an HDR histogram.
package hdr

import (
	"fmt"
	"strings"
	"time"

	"github.com/wesleyorama2/benchit/internal/bench/backend"
	"github.com/wesleyorama2/benchit/internal/bench/clock"
	"github.com/wesleyorama2/benchit/internal/bench/config"
	"github.com/wesleyorama2/benchit/internal/bench/metrics"
	"github.com/wesleyorama2/benchit/internal/bench/registry"
)

// Name is the registry name of this backend.
const Name = "hdr"

const (
	defaultSamples = 1000
	defaultWarmup  = 10
)

func init() {
	backend.RegisterFactory(Name, New)
}

// Options control sampling.
type Options struct {
	// Samples is the number of measured calls per unit
	Samples int

	// Warmup is the number of unmeasured calls before sampling
	Warmup int

	// Duration caps the sampling time per unit (0 = no cap)
	Duration time.Duration
}

type unit struct {
	name string
	work config.Work
}

// Backend implements backend.Backend over a metrics.Engine.
type Backend struct {
	opts   Options
	clock  clock.Clock
	engine *metrics.Engine
	units  []unit
	seen   map[string]bool
	ran    bool
}

// New builds the backend from the options "samples", "warmup" and
// "duration".
func New(opts map[string]any) (backend.Backend, error) {
	samples, err := backend.IntOption(opts, "samples", defaultSamples)
	if err != nil {
		return nil, err
	}
	warmup, err := backend.IntOption(opts, "warmup", defaultWarmup)
	if err != nil {
		return nil, err
	}
	duration, err := backend.DurationOption(opts, "duration", 0)
	if err != nil {
		return nil, err
	}
	if samples < 1 {
		return nil, fmt.Errorf("option samples: must be at least 1, got %d", samples)
	}
	if warmup < 0 {
		return nil, fmt.Errorf("option warmup: must not be negative, got %d", warmup)
	}

	return NewWithOptions(Options{Samples: samples, Warmup: warmup, Duration: duration}, nil), nil
}

// NewWithOptions creates the backend directly. A nil clock selects the
// system clock.
func NewWithOptions(opts Options, c clock.Clock) *Backend {
	if c == nil {
		c = clock.System{}
	}
	return &Backend{
		opts:   opts,
		clock:  c,
		engine: metrics.NewEngine(),
		seen:   make(map[string]bool),
	}
}

// Register adds a unit of work.
func (b *Backend) Register(name string, work config.Work) error {
	if b.seen[name] {
		return fmt.Errorf("hdr: duplicate unit %q", name)
	}
	b.seen[name] = true
	b.units = append(b.units, unit{name: name, work: work})
	return nil
}

// Run samples every unit in registration order. A unit's error stops the
// run; units sampled before it keep their results.
func (b *Backend) Run() error {
	b.engine.Reset()
	b.ran = true

	for _, u := range b.units {
		for i := 0; i < b.opts.Warmup; i++ {
			if err := u.work(); err != nil {
				return err
			}
		}

		begin := b.clock.Now()
		for i := 0; i < b.opts.Samples; i++ {
			start := b.clock.Now()
			if err := u.work(); err != nil {
				// a failed unit reports nothing
				b.engine.Remove(u.name)
				return err
			}
			end := b.clock.Now()
			b.engine.RecordLatency(u.name, end.Sub(start))

			if b.opts.Duration > 0 && end.Sub(begin) >= b.opts.Duration {
				break
			}
		}
	}
	return nil
}

// Stats returns the recorded distribution of a unit after Run.
func (b *Backend) Stats(name string) (metrics.LatencyStats, bool) {
	return b.engine.Stats(name)
}

// Report renders one line per unit:
//
//	<name>: n=<count> mean=<d> stddev=<d> min=<d> p50=<d> p90=<d> p99=<d> max=<d>
//
// The anonymous unit's line has no name prefix.
func (b *Backend) Report() string {
	if !b.ran {
		return ""
	}

	var sb strings.Builder
	for _, name := range b.engine.Names() {
		s, _ := b.engine.Stats(name)
		if name != registry.AnonymousName {
			sb.WriteString(name + ": ")
		}
		fmt.Fprintf(&sb, "n=%d mean=%v stddev=%v min=%v p50=%v p90=%v p99=%v max=%v\n",
			s.Count, s.Mean, s.StdDev, s.Min, s.P50, s.P90, s.P99, s.Max)
	}
	return sb.String()
}
