// Package metrics records per-call latencies of units of work in HDR
// histograms.
package metrics

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Engine collects per-unit latency distributions.
//
// # Thread Safety
//
// Engine is safe for concurrent use. The call counter is atomic and the
// histograms are mutex protected, since HDR histogram RecordValue is not
// thread-safe.
type Engine struct {
	mu    sync.Mutex
	hists map[string]*hdrhistogram.Histogram
	order []string

	totalCalls atomic.Int64
	clamped    atomic.Int64

	config EngineConfig
}

// EngineConfig contains configuration for the metrics engine.
type EngineConfig struct {
	// HistogramMin is the minimum recordable value in nanoseconds (default: 1)
	HistogramMin int64

	// HistogramMax is the maximum recordable value in nanoseconds (default: 1 hour)
	HistogramMax int64

	// HistogramSigFigs is the number of significant figures (default: 3)
	HistogramSigFigs int
}

// DefaultEngineConfig returns the default configuration.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		HistogramMin:     1,
		HistogramMax:     int64(time.Hour),
		HistogramSigFigs: 3,
	}
}

// NewEngine creates a new metrics engine with default configuration.
func NewEngine() *Engine {
	return NewEngineWithConfig(DefaultEngineConfig())
}

// NewEngineWithConfig creates a new metrics engine with custom configuration.
func NewEngineWithConfig(config EngineConfig) *Engine {
	return &Engine{
		hists:  make(map[string]*hdrhistogram.Histogram),
		config: config,
	}
}

// RecordLatency records one call of the named unit. Values outside the
// histogram range are clamped and counted by Clamped.
func (e *Engine) RecordLatency(name string, d time.Duration) {
	v := d.Nanoseconds()
	if v < e.config.HistogramMin {
		v = e.config.HistogramMin
		e.clamped.Add(1)
	}
	if v > e.config.HistogramMax {
		v = e.config.HistogramMax
		e.clamped.Add(1)
	}

	e.mu.Lock()
	hist, ok := e.hists[name]
	if !ok {
		hist = hdrhistogram.New(e.config.HistogramMin, e.config.HistogramMax, e.config.HistogramSigFigs)
		e.hists[name] = hist
		e.order = append(e.order, name)
	}
	_ = hist.RecordValue(v)
	e.mu.Unlock()

	e.totalCalls.Add(1)
}

// Stats returns the latency statistics of the named unit.
func (e *Engine) Stats(name string) (LatencyStats, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	hist, ok := e.hists[name]
	if !ok {
		return LatencyStats{}, false
	}
	return statsOf(hist), true
}

// Names returns unit names in the order they were first recorded.
func (e *Engine) Names() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]string, len(e.order))
	copy(out, e.order)
	return out
}

// TotalCalls returns the number of recorded calls across all units.
func (e *Engine) TotalCalls() int64 {
	return e.totalCalls.Load()
}

// Clamped returns the number of values clamped into the histogram range.
func (e *Engine) Clamped() int64 {
	return e.clamped.Load()
}

// Remove discards the named unit's values. Its calls no longer count
// toward TotalCalls.
func (e *Engine) Remove(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	hist, ok := e.hists[name]
	if !ok {
		return
	}
	e.totalCalls.Add(-hist.TotalCount())
	delete(e.hists, name)
	for i, n := range e.order {
		if n == name {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
}

// Reset discards all recorded values.
func (e *Engine) Reset() {
	e.mu.Lock()
	e.hists = make(map[string]*hdrhistogram.Histogram)
	e.order = nil
	e.mu.Unlock()

	e.totalCalls.Store(0)
	e.clamped.Store(0)
}

func statsOf(hist *hdrhistogram.Histogram) LatencyStats {
	return LatencyStats{
		Min:    time.Duration(hist.Min()),
		Max:    time.Duration(hist.Max()),
		Mean:   time.Duration(hist.Mean()),
		StdDev: time.Duration(hist.StdDev()),
		P50:    time.Duration(hist.ValueAtQuantile(50)),
		P90:    time.Duration(hist.ValueAtQuantile(90)),
		P95:    time.Duration(hist.ValueAtQuantile(95)),
		P99:    time.Duration(hist.ValueAtQuantile(99)),
		Count:  hist.TotalCount(),
	}
}

// LatencyStats contains latency statistics.
type LatencyStats struct {
	Min    time.Duration `json:"min"`
	Max    time.Duration `json:"max"`
	Mean   time.Duration `json:"mean"`
	StdDev time.Duration `json:"stdDev"`
	P50    time.Duration `json:"p50"`
	P90    time.Duration `json:"p90"`
	P95    time.Duration `json:"p95"`
	P99    time.Duration `json:"p99"`
	Count  int64         `json:"count"`
}
