// Package gotest is an external backend that delegates each unit of work to
// the Go toolchain's own benchmark driver, testing.Benchmark, and reports
// results in the `go test -bench` line format.
package gotest

import (
	"fmt"
	"strings"
	"testing"

	"github.com/wesleyorama2/benchit/internal/bench/backend"
	"github.com/wesleyorama2/benchit/internal/bench/config"
	"github.com/wesleyorama2/benchit/internal/bench/registry"
)

// Name is the registry name of this backend.
const Name = "gotest"

func init() {
	backend.RegisterFactory(Name, New)
}

type unit struct {
	name string
	work config.Work
}

type result struct {
	name string
	res  testing.BenchmarkResult
}

// Backend implements backend.Backend over testing.Benchmark.
type Backend struct {
	benchmem bool
	units    []unit
	seen     map[string]bool
	results  []result

	// run is testing.Benchmark, replaceable in tests.
	run func(func(b *testing.B)) testing.BenchmarkResult
}

// New builds the backend. The "benchmem" option adds allocation columns.
func New(opts map[string]any) (backend.Backend, error) {
	benchmem, err := backend.BoolOption(opts, "benchmem", false)
	if err != nil {
		return nil, err
	}
	return &Backend{
		benchmem: benchmem,
		seen:     make(map[string]bool),
		run:      testing.Benchmark,
	}, nil
}

// Register adds a unit of work.
func (g *Backend) Register(name string, work config.Work) error {
	if g.seen[name] {
		return fmt.Errorf("gotest: duplicate unit %q", name)
	}
	g.seen[name] = true
	g.units = append(g.units, unit{name: name, work: work})
	return nil
}

// Run benchmarks each unit. The first error returned by a unit fails its
// benchmark and is returned; later units are not run.
func (g *Backend) Run() error {
	g.results = g.results[:0]

	for _, u := range g.units {
		var workErr error
		res := g.run(func(b *testing.B) {
			if g.benchmem {
				b.ReportAllocs()
			}
			for i := 0; i < b.N; i++ {
				if err := u.work(); err != nil {
					workErr = err
					b.FailNow()
				}
			}
		})
		if workErr != nil {
			return workErr
		}
		g.results = append(g.results, result{name: u.name, res: res})
	}
	return nil
}

// Report renders one `go test -bench` style line per unit.
func (g *Backend) Report() string {
	var sb strings.Builder
	for _, r := range g.results {
		sb.WriteString(formatLine(r.name, r.res, g.benchmem))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// anonymousLabel names the anonymous unit in report lines.
const anonymousLabel = "Benchmark"

func formatLine(name string, r testing.BenchmarkResult, benchmem bool) string {
	if name == registry.AnonymousName {
		name = anonymousLabel
	}
	line := fmt.Sprintf("%s\t%d\t%d ns/op", name, r.N, r.NsPerOp())
	if benchmem {
		line += fmt.Sprintf("\t%d B/op\t%d allocs/op", r.AllocedBytesPerOp(), r.AllocsPerOp())
	}
	return line
}
