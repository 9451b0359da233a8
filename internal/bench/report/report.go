// Package report renders measurements as human-readable summary lines.
package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/wesleyorama2/benchit/internal/bench/measure"
)

// BackendInternal is the Report.Backend value for the internal loop.
const BackendInternal = "internal"

// Report is the rendered result of one benchmarking invocation.
type Report struct {
	// Backend is "internal" or the name of the external backend.
	Backend string

	// Prefixed is true when lines carry a "<name>: " prefix.
	Prefixed bool

	// Lines are the rendered lines, in measurement order.
	Lines []string

	// Measurements are the raw internal-loop results. Empty for the
	// external path.
	Measurements []measure.Measurement
}

// Line renders one measurement:
//
//	[<name>: ]<calls> calls (<rate>/s), <elapsed>s (<perCall>s/call)
func Line(m measure.Measurement, prefixed bool) string {
	prefix := ""
	if prefixed {
		prefix = m.Name + ": "
	}
	return fmt.Sprintf("%s%d calls (%.0f/s), %.4fs (%.4fs/call)",
		prefix, m.Calls, m.Rate(), m.Elapsed, m.PerCall())
}

// Build renders measurements from the internal loop.
func Build(ms []measure.Measurement, prefixed bool) *Report {
	r := &Report{
		Backend:      BackendInternal,
		Prefixed:     prefixed,
		Lines:        make([]string, 0, len(ms)),
		Measurements: ms,
	}
	for _, m := range ms {
		r.Lines = append(r.Lines, Line(m, prefixed))
	}
	return r
}

// External wraps text already rendered by an external backend.
func External(backend, text string) *Report {
	text = strings.TrimRight(text, "\n")
	r := &Report{Backend: backend}
	if text != "" {
		r.Lines = strings.Split(text, "\n")
	}
	return r
}

// String joins the lines with newlines.
func (r *Report) String() string {
	return strings.Join(r.Lines, "\n")
}

type jsonMeasurement struct {
	Name    string  `json:"name,omitempty"`
	Calls   uint64  `json:"calls"`
	Elapsed float64 `json:"elapsed"`
	Rate    float64 `json:"rate"`
	PerCall float64 `json:"perCall"`
}

type jsonReport struct {
	Backend      string            `json:"backend"`
	Lines        []string          `json:"lines"`
	Measurements []jsonMeasurement `json:"measurements,omitempty"`
}

// MarshalJSON includes the derived rate and per-call values. The internal
// anonymous name is omitted from unprefixed reports.
func (r *Report) MarshalJSON() ([]byte, error) {
	out := jsonReport{
		Backend: r.Backend,
		Lines:   r.Lines,
	}
	if out.Lines == nil {
		out.Lines = []string{}
	}
	for _, m := range r.Measurements {
		jm := jsonMeasurement{
			Calls:   m.Calls,
			Elapsed: m.Elapsed,
			Rate:    m.Rate(),
			PerCall: m.PerCall(),
		}
		if r.Prefixed {
			jm.Name = m.Name
		}
		out.Measurements = append(out.Measurements, jm)
	}
	return json.Marshal(out)
}
