// Package registry normalizes the benchmarking call forms into an ordered
// set of named units of work.
package registry

import (
	"fmt"
	"sort"

	"github.com/wesleyorama2/benchit/internal/bench/config"
)

// AnonymousName is the internal key of the single unit of work in the
// callable call form. It never appears in a report.
const AnonymousName = "_"

// Registry is an ordered, name-unique set of units of work.
type Registry struct {
	units []config.Sub
}

// Build resolves a callable or a list of named units into a Registry.
//
// A non-nil fn wins and yields a single anonymous entry. Otherwise subs must
// be non-empty with unique, non-empty names and non-nil work.
func Build(fn config.Work, subs []config.Sub) (*Registry, error) {
	if fn != nil {
		return &Registry{units: []config.Sub{{Name: AnonymousName, Work: fn}}}, nil
	}

	if subs == nil {
		return nil, config.NewError("subs", "either a unit of work or named subs are required")
	}
	if len(subs) == 0 {
		return nil, config.NewError("subs", "at least one named unit of work is required")
	}

	r := &Registry{units: make([]config.Sub, 0, len(subs))}
	seen := make(map[string]bool, len(subs))
	for i, sub := range subs {
		if sub.Name == "" {
			return nil, config.NewError(fmt.Sprintf("subs[%d].name", i), "name is required")
		}
		if sub.Work == nil {
			return nil, config.NewError("subs."+sub.Name, "unit of work is nil")
		}
		if seen[sub.Name] {
			return nil, config.NewError("subs."+sub.Name, "duplicate name")
		}
		seen[sub.Name] = true
		r.units = append(r.units, sub)
	}
	return r, nil
}

// FromMap converts an unordered mapping into subs sorted by name, so
// reports built from it are deterministic.
func FromMap(m map[string]config.Work) []config.Sub {
	if m == nil {
		return nil
	}

	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	subs := make([]config.Sub, 0, len(names))
	for _, name := range names {
		subs = append(subs, config.Sub{Name: name, Work: m[name]})
	}
	return subs
}

// Units returns the units of work in measurement order.
func (r *Registry) Units() []config.Sub {
	out := make([]config.Sub, len(r.units))
	copy(out, r.units)
	return out
}

// Len returns the number of units.
func (r *Registry) Len() int {
	return len(r.units)
}
