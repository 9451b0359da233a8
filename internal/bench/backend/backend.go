// Package backend decides between the internal timing loop and an external
// benchmarking backend, and defines the narrow capability interface the
// external backend is driven through.
package backend

import (
	"fmt"
	"sort"
	"sync"

	"github.com/wesleyorama2/benchit/internal/bench/config"
)

// Backend is an external benchmarking engine treated as a black box.
type Backend interface {
	// Register adds a named unit of work.
	Register(name string, work config.Work) error

	// Run measures every registered unit in registration order. A unit's
	// error aborts the run and is returned.
	Run() error

	// Report returns the backend's own rendering of the results.
	Report() string
}

// Factory constructs a backend from opaque options.
type Factory func(opts map[string]any) (Backend, error)

// Decision is the dispatch path chosen for an invocation.
type Decision int

const (
	// Internal dispatches to the adaptive loop.
	Internal Decision = iota
	// External dispatches to the external backend.
	External
)

func (d Decision) String() string {
	if d == External {
		return "external"
	}
	return "internal"
}

// Select applies the backend decision table once per invocation.
//
//	External + available   -> External
//	External + unavailable -> ConfigurationError
//	Internal               -> Internal
//	Auto + available       -> External
//	Auto + unavailable     -> Internal
func Select(mode config.BackendMode, available bool) (Decision, error) {
	switch mode {
	case config.BackendExternal:
		if !available {
			return Internal, config.NewError("backend", "external backend forced but none is available")
		}
		return External, nil
	case config.BackendInternal:
		return Internal, nil
	default:
		if available {
			return External, nil
		}
		return Internal, nil
	}
}

var (
	factoriesMu sync.RWMutex
	factories   = make(map[string]Factory)
)

// RegisterFactory makes a named backend known to Lookup. Adapter packages
// call it from init.
func RegisterFactory(name string, f Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()

	if f == nil {
		panic("backend: RegisterFactory with nil factory for " + name)
	}
	if _, dup := factories[name]; dup {
		panic("backend: RegisterFactory called twice for " + name)
	}
	factories[name] = f
}

// Lookup returns the factory registered under name.
func Lookup(name string) (Factory, error) {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()

	f, ok := factories[name]
	if !ok {
		return nil, config.NewError("withBackend", fmt.Sprintf("unknown backend %q (known: %v)", name, namesLocked()))
	}
	return f, nil
}

// Names returns the registered backend names, sorted.
func Names() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	return namesLocked()
}

func namesLocked() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
