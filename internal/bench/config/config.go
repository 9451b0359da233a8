// Package config defines the per-invocation benchmarking configuration and
// the suite file format used by the command-line tool.
package config

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Work is a unit of work. A returned error aborts its measurement and is
// handed back to the caller unmodified.
type Work func() error

// Sub is a named unit of work.
type Sub struct {
	Name string
	Work Work
}

// RunConfig is the configuration of a single benchmarking invocation.
type RunConfig struct {
	// N is the iteration count. nil selects the adaptive mode, a
	// non-negative value is an exact call count and a negative value is a
	// time budget of |N| seconds.
	N *int

	// Subs are the named units of work for the multi-unit form, measured
	// in the order given.
	Subs []Sub

	// Backend selects between the internal loop and the external backend.
	Backend BackendMode

	// BackendOptions are forwarded verbatim to the external backend.
	BackendOptions map[string]any
}

// Iterations returns a pointer to n for use as RunConfig.N.
func Iterations(n int) *int {
	return &n
}

// BackendMode is the tri-state backend switch.
type BackendMode int

const (
	// BackendAuto uses the external backend only when one is available.
	BackendAuto BackendMode = iota
	// BackendInternal always uses the internal loop.
	BackendInternal
	// BackendExternal requires the external backend.
	BackendExternal
)

// String returns the canonical name of the mode.
func (m BackendMode) String() string {
	switch m {
	case BackendInternal:
		return "internal"
	case BackendExternal:
		return "external"
	default:
		return "auto"
	}
}

// ParseBackendMode parses the textual and boolean spellings of a mode.
func ParseBackendMode(s string) (BackendMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return BackendAuto, nil
	case "false", "off", "no", "0", "internal":
		return BackendInternal, nil
	case "true", "on", "yes", "1", "external":
		return BackendExternal, nil
	}
	return BackendAuto, NewError("backend", fmt.Sprintf("unknown backend mode: %s", s))
}

// MarshalJSON implements json.Marshaler.
func (m BackendMode) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON implements json.Unmarshaler. Booleans and strings are accepted.
func (m *BackendMode) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	var s string
	switch val := v.(type) {
	case nil:
		s = ""
	case bool:
		s = fmt.Sprint(val)
	case string:
		s = val
	default:
		return NewError("backend", fmt.Sprintf("unsupported backend value: %s", string(b)))
	}

	mode, err := ParseBackendMode(s)
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (m BackendMode) MarshalYAML() (interface{}, error) {
	return m.String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (m *BackendMode) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return NewError("backend", fmt.Sprintf("line %d: backend must be a scalar", value.Line))
	}
	mode, err := ParseBackendMode(value.Value)
	if err != nil {
		return err
	}
	*m = mode
	return nil
}
