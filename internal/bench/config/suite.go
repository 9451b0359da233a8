package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/wesleyorama2/benchit/pkg/jsonschema"
)

//go:embed suite.schema.json
var suiteSchema string

var (
	compiledSuiteSchema *jsonschema.Schema
	compileSuiteOnce    sync.Once
	compileSuiteErr     error
)

// Suite is a file-defined benchmarking invocation of shell snippets.
//
// Example YAML:
//
//	name: string-ops
//	n: 1000
//	backend: auto
//	subs:
//	  concat: 'x="a$x"'
//	  printf: 'printf -v y %s "$x"'
type Suite struct {
	// Name of the suite (for reporting)
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Description of the suite (optional)
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// N is the iteration count, see RunConfig.N
	N *int `json:"n,omitempty" yaml:"n,omitempty"`

	// Backend is auto, true or false
	Backend BackendMode `json:"backend,omitempty" yaml:"backend,omitempty"`

	// BackendOptions are forwarded verbatim to the external backend
	BackendOptions map[string]any `json:"backendOptions,omitempty" yaml:"backendOptions,omitempty"`

	// WithBackend names the external backend to make available
	WithBackend string `json:"withBackend,omitempty" yaml:"withBackend,omitempty"`

	// Subs are the snippets to measure, in file order
	Subs SnippetList `json:"subs" yaml:"subs"`
}

// Snippet is a named shell snippet.
type Snippet struct {
	Name string `json:"name" yaml:"name"`
	Run  string `json:"run" yaml:"run"`
}

// SnippetList decodes either an ordered mapping of name to snippet or a
// sequence of {name, run} records. Mapping order is preserved.
type SnippetList []Snippet

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *SnippetList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.MappingNode:
		out := make(SnippetList, 0, len(value.Content)/2)
		for i := 0; i+1 < len(value.Content); i += 2 {
			var run string
			if err := value.Content[i+1].Decode(&run); err != nil {
				return fmt.Errorf("subs.%s: %w", value.Content[i].Value, err)
			}
			out = append(out, Snippet{Name: value.Content[i].Value, Run: run})
		}
		*l = out
	case yaml.SequenceNode:
		var out []Snippet
		if err := value.Decode(&out); err != nil {
			return err
		}
		*l = out
	default:
		return fmt.Errorf("line %d: subs must be a mapping or a list", value.Line)
	}
	return nil
}

// LoadSuite loads and validates a suite file. JSON files are accepted as
// YAML.
func LoadSuite(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read suite file: %w", err)
	}
	return ParseSuite(data)
}

// ParseSuite validates data against the suite schema and decodes it.
// Schema violations are reported as a ConfigurationError.
func ParseSuite(data []byte) (*Suite, error) {
	var raw interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse suite: %w", err)
	}

	doc, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to convert suite to JSON: %w", err)
	}

	schema, err := suiteSchemaValidator()
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(doc); err != nil {
		return nil, NewError("suite", err.Error())
	}

	var suite Suite
	if err := yaml.Unmarshal(data, &suite); err != nil {
		return nil, fmt.Errorf("failed to decode suite: %w", err)
	}
	return &suite, nil
}

func suiteSchemaValidator() (*jsonschema.Schema, error) {
	compileSuiteOnce.Do(func() {
		compiledSuiteSchema, compileSuiteErr = jsonschema.Compile("suite.schema.json", suiteSchema)
	})
	return compiledSuiteSchema, compileSuiteErr
}
