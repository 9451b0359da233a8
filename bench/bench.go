package bench

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/wesleyorama2/benchit/internal/bench/backend"
	"github.com/wesleyorama2/benchit/internal/bench/backend/gotest"
	"github.com/wesleyorama2/benchit/internal/bench/backend/hdr"
	"github.com/wesleyorama2/benchit/internal/bench/clock"
	"github.com/wesleyorama2/benchit/internal/bench/config"
	"github.com/wesleyorama2/benchit/internal/bench/measure"
	"github.com/wesleyorama2/benchit/internal/bench/registry"
	"github.com/wesleyorama2/benchit/internal/bench/report"
	"github.com/wesleyorama2/benchit/internal/bench/session"
)

type (
	// Work is a unit of work. Its error aborts the measurement and is
	// returned unmodified.
	Work = config.Work
	// Sub is a named unit of work.
	Sub = config.Sub
	// Config configures one invocation.
	Config = config.RunConfig
	// BackendMode selects the dispatch path.
	BackendMode = config.BackendMode
	// ConfigurationError reports an invalid invocation, before any timing.
	ConfigurationError = config.ConfigurationError
	// Report is the rendered result of an invocation.
	Report = report.Report
	// Measurement is the raw internal-loop result of one unit.
	Measurement = measure.Measurement
	// Backend is the capability interface of an external backend.
	Backend = backend.Backend
	// Factory constructs an external backend from opaque options.
	Factory = backend.Factory
	// Clock is the time source.
	Clock = clock.Clock
	// Session tracks whether benchmarking happened in the process.
	Session = session.Session
)

// Backend modes.
const (
	BackendAuto     = config.BackendAuto
	BackendInternal = config.BackendInternal
	BackendExternal = config.BackendExternal
)

// Names of the bundled external backends.
const (
	BackendGoTest = gotest.Name
	BackendHDR    = hdr.Name
)

// ErrConfiguration matches every ConfigurationError via errors.Is.
var ErrConfiguration = config.ErrConfiguration

// Iterations returns a pointer to n for Config.N.
func Iterations(n int) *int {
	return config.Iterations(n)
}

// Void adapts a function without an error result.
func Void(fn func()) Work {
	return func() error {
		fn()
		return nil
	}
}

// SubsFromMap converts an unordered mapping to subs sorted by name.
func SubsFromMap(m map[string]Work) []Sub {
	return registry.FromMap(m)
}

// LookupBackend returns a registered backend factory by name.
func LookupBackend(name string) (Factory, error) {
	return backend.Lookup(name)
}

// MustLookupBackend is LookupBackend that panics on unknown names.
func MustLookupBackend(name string) Factory {
	f, err := backend.Lookup(name)
	if err != nil {
		panic(err)
	}
	return f
}

// NewSession starts a session whose stopwatch line goes to w.
func NewSession(w io.Writer) *Session {
	return session.New(clock.System{}, w)
}

type form int

const (
	formFunc form = iota
	formSubs
)

// Target is one of the benchmarking call forms, built with Func, FuncN,
// FuncWith or Subs.
type Target struct {
	form form
	fn   Work
	cfg  Config
}

// Func times fn adaptively.
func Func(fn Work) Target {
	return Target{form: formFunc, fn: fn}
}

// FuncN times fn with the iteration count n.
func FuncN(fn Work, n int) Target {
	return Target{form: formFunc, fn: fn, cfg: Config{N: Iterations(n)}}
}

// FuncWith times fn under cfg. cfg.Subs is ignored.
func FuncWith(fn Work, cfg Config) Target {
	return Target{form: formFunc, fn: fn, cfg: cfg}
}

// Subs times the named units in cfg.Subs.
func Subs(cfg Config) Target {
	return Target{form: formSubs, cfg: cfg}
}

func (t Target) resolve() (*registry.Registry, Config, error) {
	var (
		reg *registry.Registry
		err error
	)
	switch t.form {
	case formFunc:
		if t.fn == nil {
			return nil, t.cfg, config.NewError("", "a unit of work is required")
		}
		reg, err = registry.Build(t.fn, nil)
	default:
		reg, err = registry.Build(nil, t.cfg.Subs)
	}
	return reg, t.cfg, err
}

// Harness runs benchmarking invocations.
type Harness struct {
	clock       clock.Clock
	out         io.Writer
	session     *session.Session
	backendName string
	factory     backend.Factory
	logger      *log.Logger
}

// Option configures a Harness.
type Option func(*Harness)

// WithClock sets the time source of the internal loop.
func WithClock(c Clock) Option {
	return func(h *Harness) { h.clock = c }
}

// WithOutput sets where RunAndPrint writes reports.
func WithOutput(w io.Writer) Option {
	return func(h *Harness) { h.out = w }
}

// WithSession binds the harness to a session other than the process default.
func WithSession(s *Session) Option {
	return func(h *Harness) { h.session = s }
}

// WithBackend makes an external backend available under name.
func WithBackend(name string, f Factory) Option {
	return func(h *Harness) {
		h.backendName = name
		h.factory = f
	}
}

// WithLogger sets the debug logger.
func WithLogger(l *log.Logger) Option {
	return func(h *Harness) { h.logger = l }
}

// New creates a harness. Defaults: system clock, stdout, the process
// session, no external backend.
func New(opts ...Option) *Harness {
	h := &Harness{
		clock:   clock.System{},
		out:     os.Stdout,
		session: session.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = log.New(io.Discard)
	}
	return h
}

// Run measures t and returns the report.
//
// Configuration errors are returned before any timing with a nil report.
// A unit of work's error is returned unmodified together with a report of
// the units completed before it.
func (h *Harness) Run(t Target) (*Report, error) {
	h.session.MarkInvoked()

	reg, cfg, err := t.resolve()
	if err != nil {
		return nil, err
	}

	decision, err := backend.Select(cfg.Backend, h.factory != nil)
	if err != nil {
		return nil, err
	}
	h.logger.Debug("dispatch", "decision", decision, "units", reg.Len(), "mode", cfg.Backend)

	if decision == backend.External {
		return h.runExternal(reg, cfg)
	}

	runner := measure.NewRunner(h.clock, h.logger)
	ms, err := runner.MeasureAll(reg, cfg.N)
	return report.Build(ms, reg.Len() > 1), err
}

func (h *Harness) runExternal(reg *registry.Registry, cfg Config) (*Report, error) {
	b, err := h.factory(cfg.BackendOptions)
	if err != nil {
		return nil, config.NewError("backendOptions", err.Error())
	}

	for _, unit := range reg.Units() {
		if err := b.Register(unit.Name, unit.Work); err != nil {
			return nil, fmt.Errorf("registering %q with %s backend: %w", unit.Name, h.backendName, err)
		}
	}

	runErr := b.Run()
	return report.External(h.backendName, b.Report()), runErr
}

// RunAndPrint measures t and writes the report to the harness output.
// A partial report is still written when a unit of work fails.
func (h *Harness) RunAndPrint(t Target) error {
	rep, err := h.Run(t)
	if rep != nil && len(rep.Lines) > 0 {
		if _, werr := fmt.Fprintln(h.out, rep.String()); werr != nil && err == nil {
			err = werr
		}
	}
	return err
}

var (
	defaultOnce    sync.Once
	defaultHarness *Harness
)

// Default returns the harness used by the package-level functions.
func Default() *Harness {
	defaultOnce.Do(func() {
		defaultHarness = New()
	})
	return defaultHarness
}

// Run measures t with the default harness.
func Run(t Target) (*Report, error) {
	return Default().Run(t)
}

// RunAndPrint measures t with the default harness and prints the report.
func RunAndPrint(t Target) error {
	return Default().RunAndPrint(t)
}

// Finish closes the process session: if nothing was benchmarked, it prints
// the total elapsed time.
func Finish() error {
	return session.Default().Close()
}
