// Package bench is a low-ceremony micro-benchmarking harness.
//
// It times one or more units of work and reports throughput and per-call
// latency, either with its own adaptive timing loop or by delegating to an
// external benchmarking backend.
//
// # Quick Start
//
// Time a function adaptively (one call if it takes two seconds or more,
// otherwise as many calls as fit in two seconds):
//
//	bench.RunAndPrint(bench.Func(func() error {
//	    _ = strings.Repeat("x", 1024)
//	    return nil
//	}))
//
// Fixed iteration count:
//
//	report, err := bench.Run(bench.FuncN(work, 1000))
//	fmt.Println(report) // 1000 calls (52341/s), 0.0191s (0.0000s/call)
//
// A negative count is a time budget in seconds:
//
//	bench.Run(bench.FuncN(work, -5)) // run for at least five seconds
//
// # Multiple Units
//
// Named units are measured and reported in the order given:
//
//	report, err := bench.Run(bench.Subs(bench.Config{
//	    N: bench.Iterations(3),
//	    Subs: []bench.Sub{
//	        {Name: "a", Work: workA},
//	        {Name: "b", Work: workB},
//	    },
//	}))
//	// a: 3 calls (...)
//	// b: 3 calls (...)
//
// # External Backends
//
// A backend made available with WithBackend is used automatically unless
// Config.Backend is BackendInternal. Forcing BackendExternal without one is
// a ConfigurationError:
//
//	h := bench.New(bench.WithBackend("hdr", bench.MustLookupBackend("hdr")))
//	report, _ := h.Run(bench.FuncWith(work, bench.Config{
//	    BackendOptions: map[string]any{"samples": 5000},
//	}))
//
// # Whole-Program Stopwatch
//
// If a program never benchmarks anything, Finish prints its total running
// time as "%.4fs":
//
//	func main() {
//	    defer bench.Finish()
//	    ...
//	}
//
// A harness can be bound to its own session instead of the process one:
//
//	s := bench.NewSession(os.Stderr)
//	h := bench.New(bench.WithSession(s))
//	defer s.Close()
package bench
