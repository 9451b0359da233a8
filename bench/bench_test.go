package bench

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wesleyorama2/benchit/internal/bench/clock"
	"github.com/wesleyorama2/benchit/internal/bench/session"
)

type fixture struct {
	clock   *clock.Fake
	session *Session
	out     *bytes.Buffer
	stop    *bytes.Buffer
}

func newFixture(opts ...Option) (*Harness, *fixture) {
	fc := clock.NewFake(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	f := &fixture{clock: fc, out: &bytes.Buffer{}, stop: &bytes.Buffer{}}
	f.session = session.New(fc, f.stop)

	all := append([]Option{WithClock(fc), WithOutput(f.out), WithSession(f.session)}, opts...)
	return New(all...), f
}

func (f *fixture) ticking(step time.Duration, calls *int) Work {
	return func() error {
		*calls++
		f.clock.Advance(step)
		return nil
	}
}

func TestRun_FixedCountSingleUnit(t *testing.T) {
	h, f := newFixture()
	calls := 0

	rep, err := h.Run(FuncN(f.ticking(100*time.Millisecond, &calls), 5))
	require.NoError(t, err)

	assert.Equal(t, 5, calls)
	require.Len(t, rep.Measurements, 1)
	assert.Equal(t, uint64(5), rep.Measurements[0].Calls)
	assert.Equal(t, "5 calls (10/s), 0.5000s (0.1000s/call)", rep.String())
	assert.True(t, f.session.Invoked())
}

func TestRun_NoopFixedCount(t *testing.T) {
	h, _ := newFixture()
	for _, n := range []int{0, 1, 7, 250} {
		rep, err := h.Run(FuncN(Void(func() {}), n))
		require.NoError(t, err)
		assert.Equal(t, uint64(n), rep.Measurements[0].Calls)
	}
}

func TestRun_MultiUnit(t *testing.T) {
	h, f := newFixture()
	var a, b int

	rep, err := h.Run(Subs(Config{
		N: Iterations(3),
		Subs: []Sub{
			{Name: "a", Work: f.ticking(10*time.Millisecond, &a)},
			{Name: "b", Work: f.ticking(20*time.Millisecond, &b)},
		},
	}))
	require.NoError(t, err)

	lines := strings.Split(rep.String(), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "a: 3 calls"), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "b: 3 calls"), lines[1])
	assert.Equal(t, 3, a)
	assert.Equal(t, 3, b)
}

func TestRun_SingleNamedUnitHasNoPrefix(t *testing.T) {
	h, f := newFixture()
	calls := 0

	rep, err := h.Run(Subs(Config{N: Iterations(2), Subs: []Sub{{Name: "only", Work: f.ticking(time.Millisecond, &calls)}}}))
	require.NoError(t, err)
	assert.False(t, strings.HasPrefix(rep.String(), "only: "), rep.String())
}

func TestRun_SubsFromMapIsSorted(t *testing.T) {
	h, f := newFixture()
	var x, y int

	rep, err := h.Run(Subs(Config{
		N:    Iterations(1),
		Subs: SubsFromMap(map[string]Work{"y": f.ticking(time.Millisecond, &y), "x": f.ticking(time.Millisecond, &x)}),
	}))
	require.NoError(t, err)
	assert.Equal(t, "x", rep.Measurements[0].Name)
	assert.Equal(t, "y", rep.Measurements[1].Name)
}

func TestRun_Adaptive(t *testing.T) {
	t.Run("slow first call is one-shot", func(t *testing.T) {
		h, f := newFixture()
		calls := 0
		rep, err := h.Run(Func(f.ticking(3*time.Second, &calls)))
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
		assert.Equal(t, uint64(1), rep.Measurements[0].Calls)
	})

	t.Run("fast first call runs for two seconds", func(t *testing.T) {
		h, f := newFixture()
		calls := 0
		rep, err := h.Run(Func(f.ticking(500*time.Millisecond, &calls)))
		require.NoError(t, err)
		assert.Equal(t, 4, calls)
		assert.GreaterOrEqual(t, rep.Measurements[0].Elapsed, 2.0)
	})
}

func TestRun_ConfigurationErrors(t *testing.T) {
	tests := []struct {
		name   string
		target Target
	}{
		{name: "nil callable", target: Func(nil)},
		{name: "no subs", target: Subs(Config{})},
		{name: "empty subs", target: Subs(Config{Subs: []Sub{}})},
		{name: "empty map", target: Subs(Config{Subs: SubsFromMap(map[string]Work{})})},
		{name: "external forced without backend", target: FuncWith(Void(func() {}), Config{Backend: BackendExternal})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, f := newFixture()
			start := f.clock.Now()

			rep, err := h.Run(tt.target)
			assert.Nil(t, rep)
			assert.True(t, errors.Is(err, ErrConfiguration), "error %v", err)

			var cfgErr *ConfigurationError
			assert.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, start, f.clock.Now(), "no timing happened")
		})
	}
}

func TestRun_ExternalForcedPerformsNoCalls(t *testing.T) {
	h, f := newFixture()
	calls := 0
	_, err := h.Run(FuncWith(f.ticking(time.Millisecond, &calls), Config{Backend: BackendExternal}))
	require.Error(t, err)
	assert.Equal(t, 0, calls)
}

func TestRun_WorkErrorKeepsPartialReport(t *testing.T) {
	h, f := newFixture()
	sentinel := errors.New("b broke")
	a := 0

	rep, err := h.Run(Subs(Config{
		N: Iterations(2),
		Subs: []Sub{
			{Name: "a", Work: f.ticking(time.Millisecond, &a)},
			{Name: "b", Work: func() error { return sentinel }},
			{Name: "c", Work: Void(func() { t.Fatal("c must not run") })},
		},
	}))
	assert.Same(t, sentinel, err)
	require.NotNil(t, rep)
	require.Len(t, rep.Lines, 1)
	assert.True(t, strings.HasPrefix(rep.Lines[0], "a: 2 calls"), rep.Lines[0])
}

func TestRunAndPrint(t *testing.T) {
	h, f := newFixture()
	calls := 0

	require.NoError(t, h.RunAndPrint(FuncN(f.ticking(250*time.Millisecond, &calls), 4)))
	assert.Equal(t, "4 calls (4/s), 1.0000s (0.2500s/call)\n", f.out.String())
}

func TestRunAndPrint_PartialOnError(t *testing.T) {
	h, f := newFixture()
	sentinel := errors.New("late failure")
	a := 0

	err := h.RunAndPrint(Subs(Config{
		N: Iterations(1),
		Subs: []Sub{
			{Name: "a", Work: f.ticking(time.Second, &a)},
			{Name: "b", Work: func() error { return sentinel }},
		},
	}))
	assert.Same(t, sentinel, err)
	assert.Equal(t, "a: 1 calls (1/s), 1.0000s (1.0000s/call)\n", f.out.String())
}

func TestRunAndPrint_ConfigErrorPrintsNothing(t *testing.T) {
	h, f := newFixture()
	err := h.RunAndPrint(Subs(Config{}))
	assert.Error(t, err)
	assert.Empty(t, f.out.String())
}

// recordingBackend is an in-memory external backend.
type recordingBackend struct {
	opts  map[string]any
	names []string
	works []Work
	ran   bool
}

func (r *recordingBackend) Register(name string, w Work) error {
	r.names = append(r.names, name)
	r.works = append(r.works, w)
	return nil
}

func (r *recordingBackend) Run() error {
	r.ran = true
	for _, w := range r.works {
		if err := w(); err != nil {
			return err
		}
	}
	return nil
}

func (r *recordingBackend) Report() string {
	return "external: " + strings.Join(r.names, ",") + "\n"
}

func TestRun_ExternalDispatch(t *testing.T) {
	tests := []struct {
		name         string
		mode         BackendMode
		wantExternal bool
	}{
		{name: "auto uses available backend", mode: BackendAuto, wantExternal: true},
		{name: "forced external", mode: BackendExternal, wantExternal: true},
		{name: "forced internal", mode: BackendInternal, wantExternal: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rb := &recordingBackend{}
			h, f := newFixture(WithBackend("recording", func(opts map[string]any) (Backend, error) {
				rb.opts = opts
				return rb, nil
			}))
			calls := 0

			rep, err := h.Run(FuncWith(f.ticking(time.Millisecond, &calls), Config{
				N:              Iterations(2),
				Backend:        tt.mode,
				BackendOptions: map[string]any{"samples": 7},
			}))
			require.NoError(t, err)

			assert.Equal(t, tt.wantExternal, rb.ran)
			if tt.wantExternal {
				assert.Equal(t, "recording", rep.Backend)
				assert.Equal(t, "external: _", rep.String())
				assert.Equal(t, map[string]any{"samples": 7}, rb.opts)
				assert.Empty(t, rep.Measurements)
			} else {
				assert.Equal(t, "internal", rep.Backend)
				assert.Equal(t, 2, calls)
			}
		})
	}
}

func TestRun_ExternalMultiUnitOrder(t *testing.T) {
	rb := &recordingBackend{}
	h, _ := newFixture(WithBackend("recording", func(map[string]any) (Backend, error) { return rb, nil }))

	rep, err := h.Run(Subs(Config{Subs: []Sub{
		{Name: "second", Work: Void(func() {})},
		{Name: "first", Work: Void(func() {})},
	}}))
	require.NoError(t, err)
	assert.Equal(t, "external: second,first", rep.String())
}

func TestRun_ExternalFactoryError(t *testing.T) {
	h, _ := newFixture(WithBackend("broken", func(map[string]any) (Backend, error) {
		return nil, errors.New("bad options")
	}))
	_, err := h.Run(Func(Void(func() {})))
	assert.True(t, errors.Is(err, ErrConfiguration))
}

func TestRun_BundledHDRBackend(t *testing.T) {
	h, _ := newFixture(WithBackend(BackendHDR, MustLookupBackend(BackendHDR)))

	rep, err := h.Run(Subs(Config{
		Subs:           []Sub{{Name: "noop", Work: Void(func() {})}},
		BackendOptions: map[string]any{"samples": 20, "warmup": 0},
	}))
	require.NoError(t, err)
	assert.Equal(t, BackendHDR, rep.Backend)
	assert.True(t, strings.HasPrefix(rep.String(), "noop: n=20 "), rep.String())
}

func TestLookupBackend(t *testing.T) {
	_, err := LookupBackend(BackendGoTest)
	assert.NoError(t, err)
	_, err = LookupBackend("nope")
	assert.True(t, errors.Is(err, ErrConfiguration))
	assert.Panics(t, func() { MustLookupBackend("nope") })
}

func TestSessionStopwatch(t *testing.T) {
	t.Run("never invoked prints elapsed", func(t *testing.T) {
		_, f := newFixture()
		f.clock.Advance(1500 * time.Millisecond)
		require.NoError(t, f.session.Close())
		assert.Equal(t, "1.5000s\n", f.stop.String())
	})

	t.Run("invoked suppresses stopwatch", func(t *testing.T) {
		h, f := newFixture()
		_, _ = h.Run(FuncN(Void(func() {}), 1))
		require.NoError(t, f.session.Close())
		assert.Empty(t, f.stop.String())
	})

	t.Run("config error still counts as invoked", func(t *testing.T) {
		h, f := newFixture()
		_, _ = h.Run(Subs(Config{}))
		require.NoError(t, f.session.Close())
		assert.Empty(t, f.stop.String())
	})
}

func TestNewSession(t *testing.T) {
	var stop, out bytes.Buffer
	s := NewSession(&stop)
	h := New(WithSession(s), WithOutput(&out))

	require.NoError(t, h.RunAndPrint(FuncN(Void(func() {}), 3)))
	require.NoError(t, s.Close())
	assert.Empty(t, stop.String())
	assert.True(t, strings.HasPrefix(out.String(), "3 calls"), out.String())

	idle := NewSession(&stop)
	require.NoError(t, idle.Close())
	assert.Regexp(t, `^\d+\.\d{4}s\n$`, stop.String())
}

func TestDefaultHarness(t *testing.T) {
	assert.Same(t, Default(), Default())
}
