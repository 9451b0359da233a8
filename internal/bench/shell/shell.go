// Package shell turns shell snippets into units of work. Snippets are parsed
// once and run by an in-process POSIX shell interpreter, so each call costs
// an interpreter run rather than a process spawn unless the snippet itself
// starts external programs.
package shell

import (
	"context"
	"fmt"
	"io"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"

	"github.com/wesleyorama2/benchit/internal/bench/config"
)

// Options configure the interpreter of a snippet.
type Options struct {
	// Dir is the working directory (default: current directory)
	Dir string

	// Env replaces the inherited environment when non-nil
	Env []string

	// Stdout and Stderr receive the snippet's output (default: discarded)
	Stdout io.Writer
	Stderr io.Writer
}

// ExitError reports a snippet that finished with a non-zero status.
type ExitError struct {
	Name   string
	Status int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("snippet %q exited with status %d", e.Name, e.Status)
}

// Snippet is a parsed shell snippet bound to its own interpreter.
type Snippet struct {
	name   string
	prog   *syntax.File
	runner *interp.Runner
	ctx    context.Context
}

// Compile parses src and prepares an interpreter for it.
func Compile(ctx context.Context, name, src string, opts Options) (*Snippet, error) {
	if strings.TrimSpace(src) == "" {
		return nil, config.NewError("subs."+name, "snippet is empty")
	}

	prog, err := syntax.NewParser().Parse(strings.NewReader(src), name)
	if err != nil {
		return nil, fmt.Errorf("failed to parse snippet %q: %w", name, err)
	}

	stdout, stderr := opts.Stdout, opts.Stderr
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	runnerOpts := []interp.RunnerOption{
		interp.StdIO(nil, stdout, stderr),
	}
	if opts.Dir != "" {
		runnerOpts = append(runnerOpts, interp.Dir(opts.Dir))
	}
	if opts.Env != nil {
		runnerOpts = append(runnerOpts, interp.Env(expand.ListEnviron(opts.Env...)))
	}

	runner, err := interp.New(runnerOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create interpreter for %q: %w", name, err)
	}

	if ctx == nil {
		ctx = context.Background()
	}
	return &Snippet{name: name, prog: prog, runner: runner, ctx: ctx}, nil
}

// Run executes the snippet once from a fresh interpreter state.
func (s *Snippet) Run() error {
	s.runner.Reset()
	err := s.runner.Run(s.ctx, s.prog)
	if err == nil {
		return nil
	}

	if status, ok := interp.IsExitStatus(err); ok {
		return &ExitError{Name: s.name, Status: int(status)}
	}
	return fmt.Errorf("snippet %q failed: %w", s.name, err)
}

// Work returns the snippet as a unit of work.
func (s *Snippet) Work() config.Work {
	return s.Run
}

// CompileAll compiles snippets in order into named units of work.
func CompileAll(ctx context.Context, snippets config.SnippetList, opts Options) ([]config.Sub, error) {
	subs := make([]config.Sub, 0, len(snippets))
	for _, sn := range snippets {
		s, err := Compile(ctx, sn.Name, sn.Run, opts)
		if err != nil {
			return nil, err
		}
		subs = append(subs, config.Sub{Name: sn.Name, Work: s.Work()})
	}
	return subs, nil
}
