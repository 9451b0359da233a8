package cli

import (
	"github.com/spf13/cobra"

	"github.com/wesleyorama2/benchit/bench"
	"github.com/wesleyorama2/benchit/internal/bench/config"
	"github.com/wesleyorama2/benchit/internal/bench/shell"
)

func (a *app) newSuiteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "suite <file>",
		Short: "Run a suite file of named shell snippets",
		Long: `Run the snippets of a YAML suite file. The file is validated against the
suite schema before anything runs. Flags override the file's settings.`,
		Args: cobra.ExactArgs(1),
		PreRun: func(cmd *cobra.Command, args []string) {
			a.timed = true
			a.session.MarkInvoked()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSuite(cmd, args[0])
		},
	}

	addBenchFlags(cmd)

	return cmd
}

func (a *app) runSuite(cmd *cobra.Command, path string) error {
	s, err := config.LoadSuite(path)
	if err != nil {
		return err
	}

	rc := bench.Config{N: s.N, Backend: s.Backend}
	if a.v.IsSet("n") {
		if rc.N, err = a.iterations(); err != nil {
			return err
		}
	}
	if a.v.IsSet("backend") {
		if rc.Backend, err = a.backendMode(); err != nil {
			return err
		}
	}
	if rc.BackendOptions, err = a.backendOptions(cmd, s.BackendOptions); err != nil {
		return err
	}

	name := s.WithBackend
	if a.v.IsSet("with-backend") {
		name = a.v.GetString("with-backend")
	}
	h, err := a.harness(name)
	if err != nil {
		return err
	}

	rc.Subs, err = shell.CompileAll(cmd.Context(), s.Subs, shell.Options{})
	if err != nil {
		return err
	}

	a.logger.Debug("running suite", "name", s.Name, "units", len(rc.Subs), "backend", rc.Backend)
	return a.runAndWrite(h, bench.Subs(rc))
}
