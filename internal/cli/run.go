package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/benchit/bench"
	"github.com/wesleyorama2/benchit/internal/bench/config"
	"github.com/wesleyorama2/benchit/internal/bench/shell"
)

func (a *app) newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [snippet]",
		Short: "Benchmark shell snippets",
		Long: `Benchmark a shell snippet, or several named snippets given with --sub.
Without -n the snippet runs once, and again until two seconds have passed
if that first call was faster than that.`,
		Example: `  benchit run 'x=$((x+1))'
  benchit run -n 1000 --sub concat='x="a$x"' --sub printf='printf -v y %s "$x"'
  benchit run -n -3 --with-backend hdr --backend-opt samples=500 'true'`,
		PreRun: func(cmd *cobra.Command, args []string) {
			a.timed = true
			a.session.MarkInvoked()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSnippets(cmd, args)
		},
	}

	addBenchFlags(cmd)
	cmd.Flags().StringArray("sub", nil, "Named snippet as name=snippet (repeatable, measured in order)")

	return cmd
}

func (a *app) runSnippets(cmd *cobra.Command, args []string) error {
	n, err := a.iterations()
	if err != nil {
		return err
	}
	mode, err := a.backendMode()
	if err != nil {
		return err
	}
	opts, err := a.backendOptions(cmd, nil)
	if err != nil {
		return err
	}
	h, err := a.harness(a.v.GetString("with-backend"))
	if err != nil {
		return err
	}

	snippets, err := parseSubs(cmd)
	if err != nil {
		return err
	}

	rc := bench.Config{N: n, Backend: mode, BackendOptions: opts}

	if len(args) > 0 {
		if len(snippets) > 0 {
			a.logger.Warn("a positional snippet was given; ignoring --sub", "subs", len(snippets))
		}
		s, err := shell.Compile(cmd.Context(), "snippet", strings.Join(args, " "), shell.Options{})
		if err != nil {
			return err
		}
		return a.runAndWrite(h, bench.FuncWith(s.Work(), rc))
	}

	if snippets != nil {
		rc.Subs, err = shell.CompileAll(cmd.Context(), snippets, shell.Options{})
		if err != nil {
			return err
		}
	}
	return a.runAndWrite(h, bench.Subs(rc))
}

// parseSubs reads the --sub name=snippet pairs in command-line order.
func parseSubs(cmd *cobra.Command) (config.SnippetList, error) {
	pairs, _ := cmd.Flags().GetStringArray("sub")
	if len(pairs) == 0 {
		return nil, nil
	}

	out := make(config.SnippetList, 0, len(pairs))
	for _, pair := range pairs {
		name, src, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, config.NewError("subs", fmt.Sprintf("expected name=snippet, got %q", pair))
		}
		out = append(out, config.Snippet{Name: name, Run: src})
	}
	return out, nil
}
