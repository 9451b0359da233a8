package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/benchit/internal/bench/shell"
)

func (a *app) newExecCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exec -- <snippet>",
		Short: "Run a snippet once without benchmarking and print the total elapsed time",
		Args:  cobra.MinimumNArgs(1),
		PreRun: func(cmd *cobra.Command, args []string) {
			a.timed = true
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := shell.Compile(cmd.Context(), "exec", strings.Join(args, " "), shell.Options{
				Stdout: a.stdout,
				Stderr: a.stderr,
			})
			if err != nil {
				return err
			}
			return s.Run()
		},
	}
}
