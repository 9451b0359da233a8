package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/benchit/pkg/jsonpath"
)

func (a *app) newQueryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "query <report.json> <jsonpath>",
		Short: "Extract a value from a saved JSON report",
		Example: `  benchit run --json -o report.json -n 100 'true'
  benchit query report.json '$.measurements[0].rate'`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read report: %w", err)
			}
			value, err := jsonpath.Extract(string(data), args[1])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(a.stdout, value)
			return err
		},
	}
}
