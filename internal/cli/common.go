package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/benchit/bench"
	"github.com/wesleyorama2/benchit/internal/bench/config"
	"github.com/wesleyorama2/benchit/internal/output"
	"github.com/wesleyorama2/benchit/pkg/jsonpath"
)

// iterationsFlag is bound to the defaults key "n".
const iterationsFlag = "iterations"

// addBenchFlags registers the flags shared by run and suite.
func addBenchFlags(cmd *cobra.Command) {
	cmd.Flags().StringP(iterationsFlag, "n", "", "Iterations: >= 0 for an exact count, < 0 for a budget of |n| seconds (default adaptive)")
	cmd.Flags().String("backend", "auto", "Backend mode: auto, true (external) or false (internal)")
	cmd.Flags().String("with-backend", "", "External backend to make available (gotest or hdr)")
	cmd.Flags().StringArray("backend-opt", nil, "External backend option as key=value (repeatable)")
	cmd.Flags().String("backend-opts-json", "", "External backend options as a JSON object")
}

// iterations returns the -n value, or nil when it was not given anywhere.
func (a *app) iterations() (*int, error) {
	if !a.v.IsSet("n") {
		return nil, nil
	}
	raw := strings.TrimSpace(a.v.GetString("n"))
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, config.NewError("n", fmt.Sprintf("not an integer: %q", raw))
	}
	return &n, nil
}

// backendMode returns the --backend value.
func (a *app) backendMode() (config.BackendMode, error) {
	return config.ParseBackendMode(a.v.GetString("backend"))
}

// backendOptions merges, in increasing priority, base, the defaults file's
// backend-options, --backend-opts-json and --backend-opt pairs.
func (a *app) backendOptions(cmd *cobra.Command, base map[string]any) (map[string]any, error) {
	opts := make(map[string]any, len(base))
	for k, v := range base {
		opts[k] = v
	}
	for k, v := range a.v.GetStringMap("backend-options") {
		opts[k] = v
	}

	if raw := a.v.GetString("backend-opts-json"); raw != "" {
		fromJSON, err := jsonpath.Object(raw)
		if err != nil {
			return nil, config.NewError("backendOptions", err.Error())
		}
		for k, v := range fromJSON {
			opts[k] = v
		}
	}

	pairs, _ := cmd.Flags().GetStringArray("backend-opt")
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || k == "" {
			return nil, config.NewError("backendOptions", fmt.Sprintf("expected key=value, got %q", pair))
		}
		opts[k] = v
	}

	if len(opts) == 0 {
		return nil, nil
	}
	return opts, nil
}

// harness builds a harness bound to the CLI session. name selects the
// external backend made available, if any.
func (a *app) harness(name string) (*bench.Harness, error) {
	opts := []bench.Option{
		bench.WithSession(a.session),
		bench.WithLogger(a.logger),
		bench.WithOutput(a.stdout),
	}
	if name != "" {
		factory, err := bench.LookupBackend(name)
		if err != nil {
			return nil, err
		}
		opts = append(opts, bench.WithBackend(name, factory))
	}
	return bench.New(opts...), nil
}

// writeReport renders rep to --output or stdout.
func (a *app) writeReport(rep *bench.Report) error {
	if rep == nil {
		return nil
	}

	format := output.FormatText
	if a.v.GetBool("json") {
		format = output.FormatJSON
	}

	var w io.Writer = a.stdout
	if path := a.v.GetString("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	formatter := output.NewFormatter(a.v.GetBool("verbose"), output.UseColor(w, a.v.GetBool("no-color")))
	text, err := formatter.Format(rep, format)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, text); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// runAndWrite runs target and writes whatever report came back, including
// the partial report of a failed run.
func (a *app) runAndWrite(h *bench.Harness, target bench.Target) error {
	rep, err := h.Run(target)
	if werr := a.writeReport(rep); werr != nil && err == nil {
		err = werr
	}
	return err
}
