package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/wesleyorama2/benchit/internal/bench/clock"
	"github.com/wesleyorama2/benchit/internal/bench/session"
	"github.com/wesleyorama2/benchit/internal/output"
)

var version = "0.1.0"

// app is the state shared by the commands of one root command.
type app struct {
	v       *viper.Viper
	session *session.Session
	logger  *log.Logger
	stdout  io.Writer
	stderr  io.Writer
	cfgFile string

	// timed is set by the commands that run units of work; only they
	// close the session.
	timed bool
}

// newRootCmd builds the command tree and the state its commands share.
func newRootCmd(stdout, stderr io.Writer) (*cobra.Command, *app) {
	a := &app{
		v:       viper.New(),
		session: session.New(clock.System{}, stdout),
		logger:  log.NewWithOptions(stderr, log.Options{Prefix: "benchit"}),
		stdout:  stdout,
		stderr:  stderr,
	}

	rootCmd := &cobra.Command{
		Use:     "benchit",
		Short:   "A micro-benchmarking harness for code snippets",
		Version: version,
		Long: `benchit measures how long units of work take and reports throughput
and per-call latency. Units of work are shell snippets run by an in-process
interpreter, either given on the command line or listed in a suite file.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initConfig(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "defaults file (default is .benchit.yaml in the current or home directory)")
	flags.BoolP("verbose", "v", false, "Enable debug logging")
	flags.Bool("no-color", false, "Disable colored output")
	flags.Bool("json", false, "Write reports as JSON")
	flags.StringP("output", "o", "", "Write reports to a file instead of stdout")

	rootCmd.AddCommand(a.newRunCmd())
	rootCmd.AddCommand(a.newSuiteCmd())
	rootCmd.AddCommand(a.newExecCmd())
	rootCmd.AddCommand(a.newQueryCmd())

	return rootCmd, a
}

// initConfig layers flags over BENCHIT_* environment variables over the
// defaults file.
func (a *app) initConfig(cmd *cobra.Command) error {
	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		a.v.SetConfigName(".benchit")
		a.v.SetConfigType("yaml")
		a.v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			a.v.AddConfigPath(home)
		}
	}

	a.v.SetEnvPrefix("BENCHIT")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if a.cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := a.v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("failed to bind flags: %w", err)
	}
	if f := cmd.Flags().Lookup(iterationsFlag); f != nil {
		if err := a.v.BindPFlag("n", f); err != nil {
			return fmt.Errorf("failed to bind flags: %w", err)
		}
	}

	if a.v.GetBool("verbose") {
		a.logger.SetLevel(log.DebugLevel)
	}
	if used := a.v.ConfigFileUsed(); used != "" {
		a.logger.Debug("loaded defaults", "file", used)
	}
	return nil
}

// Run executes the CLI with args and prints any error to stderr. After run,
// suite and exec the session is closed, so exec reports the total elapsed
// time.
func Run(args []string, stdout, stderr io.Writer) error {
	rootCmd, a := newRootCmd(stdout, stderr)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	if err != nil {
		noColor, _ := rootCmd.PersistentFlags().GetBool("no-color")
		f := output.NewFormatter(false, output.UseColor(stderr, noColor))
		fmt.Fprint(stderr, f.FormatError(err))
	}

	if a.timed {
		if cerr := a.session.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// Execute runs the CLI with the process arguments.
// This is called by main.main().
func Execute() error {
	return Run(os.Args[1:], os.Stdout, os.Stderr)
}
