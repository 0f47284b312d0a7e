// Package cli implements the triplecheck command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/hupe1980/triplecheck"
	"github.com/hupe1980/triplecheck/internal/config"
)

// Exit codes for CLI commands.
const (
	ExitSuccess = 0
	ExitFailure = 1
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	LogFormat  string // "text" | "json"; overrides log.format
	Verbose    bool
	RunID      string

	// EnvFiles overrides the .env files read by config.Load.
	EnvFiles []string

	cfg    *config.Config
	logger *triplecheck.Logger
}

// ValidFormats defines the allowed log formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the triplecheck CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "triplecheck",
		Short: "Offline integrity checks for triple stores",
		Long: `triplecheck verifies a triple store against a presence bitmap of
statement fingerprints and checks the term dictionary's forward and reverse
indexes for consistency.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd.ErrOrStderr())
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "config file (YAML)")
	cmd.PersistentFlags().StringVar(&opts.LogFormat, "log-format", "", "log format (text|json)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")
	cmd.PersistentFlags().StringVar(&opts.RunID, "run-id", "", "run identifier (default: random UUID)")

	cmd.AddCommand(NewBuildCommand(opts))
	cmd.AddCommand(NewVerifyCommand(opts))
	cmd.AddCommand(NewTermsCommand(opts))
	cmd.AddCommand(NewSnapshotCommand(opts))
	cmd.AddCommand(NewLoadCommand(opts))

	return cmd
}

// setup loads the configuration and builds the logger.
func (o *RootOptions) setup(stderr io.Writer) error {
	if o.LogFormat != "" && !slices.Contains(ValidFormats, o.LogFormat) {
		return triplecheck.NewError(triplecheck.KindConfig, "flags",
			fmt.Errorf("invalid log format %q: must be one of %v", o.LogFormat, ValidFormats))
	}

	cfg, err := config.Load(o.ConfigPath, o.EnvFiles...)
	if err != nil {
		return err
	}
	if o.LogFormat != "" {
		cfg.Log.Format = o.LogFormat
	}

	level, err := cfg.Log.SlogLevel()
	if err != nil {
		return triplecheck.NewError(triplecheck.KindConfig, "log", err)
	}
	if o.Verbose {
		level = slog.LevelDebug
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Log.Format == "json" {
		handler = slog.NewJSONHandler(stderr, handlerOpts)
	} else {
		handler = slog.NewTextHandler(stderr, handlerOpts)
	}

	o.cfg = cfg
	o.logger = triplecheck.NewLogger(handler)
	return nil
}

// runOptions translates the configuration into library options.
func (o *RootOptions) runOptions(mc triplecheck.MetricsCollector) []triplecheck.Option {
	opts := []triplecheck.Option{
		triplecheck.WithLogger(o.logger),
		triplecheck.WithRateLimit(o.cfg.Throttle.StatementsPerSec),
		triplecheck.WithRunID(o.RunID),
	}
	if mc != nil {
		opts = append(opts, triplecheck.WithMetricsCollector(mc))
	}
	return opts
}

// Execute runs the CLI with args and returns the process exit code. Any
// failure is printed to stderr as "error: ...".
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	return execute(ctx, &RootOptions{}, args, stdout, stderr)
}

func execute(ctx context.Context, opts *RootOptions, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCommand(opts)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return ExitFailure
	}
	return ExitSuccess
}
