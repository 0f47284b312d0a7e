package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hupe1980/triplecheck"
	"github.com/hupe1980/triplecheck/presence"
)

type scanOptions struct {
	mapPath      string
	check        bool
	missingOut   string
	missingLimit int64
}

// NewBuildCommand creates the build command.
func NewBuildCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &scanOptions{}

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Populate the presence bitmap from the statement source",
		Long: `Scan every statement of the configured source and set its bit in the
presence bitmap. The file is created (or resized) to the configured map size.

With --check the bitmap is only read and every statement whose bit is unset
is reported as missing.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, rootOpts, opts)
		},
	}

	addScanFlags(cmd, opts)
	cmd.Flags().BoolVar(&opts.check, "check", false, "verify instead of build")

	return cmd
}

// NewVerifyCommand creates the verify command, an alias for build --check.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &scanOptions{check: true}

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check every statement against the presence bitmap",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, rootOpts, opts)
		},
	}

	addScanFlags(cmd, opts)
	return cmd
}

func addScanFlags(cmd *cobra.Command, opts *scanOptions) {
	cmd.Flags().StringVarP(&opts.mapPath, "map", "m", "", "bitmap file (default: bitmap.path)")
	cmd.Flags().StringVar(&opts.missingOut, "missing-out", "", "write ordinals of missing statements to FILE (roaring format)")
	cmd.Flags().Int64Var(&opts.missingLimit, "missing-limit", 0, "log at most N missing statements (0: all)")
}

func runScan(cmd *cobra.Command, rootOpts *RootOptions, opts *scanOptions) (err error) {
	ctx := cmd.Context()
	cfg := rootOpts.cfg

	path, err := bitmapPath(opts.mapPath, cfg)
	if err != nil {
		return err
	}

	src, closeSource, err := openSource(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, closeSource()) }()

	mode := presence.ModeBuild
	if opts.check {
		mode = presence.ModeCheck
	}
	bm, err := openBitmap(path, mode, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := bm.Close(); cerr != nil {
			err = errors.Join(err, triplecheck.NewError(triplecheck.KindBitmap, "close", cerr))
		}
	}()

	mc := &triplecheck.BasicMetricsCollector{}
	runOpts := append(rootOpts.runOptions(mc), triplecheck.WithMissingLimit(opts.missingLimit))

	var rep *triplecheck.Report
	if opts.check {
		rep, err = triplecheck.Verify(ctx, src, bm, runOpts...)
	} else {
		rep, err = triplecheck.Build(ctx, src, bm, runOpts...)
	}
	rootOpts.logger.DebugContext(ctx, "metrics", "stats", mc.GetStats())
	if err != nil {
		return err
	}

	if err := rep.WriteText(cmd.OutOrStdout()); err != nil {
		return err
	}

	if opts.check && opts.missingOut != "" {
		if err := writeMissing(opts.missingOut, rep); err != nil {
			return err
		}
		rootOpts.logger.InfoContext(ctx, "missing ordinals written", "path", opts.missingOut, "count", rep.Missing)
	}
	return nil
}

func writeMissing(path string, rep *triplecheck.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("missing report: %w", err)
	}
	if _, err := rep.WriteMissing(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("missing report: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("missing report: %w", err)
	}
	return nil
}
