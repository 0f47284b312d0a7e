package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/hupe1980/triplecheck"
)

type termsOptions struct {
	fix bool
}

// NewTermsCommand creates the terms command.
func NewTermsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &termsOptions{}

	cmd := &cobra.Command{
		Use:   "terms TERM...",
		Short: "Check forward/reverse dictionary consistency for terms",
		Long: `Look up each term in the forward index and check that the reverse entry
for its id decodes back to the same value.

With --fix every inconsistent reverse entry is rewritten from the term and
committed. Re-run the check afterwards to confirm.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ctx := cmd.Context()

			st, err := openStore(ctx, rootOpts.cfg)
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, st.Close()) }()

			mc := &triplecheck.BasicMetricsCollector{}
			rep, err := triplecheck.CheckTerms(ctx, st, args, opts.fix, rootOpts.runOptions(mc)...)
			rootOpts.logger.DebugContext(ctx, "metrics", "stats", mc.GetStats())
			if err != nil {
				return err
			}
			return rep.WriteText(cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&opts.fix, "fix", false, "repair inconsistent reverse entries")
	return cmd
}
