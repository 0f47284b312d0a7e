package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/triplecheck"
	"github.com/hupe1980/triplecheck/model"
	"github.com/hupe1980/triplecheck/ntriples"
)

// DefaultLoadBatch is the number of statements inserted per transaction.
const DefaultLoadBatch = 1000

type loadOptions struct {
	batch int
}

// NewLoadCommand creates the load command.
func NewLoadCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &loadOptions{}

	cmd := &cobra.Command{
		Use:   "load FILE...",
		Short: "Load N-Triples files into the configured SQL store",
		Long: `Parse each N-Triples file (optionally .gz, .zst or .lz4 compressed) and
insert its statements into the configured sqlite3 or postgres store, assigning
dictionary ids to new terms. Statements already present are skipped.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ctx := cmd.Context()
			log := rootOpts.logger

			st, err := openStore(ctx, rootOpts.cfg)
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, st.Close()) }()

			if opts.batch <= 0 {
				opts.batch = DefaultLoadBatch
			}

			var total, added int64
			for _, path := range args {
				f, err := ntriples.Open(path)
				if err != nil {
					return triplecheck.NewError(triplecheck.KindScan, "open", err)
				}

				batch := make([]model.Statement, 0, opts.batch)
				flush := func() error {
					if len(batch) == 0 {
						return nil
					}
					n, err := st.Insert(ctx, batch...)
					if err != nil {
						return triplecheck.NewError(triplecheck.KindLexicon, "insert", err)
					}
					added += n
					batch = batch[:0]
					return nil
				}

				for stmt, err := range f.Statements(ctx) {
					if err != nil {
						return triplecheck.NewError(triplecheck.KindScan, "parse", err)
					}
					total++
					batch = append(batch, stmt)
					if len(batch) == cap(batch) {
						if err := flush(); err != nil {
							return err
						}
					}
				}
				if err := flush(); err != nil {
					return err
				}
				log.InfoContext(ctx, "loaded file", "path", path, "compression", f.Compression().String())
			}

			fmt.Fprintf(cmd.OutOrStdout(), "loaded %d statements (%d new)\n", total, added)
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.batch, "batch", DefaultLoadBatch, "statements per transaction")
	return cmd
}
