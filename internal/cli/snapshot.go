package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hupe1980/triplecheck"
	"github.com/hupe1980/triplecheck/blobstore"
	minioblob "github.com/hupe1980/triplecheck/blobstore/minio"
	s3blob "github.com/hupe1980/triplecheck/blobstore/s3"
	"github.com/hupe1980/triplecheck/internal/config"
	"github.com/hupe1980/triplecheck/presence"
	"github.com/hupe1980/triplecheck/snapshot"
)

// NewSnapshotCommand creates the snapshot command group.
func NewSnapshotCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Export, restore and inspect compressed bitmap snapshots",
	}

	cmd.AddCommand(newSnapshotExportCommand(rootOpts))
	cmd.AddCommand(newSnapshotRestoreCommand(rootOpts))
	cmd.AddCommand(newSnapshotInspectCommand(rootOpts))
	cmd.AddCommand(newSnapshotListCommand(rootOpts))

	return cmd
}

func newSnapshotExportCommand(rootOpts *RootOptions) *cobra.Command {
	var mapPath, codecName string

	cmd := &cobra.Command{
		Use:   "export NAME",
		Short: "Write the bitmap to the snapshot store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ctx := cmd.Context()
			cfg := rootOpts.cfg

			path, err := bitmapPath(mapPath, cfg)
			if err != nil {
				return err
			}
			if codecName == "" {
				codecName = cfg.Snapshot.Codec
			}
			codec, err := snapshot.ParseCodec(codecName)
			if err != nil {
				return triplecheck.NewError(triplecheck.KindConfig, "codec", err)
			}

			store, err := openBlobStore(ctx, cfg.Snapshot)
			if err != nil {
				return err
			}

			bm, err := openBitmap(path, presence.ModeCheck, cfg)
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, bm.Close()) }()

			h, err := snapshot.Export(ctx, bm, store, args[0],
				snapshot.WithCodec(codec),
				snapshot.WithIORateLimit(cfg.Throttle.IOBytesPerSec),
				snapshot.WithLogger(rootOpts.logger),
			)
			if err != nil {
				return err
			}
			return writeHeader(cmd.OutOrStdout(), args[0], h)
		},
	}

	cmd.Flags().StringVarP(&mapPath, "map", "m", "", "bitmap file (default: bitmap.path)")
	cmd.Flags().StringVar(&codecName, "codec", "", "compression (none|zstd|lz4, default: snapshot.codec)")
	return cmd
}

func newSnapshotRestoreCommand(rootOpts *RootOptions) *cobra.Command {
	var mapPath string

	cmd := &cobra.Command{
		Use:   "restore NAME",
		Short: "Recreate the bitmap file from a snapshot",
		Long: `Download a snapshot and write it to the bitmap path. The restored file
replaces the target only after its size and checksum have been verified.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := rootOpts.cfg

			path, err := bitmapPath(mapPath, cfg)
			if err != nil {
				return err
			}
			store, err := openBlobStore(ctx, cfg.Snapshot)
			if err != nil {
				return err
			}

			h, err := snapshot.Restore(ctx, store, args[0], path,
				snapshot.WithIORateLimit(cfg.Throttle.IOBytesPerSec),
				snapshot.WithLogger(rootOpts.logger),
			)
			if err != nil {
				return triplecheck.NewError(triplecheck.KindBitmap, "restore", err)
			}
			if h.MapSize != cfg.Bitmap.MapSize {
				rootOpts.logger.WarnContext(ctx, "snapshot map size differs from configuration",
					"snapshot", h.MapSize, "configured", cfg.Bitmap.MapSize)
			}
			return writeHeader(cmd.OutOrStdout(), args[0], h)
		},
	}

	cmd.Flags().StringVarP(&mapPath, "map", "m", "", "bitmap file (default: bitmap.path)")
	return cmd
}

func newSnapshotInspectCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect NAME",
		Short: "Print a snapshot header",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := openBlobStore(ctx, rootOpts.cfg.Snapshot)
			if err != nil {
				return err
			}
			h, err := snapshot.Inspect(ctx, store, args[0])
			if err != nil {
				return err
			}
			return writeHeader(cmd.OutOrStdout(), args[0], h)
		},
	}
}

func newSnapshotListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list [PREFIX]",
		Short: "List snapshots",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := openBlobStore(ctx, rootOpts.cfg.Snapshot)
			if err != nil {
				return err
			}
			var prefix string
			if len(args) == 1 {
				prefix = args[0]
			}
			names, err := store.List(ctx, prefix)
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func writeHeader(w io.Writer, name string, h snapshot.Header) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "name:\t%s\n", name)
	fmt.Fprintf(tw, "version:\t%d\n", h.Version)
	fmt.Fprintf(tw, "codec:\t%s\n", h.Codec)
	fmt.Fprintf(tw, "map size:\t%d\n", h.MapSize)
	fmt.Fprintf(tw, "bits set:\t%d\n", h.BitsSet)
	fmt.Fprintf(tw, "checksum:\t%08x\n", h.Checksum)
	return tw.Flush()
}

// openBlobStore connects to the configured snapshot store.
func openBlobStore(ctx context.Context, cfg config.SnapshotConfig) (blobstore.BlobStore, error) {
	switch cfg.Store {
	case config.StoreLocal:
		return blobstore.NewLocalStore(cfg.Dir), nil
	case config.StoreMinIO:
		st, err := minioblob.New(minioblob.Config{
			Endpoint:  cfg.Endpoint,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			Region:    cfg.Region,
			Secure:    cfg.Secure,
			Bucket:    cfg.Bucket,
			Prefix:    cfg.Prefix,
		})
		if err != nil {
			return nil, triplecheck.NewError(triplecheck.KindStoreInit, "snapshot store", err)
		}
		return st, nil
	case config.StoreS3:
		opts := []s3blob.Option{s3blob.WithPrefix(cfg.Prefix)}
		if cfg.Region != "" {
			opts = append(opts, s3blob.WithRegion(cfg.Region))
		}
		if cfg.Endpoint != "" {
			opts = append(opts, s3blob.WithEndpoint(cfg.Endpoint))
		}
		if cfg.AccessKey != "" {
			opts = append(opts, s3blob.WithStaticCredentials(cfg.AccessKey, cfg.SecretKey))
		}
		st, err := s3blob.New(ctx, cfg.Bucket, opts...)
		if err != nil {
			return nil, triplecheck.NewError(triplecheck.KindStoreInit, "snapshot store", err)
		}
		return st, nil
	default:
		return nil, triplecheck.NewError(triplecheck.KindConfig, "snapshot store",
			fmt.Errorf("unknown store %q", cfg.Store))
	}
}
