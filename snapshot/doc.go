// Package snapshot exports presence bitmaps to a blobstore and restores them.
//
// A bitmap for a large dataset is a few gigabytes of mostly zero bytes, so it
// compresses well. A snapshot blob is a fixed 32-byte Header followed by the
// bitmap, optionally compressed with zstd or lz4:
//
//	h, err := snapshot.Export(ctx, bitmap, store, "dataset.tcbm",
//	    snapshot.WithCodec(snapshot.CodecZstd),
//	)
//
//	h, err = snapshot.Restore(ctx, store, "dataset.tcbm", "/data/dataset.map")
//
// Restore verifies the size and CRC32C recorded in the header before the
// restored file replaces anything at the target path.
package snapshot
