package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/hupe1980/triplecheck/blobstore"
	tcfs "github.com/hupe1980/triplecheck/internal/fs"
	"github.com/hupe1980/triplecheck/internal/resource"
)

// Inspect reads and validates the header of a snapshot without touching the
// payload.
func Inspect(ctx context.Context, store blobstore.BlobStore, name string) (Header, error) {
	blob, err := store.Open(ctx, name)
	if err != nil {
		return Header{}, fmt.Errorf("snapshot: open %s: %w", name, err)
	}
	defer func() { _ = blob.Close() }()

	buf := make([]byte, HeaderSize)
	if _, err := blob.ReadAt(ctx, buf, 0); err != nil {
		if errors.Is(err, io.EOF) {
			return Header{}, fmt.Errorf("snapshot: %s: short header", name)
		}
		return Header{}, fmt.Errorf("snapshot: read %s: %w", name, err)
	}

	var h Header
	if err := h.UnmarshalBinary(buf); err != nil {
		return Header{}, fmt.Errorf("snapshot: %s: %w", name, err)
	}
	return h, nil
}

// Restore recreates the bitmap file at path from a snapshot. The file is
// written under a temporary name and renamed into place only after its size
// and checksum match the header, so a failed restore never clobbers an
// existing bitmap.
func Restore(ctx context.Context, store blobstore.BlobStore, name, path string, optFns ...Option) (Header, error) {
	o := applyOptions(optFns)
	start := time.Now()

	blob, err := store.Open(ctx, name)
	if err != nil {
		return Header{}, fmt.Errorf("snapshot: open %s: %w", name, err)
	}
	defer func() { _ = blob.Close() }()

	rc, err := blobstore.NewReader(ctx, blob)
	if err != nil {
		return Header{}, fmt.Errorf("snapshot: read %s: %w", name, err)
	}
	defer func() { _ = rc.Close() }()

	r := resource.NewRateLimitedReader(ctx, rc, o.throttle)

	buf := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return Header{}, fmt.Errorf("snapshot: %s: read header: %w", name, err)
	}
	var h Header
	if err := h.UnmarshalBinary(buf); err != nil {
		return Header{}, fmt.Errorf("snapshot: %s: %w", name, err)
	}

	dec, err := newDecoder(h.Codec, r)
	if err != nil {
		return Header{}, err
	}
	defer func() { _ = dec.Close() }()

	if err := writeBitmap(ctx, o.fs, path, h, dec); err != nil {
		return Header{}, fmt.Errorf("snapshot: restore %s to %s: %w", name, path, err)
	}

	o.logger.InfoContext(ctx, "snapshot restored",
		"name", name,
		"path", path,
		"codec", h.Codec.String(),
		"map_size", h.MapSize,
		"bits_set", h.BitsSet,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return h, nil
}

func writeBitmap(ctx context.Context, fsys tcfs.FileSystem, path string, h Header, r io.Reader) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := fsys.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	tmp := path + "." + uuid.NewString() + ".restore"
	f, err := fsys.OpenFile(tmp, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = fsys.Remove(tmp)
		}
	}()

	// Preallocate; all-zero regions are skipped so the file stays sparse.
	if err := f.Truncate(h.MapSize); err != nil {
		return err
	}

	cw := newChecksumWriter(&sparseWriter{f: f})
	if _, err := io.Copy(cw, &ctxReader{ctx: ctx, r: r}); err != nil {
		return err
	}
	if cw.Written() != h.MapSize {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrSizeMismatch, cw.Written(), h.MapSize)
	}
	if sum := cw.Sum(); sum != h.Checksum {
		return fmt.Errorf("%w: got %08x, want %08x", ErrChecksumMismatch, sum, h.Checksum)
	}

	if err := f.Sync(); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return fsys.Rename(tmp, path)
}

// sparseWriter seeks over all-zero input instead of writing it. The file
// must already be truncated to its final size.
type sparseWriter struct {
	f tcfs.File
}

func (w *sparseWriter) Write(p []byte) (int, error) {
	if allZero(p) {
		if _, err := w.f.Seek(int64(len(p)), io.SeekCurrent); err != nil {
			return 0, err
		}
		return len(p), nil
	}
	return w.f.Write(p)
}

func allZero(p []byte) bool {
	for _, b := range p {
		if b != 0 {
			return false
		}
	}
	return true
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (r *ctxReader) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}
