package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/triplecheck/blobstore"
	"github.com/hupe1980/triplecheck/internal/hash"
	"github.com/hupe1980/triplecheck/internal/resource"
)

// Source is a bitmap that can be exported. *presence.Bitmap implements it.
type Source interface {
	Bytes() []byte
	Count() uint64
}

// Export writes src to store under name: a Header followed by the
// compressed bitmap. The blob is aborted if any stage fails.
func Export(ctx context.Context, src Source, store blobstore.BlobStore, name string, optFns ...Option) (Header, error) {
	o := applyOptions(optFns)
	start := time.Now()

	data := src.Bytes()
	if len(data) == 0 {
		return Header{}, errors.New("snapshot: empty bitmap")
	}

	h := Header{
		Version: Version,
		Codec:   o.codec,
		MapSize: int64(len(data)),
	}

	// Checksum and popcount each walk the whole map; run them side by side.
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		h.Checksum = hash.CRC32C(data)
	}()
	go func() {
		defer wg.Done()
		h.BitsSet = src.Count()
	}()
	wg.Wait()

	hdr, err := h.MarshalBinary()
	if err != nil {
		return Header{}, err
	}

	w, err := store.Create(ctx, name)
	if err != nil {
		return Header{}, fmt.Errorf("snapshot: create %s: %w", name, err)
	}

	pr, pw := io.Pipe()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := encode(gctx, pw, hdr, data, o.codec, o.chunkSize)
		_ = pw.CloseWithError(err)
		return err
	})

	var written int64
	g.Go(func() error {
		n, err := io.Copy(resource.NewRateLimitedWriter(gctx, w, o.throttle), pr)
		written = n
		_ = pr.CloseWithError(err)
		return err
	})

	if err := g.Wait(); err != nil {
		return Header{}, errors.Join(fmt.Errorf("snapshot: export %s: %w", name, err), w.Abort())
	}
	if err := w.Close(); err != nil {
		return Header{}, fmt.Errorf("snapshot: commit %s: %w", name, err)
	}

	o.logger.InfoContext(ctx, "snapshot exported",
		"name", name,
		"codec", o.codec.String(),
		"map_size", h.MapSize,
		"bits_set", h.BitsSet,
		"bytes", written,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return h, nil
}

func encode(ctx context.Context, w io.Writer, hdr, data []byte, c Codec, chunk int) error {
	if _, err := w.Write(hdr); err != nil {
		return err
	}
	enc, err := newEncoder(c, w)
	if err != nil {
		return err
	}
	for off := 0; off < len(data); off += chunk {
		if err := ctx.Err(); err != nil {
			_ = enc.Close()
			return err
		}
		end := min(off+chunk, len(data))
		if _, err := enc.Write(data[off:end]); err != nil {
			_ = enc.Close()
			return err
		}
	}
	return enc.Close()
}
