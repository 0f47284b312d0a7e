package snapshot

import (
	"hash"
	"io"

	tchash "github.com/hupe1980/triplecheck/internal/hash"
)

// checksumWriter wraps an io.Writer and computes a running CRC32C over the
// bytes written. It also counts them.
type checksumWriter struct {
	w    io.Writer
	hash hash.Hash32
	n    int64
}

func newChecksumWriter(w io.Writer) *checksumWriter {
	return &checksumWriter{w: w, hash: tchash.NewCRC32C()}
}

func (cw *checksumWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	_, _ = cw.hash.Write(p[:n])
	cw.n += int64(n)
	return n, err
}

func (cw *checksumWriter) Sum() uint32 { return cw.hash.Sum32() }

// Written returns the number of bytes passed through.
func (cw *checksumWriter) Written() int64 { return cw.n }
