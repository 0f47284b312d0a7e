package ntriples

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/hupe1980/triplecheck/model"
)

// Encoder writes statements as N-Triples lines.
type Encoder struct {
	w *bufio.Writer
}

// NewEncoder returns an encoder writing to w. Call Flush when done.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: bufio.NewWriter(w)}
}

// Encode writes one statement.
func (e *Encoder) Encode(st model.Statement) error {
	if _, err := e.w.WriteString(st.String()); err != nil {
		return err
	}
	return e.w.WriteByte('\n')
}

// Flush writes buffered lines to the underlying writer.
func (e *Encoder) Flush() error {
	return e.w.Flush()
}

// WriteFile writes statements to path, compressing by the file's extension.
func WriteFile(path string, stmts []model.Statement) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("ntriples: %w", err)
	}
	defer func() {
		if cerr := file.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("ntriples: %w", cerr)
		}
	}()

	w, err := compress(file, CompressionFor(path))
	if err != nil {
		return fmt.Errorf("ntriples: %s: %w", path, err)
	}

	enc := NewEncoder(w)
	for _, st := range stmts {
		if err := enc.Encode(st); err != nil {
			return fmt.Errorf("ntriples: %s: %w", path, err)
		}
	}
	if err := enc.Flush(); err != nil {
		return fmt.Errorf("ntriples: %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("ntriples: %s: %w", path, err)
	}
	return file.Sync()
}

func compress(w io.Writer, c Compression) (io.WriteCloser, error) {
	switch c {
	case CompressionGzip:
		return gzip.NewWriter(w), nil
	case CompressionZstd:
		return zstd.NewWriter(w)
	case CompressionLZ4:
		return lz4.NewWriter(w), nil
	default:
		return nopWriteCloser{w}, nil
	}
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
