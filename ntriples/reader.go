package ntriples

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/hupe1980/triplecheck/model"
	"github.com/hupe1980/triplecheck/scan"
)

// Compression identifies the container around a dump.
type Compression int

const (
	CompressionNone Compression = iota
	CompressionGzip
	CompressionZstd
	CompressionLZ4
)

func (c Compression) String() string {
	switch c {
	case CompressionGzip:
		return "gzip"
	case CompressionZstd:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	default:
		return "none"
	}
}

// CompressionFor derives the compression from a file name's extension.
func CompressionFor(path string) Compression {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		return CompressionGzip
	case ".zst", ".zstd":
		return CompressionZstd
	case ".lz4":
		return CompressionLZ4
	default:
		return CompressionNone
	}
}

// maxLineSize bounds a single statement line.
const maxLineSize = 16 << 20

// Decoder parses statements from a stream.
type Decoder struct {
	sc   *bufio.Scanner
	line int
}

// NewDecoder returns a decoder reading uncompressed N-Triples from r.
func NewDecoder(r io.Reader) *Decoder {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &Decoder{sc: sc}
}

// Decode returns the next statement, or io.EOF at the end of the stream.
// Syntax errors are *SyntaxError values carrying the line number.
func (d *Decoder) Decode() (model.Statement, error) {
	for d.sc.Scan() {
		d.line++
		st, ok, err := ParseLine(d.sc.Text())
		if err != nil {
			var se *SyntaxError
			if errors.As(err, &se) {
				se.Line = d.line
			}
			return model.Statement{}, err
		}
		if ok {
			return st, nil
		}
	}
	if err := d.sc.Err(); err != nil {
		return model.Statement{}, fmt.Errorf("ntriples: read line %d: %w", d.line+1, err)
	}
	return model.Statement{}, io.EOF
}

// Line returns the number of lines consumed so far.
func (d *Decoder) Line() int {
	return d.line
}

// File is an N-Triples dump on disk.
type File struct {
	path        string
	compression Compression
}

var _ scan.Scanner = (*File)(nil)

// Open checks that path is a readable regular file and returns a scanner
// over it.
func Open(path string) (*File, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("ntriples: %w", err)
	}
	if !fi.Mode().IsRegular() {
		return nil, fmt.Errorf("ntriples: %s is not a regular file", path)
	}
	return &File{path: path, compression: CompressionFor(path)}, nil
}

// Path returns the dump's path.
func (f *File) Path() string { return f.path }

// Compression returns the compression detected from the file name.
func (f *File) Compression() Compression { return f.compression }

// Statements implements scan.Scanner.
func (f *File) Statements(ctx context.Context) iter.Seq2[model.Statement, error] {
	return func(yield func(model.Statement, error) bool) {
		rc, err := f.open()
		if err != nil {
			yield(model.Statement{}, err)
			return
		}
		defer rc.Close()

		dec := NewDecoder(rc)
		for {
			if err := ctx.Err(); err != nil {
				yield(model.Statement{}, err)
				return
			}
			st, err := dec.Decode()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(model.Statement{}, fmt.Errorf("%s: %w", f.path, err))
				return
			}
			if !yield(st, nil) {
				return
			}
		}
	}
}

func (f *File) open() (io.ReadCloser, error) {
	file, err := os.Open(f.path)
	if err != nil {
		return nil, fmt.Errorf("ntriples: %w", err)
	}

	r, err := decompress(bufio.NewReaderSize(file, 1<<20), f.compression)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("ntriples: %s: %w", f.path, err)
	}
	return &readCloser{Reader: r, closers: []func() error{r.Close, file.Close}}, nil
}

type decompressor interface {
	io.Reader
	Close() error
}

func decompress(r io.Reader, c Compression) (decompressor, error) {
	switch c {
	case CompressionGzip:
		return gzip.NewReader(r)
	case CompressionZstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return zstdReader{zr}, nil
	case CompressionLZ4:
		return nopCloser{lz4.NewReader(r)}, nil
	default:
		return nopCloser{r}, nil
	}
}

type zstdReader struct{ *zstd.Decoder }

func (z zstdReader) Close() error {
	z.Decoder.Close()
	return nil
}

type nopCloser struct{ io.Reader }

func (nopCloser) Close() error { return nil }

type readCloser struct {
	io.Reader
	closers []func() error
}

func (rc *readCloser) Close() error {
	var errs []error
	for _, c := range rc.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}
