package snapshot

import (
	"github.com/hupe1980/triplecheck"
	tcfs "github.com/hupe1980/triplecheck/internal/fs"
	"github.com/hupe1980/triplecheck/internal/resource"
)

// DefaultChunkSize is the number of bitmap bytes handed to the compressor
// per write.
const DefaultChunkSize = 4 << 20

type options struct {
	codec     Codec
	chunkSize int
	throttle  *resource.Controller
	fs        tcfs.FileSystem
	logger    *triplecheck.Logger
}

func applyOptions(optFns []Option) options {
	o := options{
		codec:     CodecZstd,
		chunkSize: DefaultChunkSize,
		fs:        tcfs.Default,
		logger:    triplecheck.NoopLogger(),
	}
	for _, fn := range optFns {
		fn(&o)
	}
	return o
}

// Option configures Export and Restore.
type Option func(*options)

// WithCodec selects the payload compression for Export. Default: zstd.
func WithCodec(c Codec) Option {
	return func(o *options) { o.codec = c }
}

// WithChunkSize sets the compressor write size.
func WithChunkSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.chunkSize = n
		}
	}
}

// WithIORateLimit caps blob traffic at bytesPerSec. Zero removes the cap.
func WithIORateLimit(bytesPerSec int64) Option {
	return func(o *options) {
		if bytesPerSec <= 0 {
			o.throttle = nil
			return
		}
		o.throttle = resource.NewController(resource.Config{IOLimitBytesPerSec: bytesPerSec})
	}
}

// WithFileSystem sets the file system Restore writes through.
func WithFileSystem(fsys tcfs.FileSystem) Option {
	return func(o *options) {
		if fsys != nil {
			o.fs = fsys
		}
	}
}

// WithLogger sets the logger. If nil is passed, NoopLogger is used.
func WithLogger(l *triplecheck.Logger) Option {
	return func(o *options) {
		if l == nil {
			l = triplecheck.NoopLogger()
		}
		o.logger = l
	}
}
