package presence

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"math/bits"
	"os"

	"github.com/hupe1980/triplecheck/fingerprint"
	"github.com/hupe1980/triplecheck/internal/mmap"
	"github.com/hupe1980/triplecheck/model"
)

// MapSize is the default bitmap length in bytes (2^31-1, about 2^34 bits).
const MapSize int64 = math.MaxInt32

var (
	// ErrOutOfRange is returned for addresses outside [0, size).
	ErrOutOfRange = errors.New("presence: address out of range")
	// ErrSizeMismatch is returned when a check-mode file is not exactly the map size.
	ErrSizeMismatch = errors.New("presence: bitmap file size mismatch")
	// ErrReadOnly is returned when marking a bitmap opened in check mode.
	ErrReadOnly = errors.New("presence: bitmap is read-only")
	// ErrClosed is returned when using a closed bitmap.
	ErrClosed = errors.New("presence: bitmap is closed")
)

// Mode selects how a bitmap file is opened.
type Mode int

const (
	// ModeBuild creates or resizes the file and maps it read-write.
	ModeBuild Mode = iota
	// ModeCheck maps an existing file read-only.
	ModeCheck
)

func (m Mode) String() string {
	switch m {
	case ModeBuild:
		return "build"
	case ModeCheck:
		return "check"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

type options struct {
	mapSize int64
}

// Option configures Open.
type Option func(*options)

// WithMapSize overrides the bitmap length in bytes. Build and check runs over
// the same file must use the same size.
func WithMapSize(size int64) Option {
	return func(o *options) {
		o.mapSize = size
	}
}

// Bitmap is a memory-mapped presence bitmap.
type Bitmap struct {
	path string
	mode Mode
	size int64
	m    *mmap.Mapping
	data []byte
}

// Open maps the bitmap file at path.
func Open(path string, mode Mode, optFns ...Option) (*Bitmap, error) {
	o := options{mapSize: MapSize}
	for _, fn := range optFns {
		fn(&o)
	}
	if o.mapSize <= 0 {
		return nil, fmt.Errorf("presence: invalid map size %d: %w", o.mapSize, mmap.ErrInvalidSize)
	}

	var (
		m   *mmap.Mapping
		err error
	)
	switch mode {
	case ModeBuild:
		m, err = openBuild(path, o.mapSize)
	case ModeCheck:
		m, err = openCheck(path, o.mapSize)
	default:
		return nil, fmt.Errorf("presence: unknown mode %v", mode)
	}
	if err != nil {
		return nil, err
	}

	if mode == ModeBuild {
		// Statement digests scatter uniformly over the file.
		_ = m.Advise(mmap.AccessRandom)
	}

	return &Bitmap{
		path: path,
		mode: mode,
		size: o.mapSize,
		m:    m,
		data: m.Bytes(),
	}, nil
}

func openBuild(path string, size int64) (*mmap.Mapping, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("presence: open %s: %w", path, err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("presence: stat %s: %w", path, err)
	}
	if fi.Size() != size {
		// Extending leaves a sparse, zero-filled tail; existing bits are kept.
		if err := f.Truncate(size); err != nil {
			return nil, fmt.Errorf("presence: resize %s to %d bytes: %w", path, size, err)
		}
	}

	m, err := mmap.Map(f, size, true)
	if err != nil {
		return nil, fmt.Errorf("presence: map %s: %w", path, err)
	}
	return m, nil
}

func openCheck(path string, size int64) (*mmap.Mapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("presence: open %s: %w", path, err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("presence: stat %s: %w", path, err)
	}
	if fi.Size() != size {
		return nil, fmt.Errorf("%w: %s is %d bytes, want %d", ErrSizeMismatch, path, fi.Size(), size)
	}

	m, err := mmap.Map(f, size, false)
	if err != nil {
		return nil, fmt.Errorf("presence: map %s: %w", path, err)
	}
	return m, nil
}

// Path returns the backing file path.
func (b *Bitmap) Path() string { return b.path }

// Mode returns the mode the bitmap was opened in.
func (b *Bitmap) Mode() Mode { return b.mode }

// Size returns the bitmap length in bytes.
func (b *Bitmap) Size() int64 { return b.size }

// Address maps a statement to its bit in this bitmap.
func (b *Bitmap) Address(st model.Statement) (fingerprint.Address, error) {
	return fingerprint.AddressOf(fingerprint.Sum(st), b.size)
}

func (b *Bitmap) check(addr fingerprint.Address) error {
	if b.data == nil {
		return ErrClosed
	}
	if addr.ByteOffset < 0 || addr.ByteOffset >= b.size || addr.BitOffset > 7 {
		return fmt.Errorf("%w: byte %d bit %d (size %d)", ErrOutOfRange, addr.ByteOffset, addr.BitOffset, b.size)
	}
	return nil
}

// Mark sets the bit at addr. Marking an already set bit is a no-op.
func (b *Bitmap) Mark(addr fingerprint.Address) error {
	if b.mode != ModeBuild {
		return ErrReadOnly
	}
	if err := b.check(addr); err != nil {
		return err
	}
	b.data[addr.ByteOffset] |= addr.Mask()
	return nil
}

// Test reports whether the bit at addr is set.
func (b *Bitmap) Test(addr fingerprint.Address) (bool, error) {
	if err := b.check(addr); err != nil {
		return false, err
	}
	return b.data[addr.ByteOffset]&addr.Mask() != 0, nil
}

// Count returns the number of set bits.
func (b *Bitmap) Count() uint64 {
	data := b.data
	var n uint64
	for len(data) >= 8 {
		n += uint64(bits.OnesCount64(binary.LittleEndian.Uint64(data)))
		data = data[8:]
	}
	for _, c := range data {
		n += uint64(bits.OnesCount8(c))
	}
	return n
}

// Bytes returns the mapped bitmap. The slice must be treated as read-only
// and is valid until Close.
func (b *Bitmap) Bytes() []byte {
	return b.data
}

// Flush forces pending writes to durable storage. It is a no-op in check mode.
func (b *Bitmap) Flush() error {
	if b.data == nil {
		return ErrClosed
	}
	if b.mode != ModeBuild {
		return nil
	}
	if err := b.m.Sync(); err != nil {
		return fmt.Errorf("presence: flush %s: %w", b.path, err)
	}
	return nil
}

// Close flushes a build-mode bitmap and unmaps the file. It is idempotent.
func (b *Bitmap) Close() error {
	if b.data == nil {
		return nil
	}
	var flushErr error
	if b.mode == ModeBuild {
		flushErr = b.Flush()
	}
	b.data = nil
	return errors.Join(flushErr, b.m.Close())
}
