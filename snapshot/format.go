package snapshot

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"github.com/hupe1980/triplecheck/internal/hash"
)

const (
	// Magic identifies snapshot blobs.
	Magic = "TCBM"
	// Version is the current header version.
	Version uint16 = 1
	// HeaderSize is the size of the encoded Header in bytes.
	HeaderSize = 32
)

var (
	ErrInvalidMagic       = errors.New("snapshot: invalid magic")
	ErrUnsupportedVersion = errors.New("snapshot: unsupported version")
	ErrUnknownCodec       = errors.New("snapshot: unknown codec")
	ErrCorruptHeader      = errors.New("snapshot: header checksum mismatch")
	// ErrChecksumMismatch is returned when restored bitmap bytes do not match
	// the checksum recorded at export.
	ErrChecksumMismatch = errors.New("snapshot: bitmap checksum mismatch")
	// ErrSizeMismatch is returned when the restored bitmap is not exactly
	// the recorded map size.
	ErrSizeMismatch = errors.New("snapshot: bitmap size mismatch")
)

// Codec selects the compression of the bitmap payload.
type Codec uint8

const (
	CodecNone Codec = iota
	CodecZstd
	CodecLZ4
)

func (c Codec) String() string {
	switch c {
	case CodecNone:
		return "none"
	case CodecZstd:
		return "zstd"
	case CodecLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("codec(%d)", uint8(c))
	}
}

// ParseCodec parses a codec name as printed by Codec.String.
func ParseCodec(s string) (Codec, error) {
	switch strings.ToLower(s) {
	case "none", "":
		return CodecNone, nil
	case "zstd":
		return CodecZstd, nil
	case "lz4":
		return CodecLZ4, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownCodec, s)
	}
}

// Header is the fixed-size preamble of a snapshot blob.
//
// Layout (little endian):
//
//	0   magic "TCBM"
//	4   version    uint16
//	6   codec      uint8
//	7   reserved
//	8   map size   uint64
//	16  CRC32C of the raw bitmap
//	20  set bits   uint64
//	28  CRC32C of bytes 0..27
type Header struct {
	Version  uint16
	Codec    Codec
	MapSize  int64
	Checksum uint32
	BitsSet  uint64
}

// MarshalBinary encodes the header into HeaderSize bytes.
func (h Header) MarshalBinary() ([]byte, error) {
	buf := make([]byte, HeaderSize)
	copy(buf[0:4], Magic)
	binary.LittleEndian.PutUint16(buf[4:6], h.Version)
	buf[6] = byte(h.Codec)
	binary.LittleEndian.PutUint64(buf[8:16], uint64(h.MapSize))
	binary.LittleEndian.PutUint32(buf[16:20], h.Checksum)
	binary.LittleEndian.PutUint64(buf[20:28], h.BitsSet)
	binary.LittleEndian.PutUint32(buf[28:32], hash.CRC32C(buf[:28]))
	return buf, nil
}

// UnmarshalBinary decodes and validates a header.
func (h *Header) UnmarshalBinary(data []byte) error {
	if len(data) < HeaderSize {
		return fmt.Errorf("snapshot: short header (%d bytes)", len(data))
	}
	if string(data[0:4]) != Magic {
		return ErrInvalidMagic
	}
	if hash.CRC32C(data[:28]) != binary.LittleEndian.Uint32(data[28:32]) {
		return ErrCorruptHeader
	}

	v := binary.LittleEndian.Uint16(data[4:6])
	if v != Version {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, v)
	}
	c := Codec(data[6])
	if c > CodecLZ4 {
		return fmt.Errorf("%w: %d", ErrUnknownCodec, data[6])
	}
	size := binary.LittleEndian.Uint64(data[8:16])
	if size == 0 || size > 1<<40 {
		return fmt.Errorf("snapshot: implausible map size %d", size)
	}

	*h = Header{
		Version:  v,
		Codec:    c,
		MapSize:  int64(size),
		Checksum: binary.LittleEndian.Uint32(data[16:20]),
		BitsSet:  binary.LittleEndian.Uint64(data[20:28]),
	}
	return nil
}
