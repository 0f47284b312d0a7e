package fingerprint

import (
	"crypto/md5"
	"encoding/binary"
	"encoding/hex"
	"errors"

	"github.com/hupe1980/triplecheck/model"
)

// Size is the digest length in bytes.
const Size = md5.Size

// bitByte is the digest byte that selects the bit within the addressed byte.
const bitByte = 10

// ErrInvalidMapSize is returned when an address is requested for a
// non-positive map size.
var ErrInvalidMapSize = errors.New("fingerprint: map size must be positive")

// Digest is the MD5 fingerprint of a statement.
type Digest [Size]byte

// String returns the hex encoding of the digest.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// Sum computes the digest of a statement. A fresh hash state is used on
// every call, so Sum is safe for concurrent use.
func Sum(st model.Statement) Digest {
	return SumValues(st.Subject.StringValue(), st.Predicate.StringValue(), st.Object.StringValue())
}

// SumValues computes the digest of three canonical string values.
func SumValues(subject, predicate, object string) Digest {
	h := md5.New()
	_, _ = h.Write([]byte(subject))
	_, _ = h.Write([]byte(predicate))
	_, _ = h.Write([]byte(object))

	var d Digest
	h.Sum(d[:0])
	return d
}

// Address locates one bit in a presence bitmap.
type Address struct {
	ByteOffset int64
	BitOffset  uint8
}

// Mask returns the single-bit mask for the address within its byte.
func (a Address) Mask() byte {
	return 1 << (a.BitOffset & 7)
}

// AddressOf maps a digest to an address inside a bitmap of mapSize bytes.
func AddressOf(d Digest, mapSize int64) (Address, error) {
	if mapSize <= 0 {
		return Address{}, ErrInvalidMapSize
	}

	v := int64(int32(binary.BigEndian.Uint32(d[0:4])))
	if v < 0 {
		v = -v
	}

	return Address{
		ByteOffset: v % mapSize,
		BitOffset:  d[bitByte] & 7,
	}, nil
}
