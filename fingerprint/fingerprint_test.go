package fingerprint

import (
	"crypto/md5"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/triplecheck/model"
)

func statement(s, p, o string) model.Statement {
	return model.NewStatement(model.NewIRI(s), model.NewIRI(p), model.NewLiteral(o))
}

func TestSum_Deterministic(t *testing.T) {
	st := statement("http://www.wikidata.org/entity/Q42", "http://schema.org/name", "Douglas Adams")

	assert.Equal(t, Sum(st), Sum(st))
	assert.NotEqual(t, Sum(st), Sum(statement("http://www.wikidata.org/entity/Q42", "http://schema.org/name", "Douglas")))
}

func TestSum_MatchesMD5OfConcatenation(t *testing.T) {
	st := statement("s", "p", "o")
	want := md5.Sum([]byte("spo"))

	assert.Equal(t, Digest(want), Sum(st))
}

func TestSum_IgnoresLiteralTags(t *testing.T) {
	plain := model.NewStatement(model.NewIRI("s"), model.NewIRI("p"), model.NewLiteral("chat"))
	tagged := model.NewStatement(model.NewIRI("s"), model.NewIRI("p"), model.NewLangLiteral("chat", "fr"))

	assert.Equal(t, Sum(plain), Sum(tagged))
}

func TestSum_FieldBoundaryCollision(t *testing.T) {
	// Undelimited concatenation: shifting the field boundary keeps the digest.
	assert.Equal(t, Sum(statement("ab", "c", "d")), Sum(statement("a", "bc", "d")))
}

func digestWith(prefix [4]byte, b10 byte) Digest {
	var d Digest
	copy(d[:4], prefix[:])
	d[bitByte] = b10
	return d
}

func TestAddressOf_Concrete(t *testing.T) {
	d := digestWith([4]byte{0, 0, 0, 5}, 0b1111_0011)

	addr, err := AddressOf(d, math.MaxInt32)
	require.NoError(t, err)
	assert.Equal(t, Address{ByteOffset: 5, BitOffset: 3}, addr)
	assert.Equal(t, byte(0b1000), addr.Mask())
}

func TestAddressOf_NegativeIsNegated(t *testing.T) {
	// -5 in two's complement.
	d := digestWith([4]byte{0xFF, 0xFF, 0xFF, 0xFB}, 0)

	addr, err := AddressOf(d, math.MaxInt32)
	require.NoError(t, err)
	assert.Equal(t, int64(5), addr.ByteOffset)
}

func TestAddressOf_Boundaries(t *testing.T) {
	tests := []struct {
		name   string
		prefix [4]byte
		want   int64
	}{
		{"max int32", [4]byte{0x7F, 0xFF, 0xFF, 0xFF}, 0},
		{"min int32", [4]byte{0x80, 0x00, 0x00, 0x00}, 1},
		{"min int32 plus one", [4]byte{0x80, 0x00, 0x00, 0x01}, 0},
		{"max int32 minus one", [4]byte{0x7F, 0xFF, 0xFF, 0xFE}, math.MaxInt32 - 1},
		{"zero", [4]byte{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr, err := AddressOf(digestWith(tt.prefix, 0), math.MaxInt32)
			require.NoError(t, err)
			assert.Equal(t, tt.want, addr.ByteOffset)
		})
	}
}

func TestAddressOf_AlwaysInRange(t *testing.T) {
	for _, size := range []int64{1, 7, 4096, math.MaxInt32} {
		for i := 0; i < 2000; i++ {
			d := SumValues("s", "p", string(rune('a'+i%26))+string(rune(i)))
			addr, err := AddressOf(d, size)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, addr.ByteOffset, int64(0))
			assert.Less(t, addr.ByteOffset, size)
			assert.LessOrEqual(t, addr.BitOffset, uint8(7))
		}
	}
}

func TestAddressOf_InvalidMapSize(t *testing.T) {
	_, err := AddressOf(Digest{}, 0)
	assert.ErrorIs(t, err, ErrInvalidMapSize)
}

func TestDigest_String(t *testing.T) {
	d := SumValues("", "", "")
	assert.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", d.String())
}
