package lexicon

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/hupe1980/triplecheck/model"
)

// ID is the compact internal identifier of a term.
type ID uint64

func (id ID) String() string {
	return fmt.Sprintf("TermId(%d)", uint64(id))
}

const (
	idTag       byte = 0x10
	idBytes          = 1 + 8
	termVersion byte = 1

	langMarker     byte = '@'
	datatypeMarker byte = '^'
)

var (
	// ErrCorruptID is returned when forward index bytes do not decode to an ID.
	ErrCorruptID = errors.New("lexicon: corrupt term id")
	// ErrCorruptTerm is returned when reverse index bytes do not decode to a term.
	ErrCorruptTerm = errors.New("lexicon: corrupt serialized term")
)

// EncodeTermKey returns the forward index key for a term.
//
// Layout: kind byte, value bytes, then an optional 0x00 '@' lang or
// 0x00 '^' datatype suffix for literals.
func EncodeTermKey(t model.Term) []byte {
	key := make([]byte, 0, 1+len(t.Value)+2+len(t.Lang)+len(t.Datatype))
	key = append(key, byte(t.Kind))
	key = append(key, t.Value...)
	switch {
	case t.Lang != "":
		key = append(key, 0, langMarker)
		key = append(key, t.Lang...)
	case t.Datatype != "":
		key = append(key, 0, datatypeMarker)
		key = append(key, t.Datatype...)
	}
	return key
}

// EncodeID returns the forward index value for an ID.
func EncodeID(id ID) []byte {
	b := make([]byte, idBytes)
	b[0] = idTag
	binary.BigEndian.PutUint64(b[1:], uint64(id))
	return b
}

// DecodeID decodes a forward index value.
func DecodeID(b []byte) (ID, error) {
	if len(b) != idBytes || b[0] != idTag {
		return 0, fmt.Errorf("%w: % x", ErrCorruptID, b)
	}
	return ID(binary.BigEndian.Uint64(b[1:])), nil
}

// EncodeIDKey returns the reverse index key for an ID. Keys sort by ID.
func EncodeIDKey(id ID) []byte {
	return EncodeID(id)
}

// SerializeTerm returns the reverse index value for a term.
//
// Layout: version, kind, then uvarint-length-prefixed value, lang and datatype.
func SerializeTerm(t model.Term) []byte {
	b := make([]byte, 0, 2+3*binary.MaxVarintLen64+len(t.Value)+len(t.Lang)+len(t.Datatype))
	b = append(b, termVersion, byte(t.Kind))
	for _, s := range [...]string{t.Value, t.Lang, t.Datatype} {
		b = binary.AppendUvarint(b, uint64(len(s)))
		b = append(b, s...)
	}
	return b
}

// DeserializeTerm decodes a reverse index value.
func DeserializeTerm(b []byte) (model.Term, error) {
	if len(b) < 2 {
		return model.Term{}, fmt.Errorf("%w: %d bytes", ErrCorruptTerm, len(b))
	}
	if b[0] != termVersion {
		return model.Term{}, fmt.Errorf("%w: version %d", ErrCorruptTerm, b[0])
	}
	kind := model.TermKind(b[1])
	if !kind.Valid() {
		return model.Term{}, fmt.Errorf("%w: kind %d", ErrCorruptTerm, b[1])
	}

	rest := b[2:]
	var fields [3]string
	for i := range fields {
		n, w := binary.Uvarint(rest)
		if w <= 0 || n > uint64(len(rest)-w) {
			return model.Term{}, fmt.Errorf("%w: truncated field %d", ErrCorruptTerm, i)
		}
		rest = rest[w:]
		fields[i] = string(rest[:n])
		rest = rest[n:]
	}
	if len(rest) != 0 {
		return model.Term{}, fmt.Errorf("%w: %d trailing bytes", ErrCorruptTerm, len(rest))
	}

	return model.Term{Kind: kind, Value: fields[0], Lang: fields[1], Datatype: fields[2]}, nil
}
