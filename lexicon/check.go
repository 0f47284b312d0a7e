package lexicon

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/triplecheck/model"
)

// Status classifies the outcome of a consistency check.
type Status int

const (
	// StatusNotFound means the term has no forward entry.
	StatusNotFound Status = iota
	// StatusConsistent means the reverse entry decodes to the same string value.
	StatusConsistent
	// StatusMismatch means the reverse entry decodes to a different value.
	StatusMismatch
	// StatusReverseMissing means the forward entry points at an ID with no reverse entry.
	StatusReverseMissing
	// StatusUndecodable means the reverse entry exists but is not a valid serialized term.
	StatusUndecodable
)

func (s Status) String() string {
	switch s {
	case StatusNotFound:
		return "not_found"
	case StatusConsistent:
		return "consistent"
	case StatusMismatch:
		return "mismatch"
	case StatusReverseMissing:
		return "reverse_missing"
	case StatusUndecodable:
		return "undecodable"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Result is the outcome of checking one term.
type Result struct {
	Term       model.Term
	Status     Status
	ForwardKey []byte
	ID         ID
	ReverseKey []byte
	Reverse    []byte
	Decoded    model.Term
	// DecodeErr is set for StatusUndecodable.
	DecodeErr error
}

// Found reports whether the term has a forward entry.
func (r Result) Found() bool {
	return r.Status != StatusNotFound
}

// Consistent reports whether the round trip returned the original string value.
func (r Result) Consistent() bool {
	return r.Status == StatusConsistent
}

// Repairable reports whether Repair applies: the term is known but its
// reverse entry is wrong, absent or unreadable.
func (r Result) Repairable() bool {
	return r.Found() && !r.Consistent()
}

// Check verifies the dictionary round trip for a plain literal.
func Check(ctx context.Context, tx Tx, term string) (Result, error) {
	return CheckTerm(ctx, tx, model.NewLiteral(term))
}

// CheckTerm verifies that the reverse entry for the term's ID decodes to the
// term's string value. Values are compared byte for byte.
func CheckTerm(ctx context.Context, tx Tx, term model.Term) (Result, error) {
	res := Result{Term: term, ForwardKey: EncodeTermKey(term)}

	idBytes, found, err := tx.ForwardLookup(ctx, res.ForwardKey)
	if err != nil {
		return res, fmt.Errorf("lexicon: forward lookup: %w", err)
	}
	if !found {
		res.Status = StatusNotFound
		return res, nil
	}

	id, err := DecodeID(idBytes)
	if err != nil {
		return res, err
	}
	res.ID = id
	res.ReverseKey = EncodeIDKey(id)

	reverse, found, err := tx.ReverseLookup(ctx, res.ReverseKey)
	if err != nil {
		return res, fmt.Errorf("lexicon: reverse lookup %s: %w", id, err)
	}
	if !found {
		res.Status = StatusReverseMissing
		return res, nil
	}
	res.Reverse = reverse

	decoded, err := DeserializeTerm(reverse)
	if err != nil {
		if errors.Is(err, ErrCorruptTerm) {
			res.Status = StatusUndecodable
			res.DecodeErr = err
			return res, nil
		}
		return res, err
	}
	res.Decoded = decoded

	if decoded.StringValue() == term.StringValue() {
		res.Status = StatusConsistent
	} else {
		res.Status = StatusMismatch
	}
	return res, nil
}
