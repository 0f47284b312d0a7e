package triplecheck

import (
	"errors"
	"fmt"
)

// Kind classifies a fatal failure by the layer it came from.
type Kind int

const (
	// KindUnknown is reported for errors that carry no Kind.
	KindUnknown Kind = iota
	// KindConfig is a malformed or missing source configuration.
	KindConfig
	// KindStoreInit is a store that failed to open or initialize.
	KindStoreInit
	// KindScan is a scanner failure (or cancellation) in the middle of a run.
	KindScan
	// KindBitmap is a bitmap file that could not be created, mapped, written or flushed.
	KindBitmap
	// KindLexicon is a dictionary lookup, write or commit failure.
	KindLexicon
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindStoreInit:
		return "store_init"
	case KindScan:
		return "scan"
	case KindBitmap:
		return "bitmap"
	case KindLexicon:
		return "lexicon"
	default:
		return "unknown"
	}
}

// Error is a fatal failure tagged with its Kind.
//
// The original underlying error can be accessed via errors.Unwrap.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError wraps err with a Kind and operation name. A nil err yields nil.
func NewError(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the Kind of the outermost *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
