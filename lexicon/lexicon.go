package lexicon

import (
	"context"
	"errors"
)

// ErrTxDone is returned by operations on a committed or rolled back Tx.
var ErrTxDone = errors.New("lexicon: transaction already finished")

// Lexicon is the store's bidirectional term dictionary.
type Lexicon interface {
	// Begin opens an unisolated read-write transaction.
	Begin(ctx context.Context) (Tx, error)
}

// Tx is a transaction over both dictionary indices.
//
// Lookups return found=false with a nil error for absent keys. Remove and
// InsertIfAbsent operate on the reverse index only.
type Tx interface {
	ForwardLookup(ctx context.Context, key []byte) (value []byte, found bool, err error)
	ReverseLookup(ctx context.Context, key []byte) (value []byte, found bool, err error)
	Remove(ctx context.Context, key []byte) error
	InsertIfAbsent(ctx context.Context, key, value []byte) (inserted bool, err error)
	Commit() error
	Rollback() error
}
