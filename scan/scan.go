// Package scan defines the dataset scanner consumed by build and verify runs.
package scan

import (
	"context"
	"iter"

	"github.com/hupe1980/triplecheck/model"
)

// Scanner yields every statement of a dataset exactly once.
//
// The sequence is single-pass and its order is whatever the source's natural
// order is. A non-nil error ends the sequence; implementations must not yield
// further statements after an error.
type Scanner interface {
	Statements(ctx context.Context) iter.Seq2[model.Statement, error]
}

// Counter is implemented by scanners that can report the dataset size up front.
type Counter interface {
	StatementCount(ctx context.Context) (int64, error)
}

// Slice is an in-memory Scanner over a fixed list of statements.
type Slice []model.Statement

// Statements implements Scanner.
func (s Slice) Statements(ctx context.Context) iter.Seq2[model.Statement, error] {
	return func(yield func(model.Statement, error) bool) {
		for _, st := range s {
			if err := ctx.Err(); err != nil {
				yield(model.Statement{}, err)
				return
			}
			if !yield(st, nil) {
				return
			}
		}
	}
}

// StatementCount implements Counter.
func (s Slice) StatementCount(context.Context) (int64, error) {
	return int64(len(s)), nil
}

// Func adapts a sequence constructor to a Scanner.
type Func func(ctx context.Context) iter.Seq2[model.Statement, error]

// Statements implements Scanner.
func (f Func) Statements(ctx context.Context) iter.Seq2[model.Statement, error] {
	return f(ctx)
}
