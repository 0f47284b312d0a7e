package scan

import (
	"context"
	"errors"
	"iter"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/triplecheck/model"
)

func collect(t *testing.T, seq iter.Seq2[model.Statement, error]) ([]model.Statement, error) {
	t.Helper()
	var out []model.Statement
	for st, err := range seq {
		if err != nil {
			return out, err
		}
		out = append(out, st)
	}
	return out, nil
}

func TestSlice(t *testing.T) {
	s := Slice{
		model.NewStatement(model.NewIRI("a"), model.NewIRI("b"), model.NewLiteral("c")),
		model.NewStatement(model.NewIRI("d"), model.NewIRI("e"), model.NewLiteral("f")),
	}

	got, err := collect(t, s.Statements(context.Background()))
	require.NoError(t, err)
	assert.Equal(t, []model.Statement(s), got)

	n, err := s.StatementCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestSlice_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := Slice{model.NewStatement(model.NewIRI("a"), model.NewIRI("b"), model.NewLiteral("c"))}
	got, err := collect(t, s.Statements(ctx))
	assert.Empty(t, got)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFunc(t *testing.T) {
	boom := errors.New("boom")
	f := Func(func(context.Context) iter.Seq2[model.Statement, error] {
		return func(yield func(model.Statement, error) bool) {
			yield(model.Statement{}, boom)
		}
	})

	_, err := collect(t, f.Statements(context.Background()))
	assert.ErrorIs(t, err, boom)
}
