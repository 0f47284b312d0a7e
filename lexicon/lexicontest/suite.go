// Package lexicontest provides a behavioural test suite shared by Lexicon
// implementations.
package lexicontest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/triplecheck/lexicon"
	"github.com/hupe1980/triplecheck/model"
)

// Fixture is a Lexicon whose indices a test can seed and corrupt directly.
type Fixture interface {
	lexicon.Lexicon
	AddTerm(t *testing.T, term model.Term) lexicon.ID
	CorruptReverse(t *testing.T, id lexicon.ID, value []byte)
	DropReverse(t *testing.T, id lexicon.ID)
}

// Run executes the suite against fresh fixtures from newFixture.
func Run(t *testing.T, newFixture func(t *testing.T) Fixture) {
	t.Run("Consistent", func(t *testing.T) { testConsistent(t, newFixture(t)) })
	t.Run("NotFound", func(t *testing.T) { testNotFound(t, newFixture(t)) })
	t.Run("MismatchRepair", func(t *testing.T) { testMismatchRepair(t, newFixture(t)) })
	t.Run("ReverseMissingRepair", func(t *testing.T) { testReverseMissingRepair(t, newFixture(t)) })
	t.Run("UndecodableRepair", func(t *testing.T) { testUndecodableRepair(t, newFixture(t)) })
	t.Run("RollbackDiscards", func(t *testing.T) { testRollbackDiscards(t, newFixture(t)) })
	t.Run("TxDone", func(t *testing.T) { testTxDone(t, newFixture(t)) })
}

func check(t *testing.T, lex lexicon.Lexicon, term string) lexicon.Result {
	t.Helper()
	ctx := context.Background()
	tx, err := lex.Begin(ctx)
	require.NoError(t, err)
	res, err := lexicon.Check(ctx, tx, term)
	require.NoError(t, err)
	require.NoError(t, tx.Rollback())
	return res
}

func repair(t *testing.T, lex lexicon.Lexicon, term string, id lexicon.ID) bool {
	t.Helper()
	ctx := context.Background()
	tx, err := lex.Begin(ctx)
	require.NoError(t, err)
	inserted, err := lexicon.Repair(ctx, tx, term, id)
	require.NoError(t, err)
	return inserted
}

func testConsistent(t *testing.T, f Fixture) {
	id := f.AddTerm(t, model.NewLiteral("Douglas Adams"))

	res := check(t, f, "Douglas Adams")
	assert.Equal(t, lexicon.StatusConsistent, res.Status)
	assert.True(t, res.Consistent())
	assert.False(t, res.Repairable())
	assert.Equal(t, id, res.ID)
	assert.Equal(t, "Douglas Adams", res.Decoded.Value)
}

func testNotFound(t *testing.T, f Fixture) {
	f.AddTerm(t, model.NewLiteral("present"))
	// Same value, different kind: a different forward key.
	f.AddTerm(t, model.NewIRI("absent"))

	res := check(t, f, "absent")
	assert.Equal(t, lexicon.StatusNotFound, res.Status)
	assert.False(t, res.Found())
	assert.False(t, res.Repairable())
}

func testMismatchRepair(t *testing.T, f Fixture) {
	id := f.AddTerm(t, model.NewLiteral("München"))
	f.CorruptReverse(t, id, lexicon.SerializeTerm(model.NewLiteral("München\x00")))

	res := check(t, f, "München")
	assert.Equal(t, lexicon.StatusMismatch, res.Status)
	assert.False(t, res.Consistent())
	assert.True(t, res.Repairable())
	assert.Equal(t, id, res.ID)

	assert.True(t, repair(t, f, "München", res.ID))

	after := check(t, f, "München")
	assert.Equal(t, lexicon.StatusConsistent, after.Status)
	assert.Equal(t, id, after.ID)
}

func testReverseMissingRepair(t *testing.T, f Fixture) {
	id := f.AddTerm(t, model.NewLiteral("orphan"))
	f.DropReverse(t, id)

	res := check(t, f, "orphan")
	assert.Equal(t, lexicon.StatusReverseMissing, res.Status)
	assert.True(t, res.Repairable())

	assert.True(t, repair(t, f, "orphan", id))
	assert.True(t, check(t, f, "orphan").Consistent())
}

func testUndecodableRepair(t *testing.T, f Fixture) {
	id := f.AddTerm(t, model.NewLiteral("garbled"))
	f.CorruptReverse(t, id, []byte{0xDE, 0xAD})

	res := check(t, f, "garbled")
	assert.Equal(t, lexicon.StatusUndecodable, res.Status)
	assert.ErrorIs(t, res.DecodeErr, lexicon.ErrCorruptTerm)
	assert.Equal(t, []byte{0xDE, 0xAD}, res.Reverse)

	assert.True(t, repair(t, f, "garbled", id))
	assert.True(t, check(t, f, "garbled").Consistent())
}

func testRollbackDiscards(t *testing.T, f Fixture) {
	ctx := context.Background()
	id := f.AddTerm(t, model.NewLiteral("kept"))

	tx, err := f.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.Remove(ctx, lexicon.EncodeIDKey(id)))
	_, found, err := tx.ReverseLookup(ctx, lexicon.EncodeIDKey(id))
	require.NoError(t, err)
	assert.False(t, found)
	require.NoError(t, tx.Rollback())

	assert.True(t, check(t, f, "kept").Consistent())
}

func testTxDone(t *testing.T, f Fixture) {
	ctx := context.Background()
	tx, err := f.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	assert.ErrorIs(t, tx.Commit(), lexicon.ErrTxDone)
	assert.ErrorIs(t, tx.Rollback(), lexicon.ErrTxDone)
	_, _, err = tx.ForwardLookup(ctx, []byte("k"))
	assert.ErrorIs(t, err, lexicon.ErrTxDone)
}
