package triplecheck

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/triplecheck/lexicon"
	"github.com/hupe1980/triplecheck/model"
)

func corruptedLexicon() *lexicon.MemoryLexicon {
	lex := lexicon.NewMemoryLexicon()
	lex.Add(model.NewLiteral("alice"))
	bob := lex.Add(model.NewLiteral("bob"))
	carol := lex.Add(model.NewLiteral("carol"))
	dave := lex.Add(model.NewLiteral("dave"))

	lex.SetReverse(bob, lexicon.SerializeTerm(model.NewLiteral("mallory")))
	lex.DeleteReverse(carol)
	lex.SetReverse(dave, []byte{0xff, 0x00})
	return lex
}

var allTerms = []string{"alice", "bob", "carol", "dave", "nobody"}

func TestCheckTermsReportOnly(t *testing.T) {
	lex := corruptedLexicon()
	mc := &BasicMetricsCollector{}
	var logs bytes.Buffer

	rep, err := CheckTerms(context.Background(), lex, allTerms, false,
		WithLogger(bufferLogger(&logs)),
		WithMetricsCollector(mc),
	)
	require.NoError(t, err)

	assert.Equal(t, 5, rep.Checked)
	assert.Equal(t, 1, rep.Consistent)
	assert.Equal(t, 1, rep.NotFound)
	assert.Equal(t, 3, rep.Bad)
	assert.Zero(t, rep.Repaired)
	assert.Zero(t, lex.Commits())
	require.Len(t, rep.Results, 5)

	statuses := make([]lexicon.Status, 0, len(rep.Results))
	for _, res := range rep.Results {
		statuses = append(statuses, res.Status)
	}
	assert.Equal(t, []lexicon.Status{
		lexicon.StatusConsistent,
		lexicon.StatusMismatch,
		lexicon.StatusReverseMissing,
		lexicon.StatusUndecodable,
		lexicon.StatusNotFound,
	}, statuses)

	out := logs.String()
	assert.Equal(t, 3, strings.Count(out, `msg="bad term"`))
	assert.Contains(t, out, "reverse_value=mallory")
	assert.Contains(t, out, `msg="term not found"`)
	assert.NotContains(t, out, "fixed, please re-check")

	stats := mc.GetStats()
	assert.Equal(t, int64(5), stats.TermsChecked)
	assert.Equal(t, int64(3), stats.TermsBad)
	assert.Equal(t, int64(1), stats.TermsNotFound)
	assert.Zero(t, stats.Repairs)
}

func TestCheckTermsFixThenRecheck(t *testing.T) {
	ctx := context.Background()
	lex := corruptedLexicon()
	var logs bytes.Buffer

	rep, err := CheckTerms(ctx, lex, allTerms, true, WithLogger(bufferLogger(&logs)))
	require.NoError(t, err)
	assert.Equal(t, 3, rep.Bad)
	assert.Equal(t, 3, rep.Repaired)
	assert.Equal(t, 3, lex.Commits())
	assert.Equal(t, 3, strings.Count(logs.String(), "fixed, please re-check"))

	again, err := CheckTerms(ctx, lex, allTerms, false, WithLogger(NoopLogger()))
	require.NoError(t, err)
	assert.Equal(t, 4, again.Consistent)
	assert.Equal(t, 1, again.NotFound)
	assert.Zero(t, again.Bad)
	assert.Equal(t, 3, lex.Commits())
}

func TestCheckTermsConsistentNeedsNoFix(t *testing.T) {
	lex := lexicon.NewMemoryLexicon()
	lex.Add(model.NewLiteral("alice"))

	rep, err := CheckTerms(context.Background(), lex, []string{"alice"}, true, WithLogger(NoopLogger()))
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Consistent)
	assert.Zero(t, rep.Repaired)
	assert.Zero(t, lex.Commits())
}

func TestCheckTermsCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := CheckTerms(ctx, lexicon.NewMemoryLexicon(), []string{"alice"}, false, WithLogger(NoopLogger()))
	require.Error(t, err)
	assert.Equal(t, KindLexicon, KindOf(err))
	assert.ErrorIs(t, err, context.Canceled)
}

// corruptForwardLexicon answers every forward lookup with bytes that are not an ID.
type corruptForwardLexicon struct{ rollbacks int }

func (l *corruptForwardLexicon) Begin(context.Context) (lexicon.Tx, error) {
	return &corruptForwardTx{l: l}, nil
}

type corruptForwardTx struct{ l *corruptForwardLexicon }

func (tx *corruptForwardTx) ForwardLookup(context.Context, []byte) ([]byte, bool, error) {
	return []byte{0x01, 0x02}, true, nil
}

func (tx *corruptForwardTx) ReverseLookup(context.Context, []byte) ([]byte, bool, error) {
	return nil, false, nil
}

func (tx *corruptForwardTx) Remove(context.Context, []byte) error { return nil }

func (tx *corruptForwardTx) InsertIfAbsent(context.Context, []byte, []byte) (bool, error) {
	return false, nil
}

func (tx *corruptForwardTx) Commit() error { return nil }

func (tx *corruptForwardTx) Rollback() error {
	tx.l.rollbacks++
	return nil
}

func TestCheckTermsCorruptForwardEntry(t *testing.T) {
	lex := &corruptForwardLexicon{}

	rep, err := CheckTerms(context.Background(), lex, []string{"a", "b"}, true, WithLogger(NoopLogger()))
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Checked)
	assert.Equal(t, 2, rep.Corrupt)
	assert.Zero(t, rep.Repaired)
	assert.Equal(t, 2, lex.rollbacks)
}

func TestTermReportWriteText(t *testing.T) {
	rep, err := CheckTerms(context.Background(), corruptedLexicon(), allTerms, false,
		WithLogger(NoopLogger()),
		WithRunID("terms-1"),
	)
	require.NoError(t, err)
	assert.Equal(t, "terms-1", rep.RunID)

	var buf bytes.Buffer
	require.NoError(t, rep.WriteText(&buf))

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "terms_report", buf.Bytes())
}
