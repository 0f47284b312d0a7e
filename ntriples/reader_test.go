package ntriples

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/triplecheck/model"
)

func fixture() []model.Statement {
	p := model.NewIRI("http://example.org/p")
	return []model.Statement{
		model.NewStatement(model.NewIRI("http://example.org/a"), p, model.NewLiteral("one")),
		model.NewStatement(model.NewIRI("http://example.org/b"), p, model.NewLangLiteral("deux", "fr")),
		model.NewStatement(model.NewBlankNode("c"), p, model.NewTypedLiteral("3", "http://www.w3.org/2001/XMLSchema#int")),
	}
}

func readAll(t *testing.T, f *File) []model.Statement {
	t.Helper()
	var out []model.Statement
	for st, err := range f.Statements(context.Background()) {
		require.NoError(t, err)
		out = append(out, st)
	}
	return out
}

func TestFileCompressions(t *testing.T) {
	for _, name := range []string{"dump.nt", "dump.nt.gz", "dump.nt.zst", "dump.nt.lz4"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, WriteFile(path, fixture()))

			f, err := Open(path)
			require.NoError(t, err)
			assert.Equal(t, CompressionFor(name), f.Compression())
			assert.Equal(t, fixture(), readAll(t, f))

			// Statements is repeatable.
			assert.Len(t, readAll(t, f), 3)
		})
	}
}

func TestCompressionFor(t *testing.T) {
	assert.Equal(t, CompressionGzip, CompressionFor("x.nt.GZ"))
	assert.Equal(t, CompressionZstd, CompressionFor("x.zstd"))
	assert.Equal(t, CompressionLZ4, CompressionFor("x.lz4"))
	assert.Equal(t, CompressionNone, CompressionFor("x.nt"))
	assert.Equal(t, "zstd", CompressionZstd.String())
}

func TestFileSyntaxErrorAbortsScan(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.nt")
	content := "# header\n" +
		"<http://s> <http://p> \"ok\" .\n" +
		"\n" +
		"<http://s> <http://p> broken .\n" +
		"<http://s> <http://p> \"never\" .\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	f, err := Open(path)
	require.NoError(t, err)

	var (
		seen    int
		scanErr error
	)
	for _, err := range f.Statements(context.Background()) {
		if err != nil {
			scanErr = err
			break
		}
		seen++
	}
	assert.Equal(t, 1, seen)
	var se *SyntaxError
	require.ErrorAs(t, scanErr, &se)
	assert.Equal(t, 4, se.Line)
	assert.Contains(t, scanErr.Error(), "bad.nt")
}

func TestFileCancelled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dump.nt")
	require.NoError(t, WriteFile(path, fixture()))
	f, err := Open(path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for _, err := range f.Statements(ctx) {
		assert.ErrorIs(t, err, context.Canceled)
	}
}

func TestOpenErrors(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.nt"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Open(t.TempDir())
	assert.Error(t, err)
}

func TestDecoder(t *testing.T) {
	dec := NewDecoder(strings.NewReader("<http://s> <http://p> <http://o> .\n# c\n"))
	st, err := dec.Decode()
	require.NoError(t, err)
	assert.Equal(t, "http://o", st.Object.Value)

	_, err = dec.Decode()
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, 2, dec.Line())
}
