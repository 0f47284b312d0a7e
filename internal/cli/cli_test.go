package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/triplecheck"
	"github.com/hupe1980/triplecheck/blobstore"
	"github.com/hupe1980/triplecheck/lexicon"
	"github.com/hupe1980/triplecheck/model"
	"github.com/hupe1980/triplecheck/snapshot"
	"github.com/hupe1980/triplecheck/sqlstore"
)

const testData = `# people
<http://example.org/alice> <http://xmlns.com/foaf/0.1/name> "alice" .
<http://example.org/bob> <http://xmlns.com/foaf/0.1/name> "bob" .
<http://example.org/alice> <http://xmlns.com/foaf/0.1/knows> <http://example.org/bob> .
`

type fixture struct {
	dir    string
	config string
	db     string
	bitmap string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	f := &fixture{
		dir:    dir,
		config: filepath.Join(dir, "triplecheck.yaml"),
		db:     filepath.Join(dir, "store.db"),
		bitmap: filepath.Join(dir, "bitmap.map"),
	}

	cfg := fmt.Sprintf(`source:
  driver: sqlite3
  dsn: %s
bitmap:
  path: %s
  map_size: 65536
snapshot:
  store: local
  dir: %s
log:
  level: warn
`, f.db, f.bitmap, filepath.Join(dir, "snapshots"))
	require.NoError(t, os.WriteFile(f.config, []byte(cfg), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data.nt"), []byte(testData), 0o644))
	return f
}

func (f *fixture) path(name string) string {
	return filepath.Join(f.dir, name)
}

type result struct {
	code   int
	stdout string
	stderr string
}

func run(t *testing.T, configPath string, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	opts := &RootOptions{EnvFiles: []string{filepath.Join(t.TempDir(), "absent.env")}}
	if configPath != "" {
		args = append([]string{"--config", configPath}, args...)
	}
	code := execute(context.Background(), opts, args, &stdout, &stderr)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestCLI_EndToEnd(t *testing.T) {
	g := newGoldie(t)
	f := newFixture(t)

	res := run(t, f.config, "load", f.path("data.nt"))
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	g.Assert(t, "load", []byte(res.stdout))

	res = run(t, f.config, "load", f.path("data.nt"))
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Equal(t, "loaded 3 statements (0 new)\n", res.stdout)

	res = run(t, f.config, "build")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "mode:       build")
	assert.Contains(t, res.stdout, "expected:   3")
	assert.Contains(t, res.stdout, "processed:  3")

	res = run(t, f.config, "verify")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "mode:       verify")
	assert.Contains(t, res.stdout, "missing:    0")

	res = run(t, f.config, "terms", "--run-id", "terms-1", "alice", "bob", "carol")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	g.Assert(t, "terms_report", []byte(res.stdout))

	corruptReverse(t, f.db, "bob", "mallory")

	// The statement naming bob now resolves to a different value.
	missingOut := f.path("missing.roaring")
	res = run(t, f.config, "build", "--check", "--missing-out", missingOut)
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "missing:    1")
	assert.Contains(t, res.stderr, "did not find statement")

	mf, err := os.Open(missingOut)
	require.NoError(t, err)
	missing, err := triplecheck.ReadMissing(mf)
	require.NoError(t, mf.Close())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), missing.GetCardinality())

	res = run(t, f.config, "terms", "--fix", "--run-id", "terms-2", "bob")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	g.Assert(t, "terms_fix", []byte(res.stdout))

	res = run(t, f.config, "terms", "bob")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.True(t, strings.HasPrefix(res.stdout, "bob  consistent\n"), res.stdout)

	res = run(t, f.config, "verify")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "missing:    0")
}

func corruptReverse(t *testing.T, dsn, term, replacement string) {
	t.Helper()
	ctx := context.Background()

	st, err := sqlstore.Open(ctx, sqlstore.Config{Driver: sqlstore.DriverSQLite, DSN: dsn})
	require.NoError(t, err)
	defer st.Close()

	id, err := st.InternTerm(ctx, model.NewLiteral(term))
	require.NoError(t, err)
	require.NoError(t, st.PutReverse(ctx, id, lexicon.SerializeTerm(model.NewLiteral(replacement))))
}

func TestCLI_Snapshot(t *testing.T) {
	f := newFixture(t)

	require.Equal(t, ExitSuccess, run(t, f.config, "load", f.path("data.nt")).code)
	require.Equal(t, ExitSuccess, run(t, f.config, "build").code)

	res := run(t, f.config, "snapshot", "export", "--codec", "lz4", "people.tcbm")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "codec:     lz4")
	assert.Contains(t, res.stdout, "map size:  65536")

	res = run(t, f.config, "snapshot", "list")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Equal(t, "people.tcbm\n", res.stdout)

	restored := f.path("restored.map")
	res = run(t, f.config, "snapshot", "restore", "--map", restored, "people.tcbm")
	require.Equal(t, ExitSuccess, res.code, res.stderr)

	want, err := os.ReadFile(f.bitmap)
	require.NoError(t, err)
	got, err := os.ReadFile(restored)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	res = run(t, f.config, "verify", "--map", restored)
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "missing:    0")
}

type fixtureBitmap []byte

func (b fixtureBitmap) Bytes() []byte { return b }
func (b fixtureBitmap) Count() uint64 { return 1 }

func TestCLI_SnapshotInspect(t *testing.T) {
	f := newFixture(t)

	data := make(fixtureBitmap, 4096)
	data[0] = 0x01
	store := blobstore.NewLocalStore(f.path("snapshots"))
	_, err := snapshot.Export(context.Background(), data, store, "fixture.tcbm", snapshot.WithCodec(snapshot.CodecNone))
	require.NoError(t, err)

	res := run(t, f.config, "snapshot", "inspect", "fixture.tcbm")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	newGoldie(t).Assert(t, "snapshot_inspect", []byte(res.stdout))

	res = run(t, f.config, "snapshot", "inspect", "absent.tcbm")
	assert.Equal(t, ExitFailure, res.code)
	assert.True(t, strings.HasPrefix(res.stderr, "error: snapshot: open absent.tcbm"), res.stderr)
}

func TestCLI_Errors(t *testing.T) {
	g := newGoldie(t)
	dir := t.TempDir()

	bare := filepath.Join(dir, "bare.yaml")
	require.NoError(t, os.WriteFile(bare, []byte("bitmap:\n  map_size: 4096\n"), 0o644))

	t.Run("NoSource", func(t *testing.T) {
		res := run(t, bare, "build", "--map", filepath.Join(dir, "x.map"))
		assert.Equal(t, ExitFailure, res.code)
		assert.Empty(t, res.stdout)
		g.Assert(t, "error_no_source", []byte(res.stderr))
	})

	t.Run("LogFormat", func(t *testing.T) {
		res := run(t, bare, "--log-format", "xml", "verify")
		assert.Equal(t, ExitFailure, res.code)
		g.Assert(t, "error_log_format", []byte(res.stderr))
	})

	t.Run("NoBitmapPath", func(t *testing.T) {
		res := run(t, bare, "verify")
		assert.Equal(t, ExitFailure, res.code)
		assert.Contains(t, res.stderr, "error: config: bitmap: no bitmap file")
	})

	t.Run("MissingBitmap", func(t *testing.T) {
		f := newFixture(t)
		res := run(t, f.config, "verify")
		assert.Equal(t, ExitFailure, res.code)
		assert.True(t, strings.HasPrefix(res.stderr, "error: bitmap: open:"), res.stderr)
	})

	t.Run("TermsWithoutDictionary", func(t *testing.T) {
		nt := filepath.Join(dir, "nt.yaml")
		cfg := fmt.Sprintf("source:\n  driver: ntriples\n  path: %s\n", filepath.Join(dir, "data.nt"))
		require.NoError(t, os.WriteFile(nt, []byte(cfg), 0o644))

		res := run(t, nt, "terms", "alice")
		assert.Equal(t, ExitFailure, res.code)
		assert.Contains(t, res.stderr, "has no term dictionary")
	})

	t.Run("BadConfig", func(t *testing.T) {
		res := run(t, filepath.Join(dir, "absent.yaml"), "verify")
		assert.Equal(t, ExitFailure, res.code)
		assert.True(t, strings.HasPrefix(res.stderr, "error: config: load:"), res.stderr)
	})
}

func TestCLI_NTriplesSource(t *testing.T) {
	f := newFixture(t)
	cfgPath := f.path("nt.yaml")
	cfg := fmt.Sprintf("source:\n  driver: ntriples\n  path: %s\nbitmap:\n  map_size: 65536\nlog:\n  level: warn\n", f.path("data.nt"))
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

	mapPath := f.path("nt.map")
	res := run(t, cfgPath, "build", "--map", mapPath)
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "processed:  3")
	assert.NotContains(t, res.stdout, "expected:")

	res = run(t, cfgPath, "verify", "--map", mapPath)
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "missing:    0")
}
