package triplecheck

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_WrapAndKind(t *testing.T) {
	err := NewError(KindBitmap, "open bitmap", os.ErrNotExist)

	assert.Equal(t, "bitmap: open bitmap: file does not exist", err.Error())
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Equal(t, KindBitmap, KindOf(err))
	assert.Equal(t, KindBitmap, KindOf(fmt.Errorf("outer: %w", err)))
}

func TestError_NilAndUnknown(t *testing.T) {
	assert.NoError(t, NewError(KindScan, "scan", nil))
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.Equal(t, KindUnknown, KindOf(nil))
}

func TestError_NoOp(t *testing.T) {
	err := &Error{Kind: KindConfig, Err: errors.New("missing source")}
	assert.Equal(t, "config: missing source", err.Error())
}

func TestKind_String(t *testing.T) {
	for kind, want := range map[Kind]string{
		KindConfig:    "config",
		KindStoreInit: "store_init",
		KindScan:      "scan",
		KindBitmap:    "bitmap",
		KindLexicon:   "lexicon",
		KindUnknown:   "unknown",
	} {
		assert.Equal(t, want, kind.String())
	}
}
