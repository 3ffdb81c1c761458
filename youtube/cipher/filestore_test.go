package cipher

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_SaveLoad(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "ops"))
	require.NoError(t, err)

	ops := Operations{
		FunctionName:   "XY",
		Params:         "a",
		Body:           "return a",
		FunctionSource: "function XY(a) {return a}",
		HelperName:     "XY",
		HelperSource:   "var XY = {};",
	}
	require.NoError(t, store.Save("https://yt/player.js", ops))

	got, ok := store.Load("https://yt/player.js")
	require.True(t, ok)
	if diff := cmp.Diff(ops, got); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}

	_, ok = store.Load("other")
	assert.False(t, ok)

	require.NoError(t, store.Delete("https://yt/player.js"))
	require.NoError(t, store.Delete("https://yt/player.js"))
	_, ok = store.Load("https://yt/player.js")
	assert.False(t, ok)
}

func TestFileStore_CorruptEntryIsRemoved(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	fn := store.path("k")
	require.NoError(t, os.WriteFile(fn, []byte("{not json"), 0o644))

	_, ok := store.Load("k")
	assert.False(t, ok)
	_, err = os.Stat(fn)
	assert.True(t, os.IsNotExist(err))
}

func TestNewFileStore_RequiresDir(t *testing.T) {
	_, err := NewFileStore("")
	assert.Error(t, err)
}
