package datastore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataStore_AddGetDelete(t *testing.T) {
	ds, err := New(filepath.Join(t.TempDir(), "store.json"))
	require.NoError(t, err)
	defer ds.Close()

	ds.Add("k", map[string]any{"v": "x"})
	got, ok := ds.Get("k")
	require.True(t, ok)
	assert.Equal(t, map[string]any{"v": "x"}, got)

	ds.Delete("k")
	_, ok = ds.Get("k")
	assert.False(t, ok)
}

func TestDataStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")

	ds, err := New(path)
	require.NoError(t, err)
	ds.Add("guild", map[string]any{"n": "one"})
	require.NoError(t, ds.Close())

	reopened, err := New(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, ok := reopened.Get("guild")
	require.True(t, ok)
	assert.Equal(t, map[string]any{"n": "one"}, got)
}

func TestDataStore_ClosedStoreRejectsOps(t *testing.T) {
	ds, err := New(filepath.Join(t.TempDir(), "store.json"))
	require.NoError(t, err)
	require.NoError(t, ds.Close())

	ds.Add("k", "v")
	_, ok := ds.Get("k")
	assert.False(t, ok)

	// double close is a no-op
	assert.NoError(t, ds.Close())
}

func TestDataStore_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "store.json")
	ds, err := New(path)
	require.NoError(t, err)
	defer ds.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err)
}
