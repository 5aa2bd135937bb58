package artifactcache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/panux/anvil/cachekey"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeArtifactTree(t *testing.T, root string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "out"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "out", "f.txt"), []byte("hello"), 0o644))
}

func TestTryInsertThenHasAndUseCachedFiles(t *testing.T) {
	artifactRoot := t.TempDir()
	writeArtifactTree(t, artifactRoot)

	c := New(t.TempDir(), artifactRoot, false, false)
	key := cachekey.CacheKey{ID: "proj/a:a", Hash: "deadbeef"}

	has, err := c.Has(key)
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, c.TryInsert(key, []string{"out"}))

	has, err = c.Has(key)
	require.NoError(t, err)
	assert.True(t, has)

	extractRoot := t.TempDir()
	c2 := New(c.Root, extractRoot, false, false)
	files, ok, err := c2.UseCachedFiles(key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, extractRoot, files.Root)

	b, err := os.ReadFile(filepath.Join(extractRoot, "out", "f.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(b))
}

func TestTryInsertCompressed(t *testing.T) {
	artifactRoot := t.TempDir()
	writeArtifactTree(t, artifactRoot)

	c := New(t.TempDir(), artifactRoot, true, false)
	key := cachekey.CacheKey{ID: "proj/a:a", Hash: "abc"}

	require.NoError(t, c.TryInsert(key, []string{"out"}))
	assert.FileExists(t, filepath.Join(c.Root, sanitizeID(key.ID), "abc.tar.gz"))
}

func TestTryInsertReadOnlyIsNoop(t *testing.T) {
	c := New(t.TempDir(), t.TempDir(), false, true)
	key := cachekey.CacheKey{ID: "proj/a:a", Hash: "abc"}

	require.NoError(t, c.TryInsert(key, nil))
	has, err := c.Has(key)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestDelete(t *testing.T) {
	artifactRoot := t.TempDir()
	writeArtifactTree(t, artifactRoot)

	c := New(t.TempDir(), artifactRoot, false, false)
	key := cachekey.CacheKey{ID: "proj/a:a", Hash: "abc"}
	require.NoError(t, c.TryInsert(key, []string{"out"}))

	require.NoError(t, c.Delete(key))
	has, err := c.Has(key)
	require.NoError(t, err)
	assert.False(t, has)

	// deleting a missing key is not an error.
	require.NoError(t, c.Delete(key))
}

func TestUseCachedFilesMissingIsNotError(t *testing.T) {
	c := New(t.TempDir(), t.TempDir(), false, false)
	_, ok, err := c.UseCachedFiles(cachekey.CacheKey{ID: "x", Hash: "y"})
	require.NoError(t, err)
	assert.False(t, ok)
}
