package invalidator

import (
	"testing"

	"github.com/panux/anvil/cachekey"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateThenNeedsUpdateFalse(t *testing.T) {
	inv := New(t.TempDir(), "gen1")
	key := cachekey.CacheKey{ID: "proj/a:a", Hash: "abc123"}

	needs, err := inv.NeedsUpdate(key)
	require.NoError(t, err)
	assert.True(t, needs)

	require.NoError(t, inv.Update(key))

	needs, err = inv.NeedsUpdate(key)
	require.NoError(t, err)
	assert.False(t, needs)
}

func TestUpdateWithDifferentHashNeedsUpdate(t *testing.T) {
	inv := New(t.TempDir(), "gen1")
	key1 := cachekey.CacheKey{ID: "proj/a:a", Hash: "hash1"}
	key2 := cachekey.CacheKey{ID: "proj/a:a", Hash: "hash2"}

	require.NoError(t, inv.Update(key1))
	needs, err := inv.NeedsUpdate(key2)
	require.NoError(t, err)
	assert.True(t, needs)
}

func TestForceInvalidate(t *testing.T) {
	inv := New(t.TempDir(), "gen1")
	key := cachekey.CacheKey{ID: "proj/a:a", Hash: "abc"}
	require.NoError(t, inv.Update(key))

	require.NoError(t, inv.ForceInvalidate(key.ID))
	_, ok, err := inv.ExistingHash(key.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	// missing file is not an error.
	require.NoError(t, inv.ForceInvalidate(key.ID))
}

func TestForceInvalidateAll(t *testing.T) {
	inv := New(t.TempDir(), "gen1")
	require.NoError(t, inv.Update(cachekey.CacheKey{ID: "a", Hash: "1"}))
	require.NoError(t, inv.Update(cachekey.CacheKey{ID: "b", Hash: "2"}))

	require.NoError(t, inv.ForceInvalidateAll())

	_, ok, err := inv.ExistingHash("a")
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = inv.ExistingHash("b")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDistinctIdsWithDifferentCaseDoNotCollide(t *testing.T) {
	root := t.TempDir()
	inv := New(root, "gen1")
	require.NoError(t, inv.Update(cachekey.CacheKey{ID: "Proj/A:Target", Hash: "1"}))
	require.NoError(t, inv.Update(cachekey.CacheKey{ID: "proj/a:target", Hash: "2"}))

	h1, ok, err := inv.ExistingHash("Proj/A:Target")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "1", h1)

	h2, ok, err := inv.ExistingHash("proj/a:target")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "2", h2)
}
