package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDir(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		store := NewDir(t.TempDir())
		require.NoError(t, store.Put("all-deaths.json", []byte(`{"deaths":{}}`)))

		data, mtime, err := store.Get("all-deaths.json")
		require.NoError(t, err)
		assert.Equal(t, `{"deaths":{}}`, string(data))
		assert.WithinDuration(t, time.Now(), mtime, time.Minute)
	})

	t.Run("nested keys create parent directories", func(t *testing.T) {
		root := t.TempDir()
		store := NewDir(root)
		require.NoError(t, store.Put("last-seen/world_nether.json", []byte(`{}`)))

		_, err := os.Stat(filepath.Join(root, "last-seen", "world_nether.json"))
		assert.NoError(t, err)
	})

	t.Run("unknown key misses", func(t *testing.T) {
		store := NewDir(t.TempDir())
		_, _, err := store.Get("never-written.json")
		assert.ErrorIs(t, err, ErrMiss)
	})

	t.Run("root is created lazily", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), "not-yet")
		store := NewDir(root)

		_, _, err := store.Get("x.json")
		assert.ErrorIs(t, err, ErrMiss)

		require.NoError(t, store.Put("x.json", []byte("1")))
		_, _, err = store.Get("x.json")
		assert.NoError(t, err)
	})

	t.Run("put overwrites", func(t *testing.T) {
		store := NewDir(t.TempDir())
		require.NoError(t, store.Put("k.json", []byte("old")))
		require.NoError(t, store.Put("k.json", []byte("new")))

		data, _, err := store.Get("k.json")
		require.NoError(t, err)
		assert.Equal(t, "new", string(data))
	})
}

func TestDisabled(t *testing.T) {
	store := Disabled{}

	assert.NoError(t, store.Put("k.json", []byte("dropped")))
	_, _, err := store.Get("k.json")
	assert.ErrorIs(t, err, ErrMiss)
}
