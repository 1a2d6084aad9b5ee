package aggregate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minelog/minelog/internal/cache"
	"github.com/minelog/minelog/internal/logdir"
)

func TestLastSeenWorld(t *testing.T) {
	t.Run("last write wins", func(t *testing.T) {
		reader := writeLogs(t, t.TempDir(), "world", map[string]string{
			"logs/latest.log": "2021-01-05 09:00:00 [Server thread/INFO]: alice joined the game\n" +
				"2021-01-05 10:00:00 [Server thread/INFO]: bob joined the game\n" +
				"2021-01-05 11:00:00 [Server thread/INFO]: alice left the game\n",
		})
		l := NewLastSeen(cache.Disabled{})

		seen, err := l.World(context.Background(), reader)
		require.NoError(t, err)

		require.Len(t, seen, 2)
		assert.Equal(t, time.Date(2021, 1, 5, 11, 0, 0, 0, time.UTC), seen["alice"].Time)
		assert.Equal(t, time.Date(2021, 1, 5, 10, 0, 0, 0, time.UTC), seen["bob"].Time)
	})

	t.Run("only joins and leaves count", func(t *testing.T) {
		reader := writeLogs(t, t.TempDir(), "world", map[string]string{
			"logs/latest.log": "2021-01-05 09:00:00 [Server thread/INFO]: alice joined the game\n" +
				"2021-01-05 10:00:00 [Server thread/INFO]: <alice> still here\n" +
				"2021-01-05 11:00:00 [Server thread/INFO]: alice drowned\n",
		})
		l := NewLastSeen(cache.Disabled{})

		seen, err := l.World(context.Background(), reader)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2021, 1, 5, 9, 0, 0, 0, time.UTC), seen["alice"].Time)
	})

	t.Run("cached map survives an incremental rescan", func(t *testing.T) {
		store := cache.NewDir(t.TempDir())
		reader := writeLogs(t, t.TempDir(), "world", map[string]string{
			"logs/2021-01-05-1.log": "2021-01-05 09:00:00 [Server thread/INFO]: alice joined the game\n",
			"logs/latest.log":       "",
		})
		l := NewLastSeen(store)

		first, err := l.World(context.Background(), reader)
		require.NoError(t, err)
		require.Contains(t, first, "alice")

		// the rotated file is outside the rescan window on the second call;
		// alice must come from the cached blob
		second, err := l.World(context.Background(), reader)
		require.NoError(t, err)
		assert.Equal(t, first, second)

		data, _, err := store.Get("last-seen/world.json")
		require.NoError(t, err)
		assert.JSONEq(t, `{"alice": "2021-01-05 09:00:00"}`, string(data))
	})
}

func TestLastSeenAllWorlds(t *testing.T) {
	serverDir := t.TempDir()
	overworld := writeLogs(t, serverDir, "world", map[string]string{
		"logs/latest.log": "2021-01-05 09:00:00 [Server thread/INFO]: alice joined the game\n" +
			"2021-01-05 10:00:00 [Server thread/INFO]: bob joined the game\n",
	})
	nether := writeLogs(t, serverDir, "world_nether", map[string]string{
		"logs/latest.log": "2021-02-01 12:00:00 [Server thread/INFO]: alice joined the game\n",
	})

	l := NewLastSeen(cache.Disabled{})
	merged, err := l.AllWorlds(context.Background(), []*logdir.Reader{overworld, nether})
	require.NoError(t, err)

	require.Len(t, merged, 2)
	assert.Equal(t, "world_nether", merged["alice"].World)
	assert.Equal(t, time.Date(2021, 2, 1, 12, 0, 0, 0, time.UTC), merged["alice"].Time.Time)
	assert.Equal(t, "world", merged["bob"].World)
}

func TestLastSeenAllWorldsSkipsLegacyWorlds(t *testing.T) {
	// a legacy world directory holds only a server.log rollup; it is
	// enumerated but has no readable history, and must not take the other
	// worlds down with it
	serverDir := t.TempDir()
	modern := writeLogs(t, serverDir, "world", map[string]string{
		"logs/latest.log": "2021-01-05 09:00:00 [Server thread/INFO]: alice joined the game\n",
	})
	legacy := writeLogs(t, serverDir, "legacy", map[string]string{
		"server.log": "2012-07-09 18:00:00 [INFO] bob joined the game\n",
	})

	l := NewLastSeen(cache.Disabled{})
	merged, err := l.AllWorlds(context.Background(), []*logdir.Reader{modern, legacy})
	require.NoError(t, err)

	require.Len(t, merged, 1)
	assert.Equal(t, "world", merged["alice"].World)
}

func TestLastSeenAllWorldsPropagatesErrors(t *testing.T) {
	serverDir := t.TempDir()
	good := writeLogs(t, serverDir, "world", map[string]string{
		"logs/latest.log": "",
	})
	broken := writeLogs(t, serverDir, "broken", map[string]string{
		"logs/2021-01-01-1.log.gz": "this is not gzip",
		"logs/latest.log":          "",
	})

	l := NewLastSeen(cache.Disabled{})
	_, err := l.AllWorlds(context.Background(), []*logdir.Reader{good, broken})
	assert.Error(t, err)
}
