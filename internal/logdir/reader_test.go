package logdir

import (
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minelog/minelog/internal/classify"
	"github.com/minelog/minelog/internal/domain"
)

// writeWorld lays out a world directory with the given log files. Keys are
// paths relative to the world dir; values ending in .gz are gzip-compressed.
func writeWorld(t *testing.T, files map[string]string) World {
	t.Helper()
	serverDir := t.TempDir()
	world := NewWorld(serverDir, "world")
	for rel, content := range files {
		path := filepath.Join(world.Path, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		if filepath.Ext(path) == ".gz" {
			f, err := os.Create(path)
			require.NoError(t, err)
			gz := gzip.NewWriter(f)
			_, err = gz.Write([]byte(content))
			require.NoError(t, err)
			require.NoError(t, gz.Close())
			require.NoError(t, f.Close())
		} else {
			require.NoError(t, os.WriteFile(path, []byte(content), 0644))
		}
	}
	return world
}

func collect(t *testing.T, r *Reader) []domain.Event {
	t.Helper()
	var events []domain.Event
	require.NoError(t, r.Events(context.Background(), func(ev domain.Event) error {
		events = append(events, ev)
		return nil
	}))
	return events
}

func TestFiles(t *testing.T) {
	classifier := classify.New(nil)

	t.Run("rollup, sorted rotated files, then latest", func(t *testing.T) {
		world := writeWorld(t, map[string]string{
			"server.log":                "",
			"logs/latest.log":           "",
			"logs/2021-01-02-1.log.gz":  "",
			"logs/2021-01-01-1.log.gz":  "",
			"logs/2021-01-01-2.log.gz":  "",
			"logs/2021-01-03-1.log":     "",
		})
		r := NewReader(world, classifier)
		files, err := r.Files()
		require.NoError(t, err)
		require.Len(t, files, 6)
		assert.Equal(t, world.RollupLog(), files[0])
		assert.Equal(t, "2021-01-01-1.log.gz", filepath.Base(files[1]))
		assert.Equal(t, "2021-01-01-2.log.gz", filepath.Base(files[2]))
		assert.Equal(t, "2021-01-02-1.log.gz", filepath.Base(files[3]))
		assert.Equal(t, "2021-01-03-1.log", filepath.Base(files[4]))
		assert.Equal(t, world.LatestLog(), files[5])
	})

	t.Run("missing latest.log is fatal", func(t *testing.T) {
		world := writeWorld(t, map[string]string{
			"logs/2021-01-01-1.log": "",
		})
		r := NewReader(world, classifier)
		_, err := r.Files()
		assert.ErrorIs(t, err, ErrNoLatestLog)
	})

	t.Run("missing logs dir is fatal too", func(t *testing.T) {
		world := writeWorld(t, map[string]string{
			"server.log": "",
		})
		r := NewReader(world, classifier)
		_, err := r.Files()
		assert.ErrorIs(t, err, ErrNoLatestLog)
	})

	t.Run("rollup and subdirectories are optional", func(t *testing.T) {
		world := writeWorld(t, map[string]string{
			"logs/latest.log": "",
		})
		require.NoError(t, os.MkdirAll(filepath.Join(world.LogsDir(), "archive"), 0755))
		r := NewReader(world, classifier)
		files, err := r.Files()
		require.NoError(t, err)
		assert.Equal(t, []string{world.LatestLog()}, files)
	})
}

func TestSlice(t *testing.T) {
	classifier := classify.New(nil)
	world := writeWorld(t, map[string]string{
		"server.log":               "",
		"logs/latest.log":          "",
		"logs/2021-01-01-1.log.gz": "",
		"logs/2021-01-02-1.log.gz": "",
		"logs/2021-01-03-1.log.gz": "",
	})
	r := NewReader(world, classifier)

	names := func(t *testing.T, r *Reader) []string {
		t.Helper()
		files, err := r.Files()
		require.NoError(t, err)
		out := make([]string, len(files))
		for i, f := range files {
			out[i] = filepath.Base(f)
		}
		return out
	}
	day := func(s string) time.Time {
		d, err := time.ParseInLocation("2006-01-02", s, time.UTC)
		require.NoError(t, err)
		return d
	}

	t.Run("open bounds keep everything", func(t *testing.T) {
		sliced, err := r.Slice(time.Time{}, time.Time{})
		require.NoError(t, err)
		assert.Equal(t, []string{"server.log", "2021-01-01-1.log.gz", "2021-01-02-1.log.gz", "2021-01-03-1.log.gz", "latest.log"}, names(t, sliced))
	})

	t.Run("lower bound drops the rollup and older files", func(t *testing.T) {
		sliced, err := r.Slice(day("2021-01-02"), time.Time{})
		require.NoError(t, err)
		assert.Equal(t, []string{"2021-01-02-1.log.gz", "2021-01-03-1.log.gz", "latest.log"}, names(t, sliced))
	})

	t.Run("upper bound is exclusive and drops latest.log", func(t *testing.T) {
		sliced, err := r.Slice(time.Time{}, day("2021-01-03"))
		require.NoError(t, err)
		assert.Equal(t, []string{"server.log", "2021-01-01-1.log.gz", "2021-01-02-1.log.gz"}, names(t, sliced))
	})

	t.Run("bounds compare at day granularity", func(t *testing.T) {
		from := day("2021-01-02").Add(18 * time.Hour)
		sliced, err := r.Slice(from, time.Time{})
		require.NoError(t, err)
		assert.Equal(t, []string{"2021-01-02-1.log.gz", "2021-01-03-1.log.gz", "latest.log"}, names(t, sliced))
	})

	t.Run("a slice can be empty", func(t *testing.T) {
		sliced, err := r.Slice(day("2022-06-01"), day("2022-06-02"))
		require.NoError(t, err)
		assert.Empty(t, names(t, sliced))
		assert.Empty(t, collect(t, sliced))
	})
}

func TestEvents(t *testing.T) {
	classifier := classify.New(nil)

	world := writeWorld(t, map[string]string{
		"logs/2021-01-01-1.log.gz": "2021-01-01 08:00:00 [Server thread/INFO]: Starting minecraft server version 1.16.4\n" +
			"2021-01-01 09:00:00 [Server thread/INFO]: alice joined the game\n",
		"logs/latest.log": "2021-01-02 10:00:00 [Server thread/INFO]: alice left the game\n",
	})
	r := NewReader(world, classifier)

	t.Run("forward order across files", func(t *testing.T) {
		events := collect(t, r)
		require.Len(t, events, 3)
		assert.Equal(t, domain.EventStart, events[0].Type)
		assert.Equal(t, domain.EventJoin, events[1].Type)
		assert.Equal(t, domain.EventLeave, events[2].Type)
	})

	t.Run("reversed order across files", func(t *testing.T) {
		events := collect(t, r.Reversed())
		require.Len(t, events, 3)
		assert.Equal(t, domain.EventLeave, events[0].Type)
		assert.Equal(t, domain.EventJoin, events[1].Type)
		assert.Equal(t, domain.EventStart, events[2].Type)
	})

	t.Run("reversing twice restores forward order", func(t *testing.T) {
		events := collect(t, r.Reversed().Reversed())
		require.Len(t, events, 3)
		assert.Equal(t, domain.EventStart, events[0].Type)
	})

	t.Run("ErrStop ends the iteration cleanly", func(t *testing.T) {
		var count int
		err := r.Events(context.Background(), func(ev domain.Event) error {
			count++
			return ErrStop
		})
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("ErrStop works in reverse too", func(t *testing.T) {
		var first domain.Event
		err := r.Reversed().Events(context.Background(), func(ev domain.Event) error {
			first = ev
			return ErrStop
		})
		require.NoError(t, err)
		assert.Equal(t, domain.EventLeave, first.Type)
	})

	t.Run("cancelled context aborts", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := r.Events(ctx, func(domain.Event) error { return nil })
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("gibberish events carry the source path", func(t *testing.T) {
		world := writeWorld(t, map[string]string{
			"logs/latest.log": "###corrupted###\n",
		})
		events := collect(t, NewReader(world, classifier))
		require.Len(t, events, 1)
		assert.Equal(t, domain.EventGibberish, events[0].Type)
		assert.Equal(t, world.LatestLog(), events[0].Path)
	})
}

func TestReversedAuthenticatorOrder(t *testing.T) {
	// the authenticator line precedes the join line in the file; reversed
	// iteration must still see it first so the join is attributed correctly
	classifier := classify.New(nil)
	world := writeWorld(t, map[string]string{
		"logs/latest.log": "2021-01-05 09:59:55 [User Authenticator #1/INFO]: UUID of player AliceNick is 069a79f4-44e9-4726-a5be-fca90e38aaf5\n" +
			"2021-01-05 10:00:00 [Server thread/INFO]: AliceNick joined the game\n",
	})
	events := collect(t, NewReader(world, classifier).Reversed())
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventJoin, events[0].Type)
	assert.Equal(t, "069a79f4-44e9-4726-a5be-fca90e38aaf5", events[0].Player.String())
}

func TestWorlds(t *testing.T) {
	serverDir := t.TempDir()

	mk := func(rel string) {
		path := filepath.Join(serverDir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, nil, 0644))
	}
	mk("world/logs/latest.log")
	mk("world_nether/logs/latest.log")
	mk("legacy/server.log")
	mk("usercache.json")
	require.NoError(t, os.MkdirAll(filepath.Join(serverDir, "plugins"), 0755))

	worlds, err := Worlds(serverDir)
	require.NoError(t, err)
	require.Len(t, worlds, 3)
	assert.Equal(t, "legacy", worlds[0].Name)
	assert.Equal(t, "world", worlds[1].Name)
	assert.Equal(t, "world_nether", worlds[2].Name)
}
