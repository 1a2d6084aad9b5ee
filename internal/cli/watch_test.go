package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/minelog/minelog/internal/classify"
	"github.com/minelog/minelog/internal/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// watchHarness runs runWatch against a temp latest.log and exposes the
// emitted events on a channel
type watchHarness struct {
	path   string
	events chan domain.Event
	cancel context.CancelFunc
	done   chan error
}

func startWatch(t *testing.T, initial string, replay bool) *watchHarness {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "latest.log")
	require.NoError(t, os.WriteFile(path, []byte(initial), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	h := &watchHarness{
		path:   path,
		events: make(chan domain.Event, 64),
		cancel: cancel,
		done:   make(chan error, 1),
	}
	go func() {
		h.done <- runWatch(ctx, watchParams{
			path:       path,
			classifier: classify.New(nil),
			poll:       20 * time.Millisecond,
			replay:     replay,
			log:        zap.NewNop(),
			emit: func(ev domain.Event) error {
				h.events <- ev
				return nil
			},
		})
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-h.done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("watch did not shut down")
		}
	})
	return h
}

func (h *watchHarness) append(t *testing.T, text string) {
	t.Helper()
	f, err := os.OpenFile(h.path, os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.WriteString(text)
	require.NoError(t, err)
	require.NoError(t, f.Close())
}

func (h *watchHarness) next(t *testing.T) domain.Event {
	t.Helper()
	select {
	case ev := <-h.events:
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for an event")
		return domain.Event{}
	}
}

func (h *watchHarness) expectNone(t *testing.T) {
	t.Helper()
	select {
	case ev := <-h.events:
		t.Fatalf("unexpected event %+v", ev)
	case <-time.After(150 * time.Millisecond):
	}
}

func TestRunWatch(t *testing.T) {
	t.Run("emits appended lines", func(t *testing.T) {
		h := startWatch(t, "", false)

		h.append(t, "2021-01-05 10:00:00 [Server thread/INFO]: alice joined the game\n")
		ev := h.next(t)
		assert.Equal(t, domain.EventJoin, ev.Type)
		assert.Equal(t, "alice", ev.Player.String())

		h.append(t, "2021-01-05 10:05:00 [Server thread/INFO]: <alice> hello\n")
		ev = h.next(t)
		assert.Equal(t, domain.EventChatMessage, ev.Type)
		assert.Equal(t, "hello", ev.Message)
	})

	t.Run("existing content is skipped without replay", func(t *testing.T) {
		h := startWatch(t, "2021-01-05 09:00:00 [Server thread/INFO]: bob joined the game\n", false)
		h.expectNone(t)
	})

	t.Run("replay emits existing content first", func(t *testing.T) {
		h := startWatch(t, "2021-01-05 09:00:00 [Server thread/INFO]: bob joined the game\n", true)
		ev := h.next(t)
		assert.Equal(t, domain.EventJoin, ev.Type)
		assert.Equal(t, "bob", ev.Player.String())
	})

	t.Run("partial lines wait for their newline", func(t *testing.T) {
		h := startWatch(t, "", false)

		h.append(t, "2021-01-05 10:00:00 [Server thread/INFO]: alice joi")
		h.expectNone(t)

		h.append(t, "ned the game\n")
		ev := h.next(t)
		assert.Equal(t, domain.EventJoin, ev.Type)
	})

	t.Run("follows log rotation", func(t *testing.T) {
		h := startWatch(t, "", false)

		h.append(t, "2021-01-05 10:00:00 [Server thread/INFO]: alice joined the game\n")
		assert.Equal(t, domain.EventJoin, h.next(t).Type)

		// rotate: latest.log is archived and replaced by a fresh file
		require.NoError(t, os.Rename(h.path, h.path+".old"))
		require.NoError(t, os.WriteFile(h.path,
			[]byte("2021-01-06 08:00:00 [Server thread/INFO]: Starting minecraft server version 1.16.5\n"), 0644))

		ev := h.next(t)
		assert.Equal(t, domain.EventStart, ev.Type)
		assert.Equal(t, "1.16.5", ev.Version)
	})
}
