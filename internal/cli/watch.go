package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/minelog/minelog/internal/classify"
	"github.com/minelog/minelog/internal/domain"
	"github.com/minelog/minelog/internal/logdir"
	"github.com/minelog/minelog/internal/output"
)

// WatchCmd follows a world's latest.log and emits events as lines are
// appended. Log rotation (latest.log replaced by a fresh file) is followed
// transparently.
type WatchCmd struct {
	Poll    time.Duration `default:"2s" help:"Fallback poll interval when no file events arrive"`
	Replay  bool          `help:"Emit existing latest.log content before following"`
	Timeout time.Duration `help:"Stop after this duration (0 = run until interrupted)"`
}

// Run executes the watch command
func (c *WatchCmd) Run(globals *Globals) error {
	env := newWorldEnv(globals, "")
	if _, err := os.Stat(env.world.LatestLog()); err != nil {
		return readerError(globals, logdir.ErrNoLatestLog)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	var emit func(domain.Event) error
	if globals.ResolveFormat(true) == "table" {
		emit = func(ev domain.Event) error {
			_, err := io.WriteString(globals.Stdout, formatEventText(ev)+"\n")
			return err
		}
	} else {
		writer := output.NewNDJSONWriter(globals.Stdout)
		emit = writer.WriteEvent
	}

	return runWatch(ctx, watchParams{
		path:       env.world.LatestLog(),
		classifier: env.classifier,
		poll:       c.Poll,
		replay:     c.Replay,
		log:        globals.Logger,
		emit:       emit,
	})
}

type watchParams struct {
	path       string
	classifier *classify.Classifier
	poll       time.Duration
	replay     bool
	log        *zap.Logger
	emit       func(domain.Event) error
}

// runWatch is the watch loop, separated from flag handling so tests can
// drive it with a cancellable context
func runWatch(ctx context.Context, p watchParams) error {
	f := &follower{path: p.path, classifier: p.classifier, pass: p.classifier.NewPass(), emit: p.emit}
	if err := f.open(!p.replay); err != nil {
		return err
	}
	defer f.close()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Add(filepath.Dir(p.path)); err != nil {
		return err
	}

	poll := p.poll
	if poll <= 0 {
		poll = 2 * time.Second
	}
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	// drain once up front so --replay output appears before the first event
	if err := f.drain(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Name != p.path {
				continue
			}
			if err := f.drain(); err != nil {
				return err
			}
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			p.log.Warn("file watcher error", zap.Error(werr))
		case <-ticker.C:
			// some filesystems miss events; poll as a safety net
			if err := f.drain(); err != nil {
				return err
			}
		}
	}
}

// follower incrementally reads complete lines from a growing log file
type follower struct {
	path       string
	classifier *classify.Classifier
	pass       *classify.Pass
	emit       func(domain.Event) error

	file    *os.File
	info    os.FileInfo
	offset  int64
	partial []byte
}

func (f *follower) open(seekEnd bool) error {
	file, err := os.Open(f.path)
	if err != nil {
		return err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return err
	}
	f.file = file
	f.info = info
	f.offset = 0
	f.partial = nil
	if seekEnd {
		end, err := file.Seek(0, io.SeekEnd)
		if err != nil {
			file.Close()
			return err
		}
		f.offset = end
	}
	return nil
}

func (f *follower) close() {
	if f.file != nil {
		f.file.Close()
		f.file = nil
	}
}

// drain reads everything appended since the last call and emits the complete
// lines. A file smaller than the last offset means latest.log was rotated;
// the follower reopens it from the start with a fresh nickname pass.
func (f *follower) drain() error {
	info, err := os.Stat(f.path)
	if err != nil {
		// rotation in progress; the new latest.log will appear shortly
		return nil
	}
	if f.file != nil && (!os.SameFile(f.info, info) || info.Size() < f.offset) {
		f.close()
		f.pass = f.classifier.NewPass()
	}
	if f.file == nil {
		if err := f.open(false); err != nil {
			return nil
		}
	}

	chunk, err := io.ReadAll(io.NewSectionReader(f.file, f.offset, info.Size()-f.offset))
	if err != nil {
		return err
	}
	f.offset += int64(len(chunk))

	data := append(f.partial, chunk...)
	for {
		idx := bytes.IndexByte(data, '\n')
		if idx < 0 {
			break
		}
		line := string(data[:idx])
		data = data[idx+1:]
		ev, ok := f.classifier.Classify(f.pass, line)
		if !ok {
			continue
		}
		if ev.Type == domain.EventGibberish {
			ev.Path = f.path
		}
		if err := f.emit(ev); err != nil {
			if errors.Is(err, logdir.ErrStop) {
				return nil
			}
			return err
		}
	}
	f.partial = data
	return nil
}
