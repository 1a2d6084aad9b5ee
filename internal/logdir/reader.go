// Package logdir enumerates and streams a world's ordered log files.
//
// A world's log history consists of, oldest to newest: an optional server.log
// rollup predating log rotation, zero or more date-named rotated files
// (plain or gzip-compressed), and the mandatory latest.log. Iteration yields
// classified events in that order, or fully reversed.
package logdir

import (
	"bufio"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/minelog/minelog/internal/classify"
	"github.com/minelog/minelog/internal/domain"
)

// ErrNoLatestLog means the world has no latest.log; the world's log history
// cannot be read at all
var ErrNoLatestLog = errors.New("latest.log not found")

// ErrStop can be returned from an iteration callback to end the iteration
// early without error
var ErrStop = errors.New("stop iteration")

// Reader streams a world's log history as classified events
type Reader struct {
	world      World
	classifier *classify.Classifier
	log        *zap.Logger

	files    []string // nil until discovered, or explicitly set by Slice
	sliced   bool
	reversed bool
}

// Option configures a Reader
type Option func(*Reader)

// WithLogger sets the diagnostic logger
func WithLogger(log *zap.Logger) Option {
	return func(r *Reader) { r.log = log }
}

// NewReader builds a Reader over the full log history of world
func NewReader(world World, classifier *classify.Classifier, opts ...Option) *Reader {
	r := &Reader{
		world:      world,
		classifier: classifier,
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// World returns the world this reader reads
func (r *Reader) World() World {
	return r.world
}

// Reversed returns a copy of r that iterates newest-first: files in reverse
// order, lines within each file bottom-to-top
func (r *Reader) Reversed() *Reader {
	clone := *r
	clone.reversed = !clone.reversed
	return &clone
}

// Slice returns a copy of r restricted to files whose date falls in
// [from, to), compared at day granularity. A zero bound is open. The undated
// server.log rollup has no defined start date and is dropped whenever a lower
// bound is given; latest.log has no defined end date and is dropped whenever
// an upper bound is given.
func (r *Reader) Slice(from, to time.Time) (*Reader, error) {
	files, err := r.Files()
	if err != nil {
		return nil, err
	}
	var kept []string
	for _, path := range files {
		date, dated := fileDate(path)
		if !dated {
			if filepath.Base(path) == "server.log" {
				if !from.IsZero() {
					continue
				}
			} else if !to.IsZero() {
				// latest.log (or any other undated file): still growing,
				// no defined end date
				continue
			}
			kept = append(kept, path)
			continue
		}
		if !from.IsZero() && date.Before(truncateDay(from)) {
			continue
		}
		if !to.IsZero() && !date.Before(truncateDay(to)) {
			continue
		}
		kept = append(kept, path)
	}
	clone := *r
	clone.files = kept
	clone.sliced = true
	return &clone, nil
}

// Files returns the ordered log file list: server.log rollup (if present),
// rotated files sorted by name, then latest.log. A missing logs directory
// yields no rotated files; a missing latest.log is fatal for the world.
func (r *Reader) Files() ([]string, error) {
	if r.sliced {
		return r.files, nil
	}
	if r.files != nil {
		return r.files, nil
	}
	var files []string
	if fileExists(r.world.RollupLog()) {
		files = append(files, r.world.RollupLog())
	}
	entries, err := os.ReadDir(r.world.LogsDir())
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	var rotated []string
	latestSeen := false
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if entry.Name() == "latest.log" {
			latestSeen = true
			continue
		}
		rotated = append(rotated, filepath.Join(r.world.LogsDir(), entry.Name()))
	}
	if !latestSeen {
		return nil, fmt.Errorf("world %s: %w", r.world.Name, ErrNoLatestLog)
	}
	sort.Strings(rotated)
	files = append(files, rotated...)
	files = append(files, r.world.LatestLog())
	r.files = files
	return files, nil
}

// Events streams classified events to fn. Nickname associations are scoped
// to this one call (one pass over the history), not per file. fn may return
// ErrStop to end the iteration early.
func (r *Reader) Events(ctx context.Context, fn func(domain.Event) error) error {
	files, err := r.Files()
	if err != nil {
		return err
	}
	pass := r.classifier.NewPass()
	if r.reversed {
		for i := len(files) - 1; i >= 0; i-- {
			events, err := r.fileEvents(ctx, pass, files[i])
			if err != nil {
				return err
			}
			for j := len(events) - 1; j >= 0; j-- {
				if err := fn(events[j]); err != nil {
					if errors.Is(err, ErrStop) {
						return nil
					}
					return err
				}
			}
		}
		return nil
	}
	for _, path := range files {
		if err := r.scanFile(ctx, path, func(line string) error {
			ev, ok := r.classifier.Classify(pass, line)
			if !ok {
				return nil
			}
			if ev.Type == domain.EventGibberish {
				ev.Path = path
			}
			return fn(ev)
		}); err != nil {
			if errors.Is(err, ErrStop) {
				return nil
			}
			return err
		}
	}
	return nil
}

// fileEvents classifies one whole file in forward order. Reversed iteration
// still parses each file top-to-bottom so authenticator associations are
// observed before the lines that rely on them, then emits in reverse.
func (r *Reader) fileEvents(ctx context.Context, pass *classify.Pass, path string) ([]domain.Event, error) {
	var events []domain.Event
	err := r.scanFile(ctx, path, func(line string) error {
		ev, ok := r.classifier.Classify(pass, line)
		if !ok {
			return nil
		}
		if ev.Type == domain.EventGibberish {
			ev.Path = path
		}
		events = append(events, ev)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}

// scanFile streams the raw lines of one log file, decompressing .gz files
func (r *Reader) scanFile(ctx context.Context, path string, fn func(string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			r.log.Debug("failed to close log file", zap.String("path", path), zap.Error(cerr))
		}
	}()

	var src io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return fmt.Errorf("open %s: %w", path, err)
		}
		defer gz.Close()
		src = gz
	}

	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(scanner.Text()); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return nil
}

// fileDate extracts the rotation date embedded in a file name like
// 2021-01-01-3.log or 2021-01-01-3.log.gz
func fileDate(path string) (time.Time, bool) {
	name := filepath.Base(path)
	if len(name) < len("2006-01-02") {
		return time.Time{}, false
	}
	date, err := time.ParseInLocation("2006-01-02", name[:len("2006-01-02")], time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return date, true
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
