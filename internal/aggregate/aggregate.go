// Package aggregate derives persistent views from the event stream: death
// history, achievement completions and last-seen timestamps.
//
// All three follow the same incremental protocol: read the cached aggregate,
// check its parameter fingerprint against the current configuration, and on
// a hit rescan only the log suffix newer than the cache file (minus a two-day
// overlap), folding new events into the cached state. A fingerprint mismatch,
// a corrupt blob or a disabled cache all degrade to a full-history rescan.
// Cache writes are best-effort and never fail the caller.
package aggregate

import (
	"encoding/json"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/minelog/minelog/internal/cache"
	"github.com/minelog/minelog/internal/logdir"
)

// rescanOverlapDays widens the incremental rescan window below the cache
// file's modification time. Log timestamps are UTC while file mtimes are in
// the host zone, so the two clocks can disagree by up to a day in either
// direction.
const rescanOverlapDays = 2

// base is the plumbing shared by every aggregator
type base struct {
	store cache.Store
	clk   clock.Clock
	log   *zap.Logger
	sf    singleflight.Group
}

func newBase(store cache.Store, opts options) base {
	b := base{store: store, clk: opts.clk, log: opts.log}
	if b.store == nil {
		b.store = cache.Disabled{}
	}
	if b.clk == nil {
		b.clk = clock.New()
	}
	if b.log == nil {
		b.log = zap.NewNop()
	}
	return b
}

type options struct {
	clk clock.Clock
	log *zap.Logger
}

// Option configures an aggregator
type Option func(*options)

// WithClock injects a clock, for deterministic tests
func WithClock(clk clock.Clock) Option {
	return func(o *options) { o.clk = clk }
}

// WithLogger sets the diagnostic logger
func WithLogger(log *zap.Logger) Option {
	return func(o *options) { o.log = log }
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// loadBlob fetches and unmarshals a cached aggregate. Any failure (missing
// key, unreadable file, invalid JSON) is reported as a plain miss.
func (b *base) loadBlob(key string, v any) (time.Time, bool) {
	data, mtime, err := b.store.Get(key)
	if err != nil {
		return time.Time{}, false
	}
	if err := json.Unmarshal(data, v); err != nil {
		b.log.Warn("discarding corrupt cache blob", zap.String("key", key), zap.Error(err))
		return time.Time{}, false
	}
	return mtime, true
}

// storeBlob persists an aggregate. Failures are logged and swallowed; the
// computed result is still returned to the caller.
func (b *base) storeBlob(key string, v any) {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		b.log.Warn("cannot marshal cache blob", zap.String("key", key), zap.Error(err))
		return
	}
	if err := b.store.Put(key, data); err != nil {
		b.log.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// incrementalReader slices reader to the suffix worth rescanning given the
// cache file's modification time
func incrementalReader(reader *logdir.Reader, cacheMtime time.Time) (*logdir.Reader, error) {
	from := cacheMtime.AddDate(0, 0, -rescanOverlapDays)
	return reader.Slice(from, time.Time{})
}
