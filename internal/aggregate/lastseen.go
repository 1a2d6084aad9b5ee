package aggregate

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/minelog/minelog/internal/cache"
	"github.com/minelog/minelog/internal/domain"
	"github.com/minelog/minelog/internal/logdir"
)

// WorldSeen is a last-seen timestamp qualified with the world it was
// observed in
type WorldSeen struct {
	Time  domain.Timestamp `json:"time"`
	World string           `json:"world"`
}

// LastSeen tracks the most recent join or leave timestamp per player
type LastSeen struct {
	base
}

// NewLastSeen builds the last-seen aggregator
func NewLastSeen(store cache.Store, opts ...Option) *LastSeen {
	return &LastSeen{base: newBase(store, buildOptions(opts))}
}

// World returns the newest join/leave timestamp per player for one world.
// Events are folded in chronological order so the final value per player is
// truly the latest (last write wins).
func (l *LastSeen) World(ctx context.Context, reader *logdir.Reader) (map[string]domain.Timestamp, error) {
	v, err, _ := l.sf.Do("last-seen/"+reader.World().Name, func() (any, error) {
		return l.world(ctx, reader)
	})
	if err != nil {
		return nil, err
	}
	return v.(map[string]domain.Timestamp), nil
}

func (l *LastSeen) world(ctx context.Context, reader *logdir.Reader) (map[string]domain.Timestamp, error) {
	key := "last-seen/" + reader.World().Name + ".json"
	result := make(map[string]domain.Timestamp)
	scan := reader

	// the last-seen cache has no tunable parameters, so the blob itself is
	// the whole fingerprint
	if mtime, ok := l.loadBlob(key, &result); ok {
		sliced, err := incrementalReader(reader, mtime)
		if err != nil {
			return nil, err
		}
		scan = sliced
	} else {
		result = make(map[string]domain.Timestamp)
	}

	if err := scan.Events(ctx, func(ev domain.Event) error {
		if ev.Type != domain.EventJoin && ev.Type != domain.EventLeave {
			return nil
		}
		result[ev.Player.String()] = domain.NewTimestamp(ev.Time)
		return nil
	}); err != nil {
		return nil, err
	}

	l.storeBlob(key, result)
	return result, nil
}

// AllWorlds merges per-world last-seen maps across every given world,
// keeping the newest timestamp per player. Worlds are scanned concurrently.
// A world without a readable log history (legacy rollup-only directories)
// is skipped rather than failing the whole merge.
func (l *LastSeen) AllWorlds(ctx context.Context, readers []*logdir.Reader) (map[string]WorldSeen, error) {
	var mu sync.Mutex
	merged := make(map[string]WorldSeen)

	group, ctx := errgroup.WithContext(ctx)
	for _, reader := range readers {
		reader := reader // pin per-iteration value; go directive is below 1.22
		group.Go(func() error {
			seen, err := l.World(ctx, reader)
			if err != nil {
				if errors.Is(err, logdir.ErrNoLatestLog) {
					l.log.Warn("skipping world without latest.log",
						zap.String("world", reader.World().Name))
					return nil
				}
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			for player, at := range seen {
				if prev, ok := merged[player]; ok && !at.After(prev.Time.Time) {
					continue
				}
				merged[player] = WorldSeen{Time: at, World: reader.World().Name}
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	l.log.Debug("merged last-seen across worlds",
		zap.Int("worlds", len(readers)), zap.Int("players", len(merged)))
	return merged, nil
}
