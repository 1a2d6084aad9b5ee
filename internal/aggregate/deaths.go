package aggregate

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/minelog/minelog/internal/cache"
	"github.com/minelog/minelog/internal/domain"
	"github.com/minelog/minelog/internal/logdir"
)

const deathsCacheKey = "all-deaths.json"

// Death is one recorded death of a player
type Death struct {
	Cause     string           `json:"cause"`
	Timestamp domain.Timestamp `json:"timestamp"`
}

// LatestDeaths is the most recent death of each player plus the player who
// died most recently overall
type LatestDeaths struct {
	Deaths     map[string]Death `json:"deaths"`
	LastPerson string           `json:"lastPerson"`
}

// deathsBlob is the persisted cache shape. NumMessages fingerprints the
// death-message pattern list: a new pattern means old logs may contain
// deaths the previous scan classified as unknown, so the whole history must
// be rescanned.
type deathsBlob struct {
	Deaths      map[string][]Death `json:"deaths"`
	NumMessages int                `json:"numMessages"`
}

// Deaths aggregates the full death history per player. Deaths are
// append-only; nothing is ever deduplicated.
type Deaths struct {
	base
	numMessages int
}

// NewDeaths builds the death-history aggregator. numMessages must be the
// classifier's DeathMessageCount.
func NewDeaths(store cache.Store, numMessages int, opts ...Option) *Deaths {
	return &Deaths{base: newBase(store, buildOptions(opts)), numMessages: numMessages}
}

// All returns every known death per player, in chronological order
func (d *Deaths) All(ctx context.Context, reader *logdir.Reader) (map[string][]Death, error) {
	v, err, _ := d.sf.Do("deaths/"+reader.World().Name, func() (any, error) {
		return d.all(ctx, reader)
	})
	if err != nil {
		return nil, err
	}
	return v.(map[string][]Death), nil
}

func (d *Deaths) all(ctx context.Context, reader *logdir.Reader) (map[string][]Death, error) {
	started := d.clk.Now()
	result := make(map[string][]Death)
	scan := reader

	var cached deathsBlob
	if mtime, ok := d.loadBlob(deathsCacheKey, &cached); ok {
		if cached.NumMessages == d.numMessages {
			for player, deaths := range cached.Deaths {
				result[player] = deaths
			}
			sliced, err := incrementalReader(reader, mtime)
			if err != nil {
				return nil, err
			}
			scan = sliced
		} else {
			d.log.Debug("death-message list changed, full rescan",
				zap.Int("cached", cached.NumMessages), zap.Int("current", d.numMessages))
		}
	}

	if err := scan.Events(ctx, func(ev domain.Event) error {
		if ev.Type != domain.EventDeath {
			return nil
		}
		player := ev.Player.String()
		result[player] = append(result[player], Death{
			Cause:     ev.Cause,
			Timestamp: domain.NewTimestamp(ev.Time),
		})
		return nil
	}); err != nil {
		return nil, err
	}

	d.storeBlob(deathsCacheKey, deathsBlob{Deaths: result, NumMessages: d.numMessages})
	d.log.Debug("death history refreshed",
		zap.String("world", reader.World().Name),
		zap.Int("players", len(result)),
		zap.Duration("elapsed", d.clk.Now().Sub(started)))
	return result, nil
}

// Latest reduces the full history to each player's most recent death and
// names the player who died last overall
func (d *Deaths) Latest(ctx context.Context, reader *logdir.Reader) (*LatestDeaths, error) {
	all, err := d.All(ctx, reader)
	if err != nil {
		return nil, err
	}
	latest := &LatestDeaths{Deaths: make(map[string]Death, len(all))}
	type candidate struct {
		player string
		death  Death
	}
	var candidates []candidate
	for player, deaths := range all {
		if len(deaths) == 0 {
			continue
		}
		last := deaths[len(deaths)-1]
		latest.Deaths[player] = last
		candidates = append(candidates, candidate{player: player, death: last})
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].death.Timestamp.After(candidates[j].death.Timestamp.Time)
	})
	if len(candidates) > 0 {
		latest.LastPerson = candidates[0].player
	}
	return latest, nil
}
