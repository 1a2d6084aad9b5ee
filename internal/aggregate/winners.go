package aggregate

import (
	"context"

	"go.uber.org/zap"

	"github.com/minelog/minelog/internal/cache"
	"github.com/minelog/minelog/internal/domain"
	"github.com/minelog/minelog/internal/logdir"
)

const winnersCacheKey = "achievement-winners.json"

// winnersBlob is the persisted cache shape. NumAchievements fingerprints the
// total achievement count: when a game update adds achievements, previously
// recorded completions are void and the list is emptied.
type winnersBlob struct {
	Result          map[string]domain.Timestamp `json:"result"`
	NumAchievements int                         `json:"numAchievements"`
}

// Winners finds, for each player who completed every achievement, the time
// of their final achievement.
type Winners struct {
	base
	numAchievements int
}

// NewWinners builds the achievement-winner aggregator. numAchievements is
// the game's current total achievement count, sourced from static asset
// data.
func NewWinners(store cache.Store, numAchievements int, opts ...Option) *Winners {
	return &Winners{base: newBase(store, buildOptions(opts)), numAchievements: numAchievements}
}

// Completions maps each confirmed winner to their completion time.
// candidates is the set of players known to have a full achievement score;
// only their completion times need to be located in the log history.
//
// The scan runs in reverse chronological order on purpose: only each
// remaining candidate's most recent achievement matters, so scanning
// backward finds it first and lets the scan stop as soon as every candidate
// is accounted for.
func (w *Winners) Completions(ctx context.Context, reader *logdir.Reader, candidates []domain.Player) (map[string]domain.Timestamp, error) {
	v, err, _ := w.sf.Do("winners/"+reader.World().Name, func() (any, error) {
		return w.completions(ctx, reader, candidates)
	})
	if err != nil {
		return nil, err
	}
	return v.(map[string]domain.Timestamp), nil
}

func (w *Winners) completions(ctx context.Context, reader *logdir.Reader, candidates []domain.Player) (map[string]domain.Timestamp, error) {
	started := w.clk.Now()
	pending := make(map[string]bool, len(candidates))
	for _, p := range candidates {
		pending[p.String()] = true
	}

	result := make(map[string]domain.Timestamp)
	scan := reader

	var cached winnersBlob
	if mtime, ok := w.loadBlob(winnersCacheKey, &cached); ok {
		if cached.NumAchievements == w.numAchievements {
			for player, at := range cached.Result {
				result[player] = at
				delete(pending, player)
			}
			sliced, err := incrementalReader(reader, mtime)
			if err != nil {
				return nil, err
			}
			scan = sliced
		} else {
			// new achievements introduced; every completion must have
			// happened since, so the cached list is void
			w.log.Debug("achievement count changed, full rescan",
				zap.Int("cached", cached.NumAchievements), zap.Int("current", w.numAchievements))
		}
	}

	if len(pending) > 0 {
		if err := scan.Reversed().Events(ctx, func(ev domain.Event) error {
			if ev.Type != domain.EventAchievement {
				return nil
			}
			player := ev.Player.String()
			if !pending[player] {
				return nil
			}
			result[player] = domain.NewTimestamp(ev.Time)
			delete(pending, player)
			if len(pending) == 0 {
				return logdir.ErrStop
			}
			return nil
		}); err != nil {
			return nil, err
		}
	}

	w.storeBlob(winnersCacheKey, winnersBlob{Result: result, NumAchievements: w.numAchievements})
	w.log.Debug("achievement winners refreshed",
		zap.String("world", reader.World().Name),
		zap.Int("winners", len(result)),
		zap.Duration("elapsed", w.clk.Now().Sub(started)))
	return result, nil
}
