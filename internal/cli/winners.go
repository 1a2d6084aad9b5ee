package cli

import (
	"context"

	"github.com/minelog/minelog/internal/aggregate"
	"github.com/minelog/minelog/internal/assets"
	"github.com/minelog/minelog/internal/domain"
	"github.com/minelog/minelog/internal/output"
)

// WinnersCmd shows when each player who completed every achievement earned
// their final one
type WinnersCmd struct {
	AssetsDir    string   `default:"${config_assets_dir}" help:"Directory containing achievements.json"`
	Achievements *int     `help:"Override the total achievement count instead of reading the assets file"`
	Candidate    []string `short:"c" help:"Players with a full achievement score; defaults to every known player"`
}

// Run executes the winners command
func (c *WinnersCmd) Run(globals *Globals) error {
	env := newWorldEnv(globals, "")

	var count int
	if c.Achievements != nil {
		count = *c.Achievements
	} else {
		var err error
		count, err = assets.AchievementCount(c.AssetsDir)
		if err != nil {
			return outputErrorCommon(globals, "NO_ACHIEVEMENT_DATA",
				"cannot determine achievement count: "+err.Error())
		}
	}

	var candidates []domain.Player
	if len(c.Candidate) > 0 {
		for _, raw := range c.Candidate {
			player, err := domain.ParsePlayer(raw)
			if err != nil {
				return outputErrorCommon(globals, "BAD_PLAYER", "invalid player "+raw)
			}
			candidates = append(candidates, player)
		}
	} else {
		candidates = env.resolver.KnownPlayers()
	}

	winners := aggregate.NewWinners(env.store, count,
		aggregate.WithLogger(globals.Logger), aggregate.WithClock(globals.Clock))
	result, err := winners.Completions(context.Background(), env.reader, candidates)
	if err != nil {
		return readerError(globals, err)
	}

	if globals.ResolveFormat(false) == "table" {
		return output.TimestampsTable(globals.Stdout, "Completed", result)
	}
	return output.WriteDocument(globals.Stdout, result)
}
