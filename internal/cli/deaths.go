package cli

import (
	"context"

	"github.com/minelog/minelog/internal/aggregate"
	"github.com/minelog/minelog/internal/output"
)

// DeathsCmd shows the death history derived from the world's logs
type DeathsCmd struct {
	Latest bool `help:"Only each player's most recent death"`
}

// Run executes the deaths command
func (c *DeathsCmd) Run(globals *Globals) error {
	env := newWorldEnv(globals, "")
	deaths := aggregate.NewDeaths(env.store, env.classifier.DeathMessageCount(),
		aggregate.WithLogger(globals.Logger), aggregate.WithClock(globals.Clock))

	if c.Latest {
		latest, err := deaths.Latest(context.Background(), env.reader)
		if err != nil {
			return readerError(globals, err)
		}
		if globals.ResolveFormat(false) == "table" {
			return output.LatestDeathsTable(globals.Stdout, latest)
		}
		return output.WriteDocument(globals.Stdout, latest)
	}

	all, err := deaths.All(context.Background(), env.reader)
	if err != nil {
		return readerError(globals, err)
	}
	if globals.ResolveFormat(false) == "table" {
		return output.DeathsTable(globals.Stdout, all)
	}
	return output.WriteDocument(globals.Stdout, all)
}
