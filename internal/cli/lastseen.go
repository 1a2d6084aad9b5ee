package cli

import (
	"context"

	"github.com/minelog/minelog/internal/aggregate"
	"github.com/minelog/minelog/internal/logdir"
	"github.com/minelog/minelog/internal/output"
)

// LastSeenCmd shows the most recent join/leave timestamp per player
type LastSeenCmd struct {
	AllWorlds bool `help:"Merge all worlds under the server dir, keeping the newest timestamp per player"`
}

// Run executes the lastseen command
func (c *LastSeenCmd) Run(globals *Globals) error {
	env := newWorldEnv(globals, "")
	lastSeen := aggregate.NewLastSeen(env.store,
		aggregate.WithLogger(globals.Logger), aggregate.WithClock(globals.Clock))

	if !c.AllWorlds {
		seen, err := lastSeen.World(context.Background(), env.reader)
		if err != nil {
			return readerError(globals, err)
		}
		if globals.ResolveFormat(false) == "table" {
			return output.TimestampsTable(globals.Stdout, "Last seen", seen)
		}
		return output.WriteDocument(globals.Stdout, seen)
	}

	worlds, err := logdir.Worlds(globals.ServerDir)
	if err != nil {
		return outputErrorCommon(globals, "SERVER_DIR", err.Error())
	}
	readers := make([]*logdir.Reader, 0, len(worlds))
	for _, world := range worlds {
		we := newWorldEnv(globals, world.Name)
		readers = append(readers, we.reader)
	}
	merged, err := lastSeen.AllWorlds(context.Background(), readers)
	if err != nil {
		return readerError(globals, err)
	}
	if globals.ResolveFormat(false) == "table" {
		return output.WorldSeenTable(globals.Stdout, merged)
	}
	return output.WriteDocument(globals.Stdout, merged)
}
