package cli

import (
	"context"

	"github.com/minelog/minelog/internal/output"
	"github.com/minelog/minelog/internal/session"
)

// SessionsCmd reconstructs uptime windows and the player sessions they
// contain from the world's full log history
type SessionsCmd struct{}

// Run executes the sessions command
func (c *SessionsCmd) Run(globals *Globals) error {
	env := newWorldEnv(globals, "")

	windows, err := session.Reconstruct(context.Background(), env.reader)
	if err != nil {
		return readerError(globals, err)
	}

	switch globals.ResolveFormat(true) {
	case "table":
		return output.SessionsTable(globals.Stdout, windows)
	case "ndjson":
		writer := output.NewNDJSONWriter(globals.Stdout)
		for _, window := range windows {
			if err := writer.WriteValue(window); err != nil {
				return err
			}
		}
		return nil
	default:
		return output.WriteDocument(globals.Stdout, map[string]any{"uptimes": windows})
	}
}
