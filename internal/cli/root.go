// Package cli implements the minelog command surface.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/benbjohnson/clock"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"

	"github.com/minelog/minelog/internal/config"
)

// CLI is the root command structure for minelog
type CLI struct {
	// Global flags
	Format    string `short:"f" default:"${config_format}" enum:"auto,ndjson,json,table" help:"Output format"`
	ServerDir string `short:"d" default:"${config_server_dir}" help:"Minecraft server root directory"`
	World     string `short:"w" default:"${config_world}" help:"World name"`
	CacheDir  string `default:"${config_cache_dir}" help:"Aggregate cache directory (empty disables caching)"`
	Verbose   bool   `short:"v" help:"Show debug output on stderr"`

	// Commands
	Events   EventsCmd   `cmd:"" help:"Stream classified log events"`
	Sessions SessionsCmd `cmd:"" help:"Reconstruct uptime windows and player sessions"`
	Deaths   DeathsCmd   `cmd:"" help:"Show player death history"`
	LastSeen LastSeenCmd `cmd:"" name:"lastseen" help:"Show when each player was last seen"`
	Winners  WinnersCmd  `cmd:"" help:"Show achievement completion times"`
	Watch    WatchCmd    `cmd:"" help:"Follow latest.log and emit events live"`
	Config   ConfigCmd   `cmd:"" help:"Show effective configuration"`
	Version  VersionCmd  `cmd:"" help:"Show version information"`
}

// Globals holds shared state for all commands
type Globals struct {
	Format    string
	ServerDir string
	World     string
	CacheDir  string
	Verbose   bool
	Stdout    io.Writer
	Stderr    io.Writer
	Config    *config.Config
	Logger    *zap.Logger
	Clock     clock.Clock
}

// NewGlobals creates a Globals instance from CLI flags with config fallbacks
func NewGlobals(c *CLI, cfg *config.Config, logger *zap.Logger) *Globals {
	if cfg == nil {
		cfg = config.Default()
	}
	g := &Globals{
		Format:    c.Format,
		ServerDir: c.ServerDir,
		World:     c.World,
		CacheDir:  c.CacheDir,
		Verbose:   c.Verbose || cfg.Verbose,
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
		Config:    cfg,
		Logger:    logger,
		Clock:     clock.New(),
	}
	return g
}

// ResolveFormat maps the "auto" format to a concrete one: tables for humans
// on a terminal, line-oriented JSON otherwise. streaming selects ndjson over
// a single JSON document for non-terminal output.
func (g *Globals) ResolveFormat(streaming bool) string {
	if g.Format != "auto" {
		return g.Format
	}
	if f, ok := g.Stdout.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		return "table"
	}
	if streaming {
		return "ndjson"
	}
	return "json"
}

// Debug prints a debug message if verbose mode is enabled
func (g *Globals) Debug(format string, args ...interface{}) {
	if g.Verbose {
		fmt.Fprintf(g.Stderr, "[DEBUG] "+format+"\n", args...)
	}
}

// VersionCmd shows version information
type VersionCmd struct{}

// Run executes the version command
func (v *VersionCmd) Run(globals *Globals) error {
	if globals.ResolveFormat(false) == "table" {
		io.WriteString(globals.Stdout, "minelog version "+Version+" ("+Commit+")\n")
	} else {
		io.WriteString(globals.Stdout, `{"type":"version","version":"`+Version+`","commit":"`+Commit+`"}`+"\n")
	}
	return nil
}

// Version information (set at build time)
var (
	Version = "dev"
	Commit  = "none"
)
