package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/minelog/minelog/internal/cli"
	"github.com/minelog/minelog/internal/config"
	"github.com/minelog/minelog/internal/logging"
)

const quickStart = `minelog - read a Minecraft server's logs as structured data

START HERE:
  minelog events -d /opt/minecraft/server -w world

Flags:
  -d    Server root directory (contains one directory per world)
  -w    World name

Other useful commands:
  minelog sessions                      Uptime windows and player sessions
  minelog deaths --latest               Each player's most recent death
  minelog lastseen --all-worlds         Last-seen times across all worlds
  minelog watch                         Follow latest.log live
`

func main() {
	// Show quick start if no args provided
	if len(os.Args) == 1 {
		fmt.Print(quickStart)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
		cfg = config.Default()
	}

	var c cli.CLI

	// Config values become flag defaults; explicit flags override them
	vars := kong.Vars{
		"config_format":     cfg.Format,
		"config_server_dir": cfg.ServerDir,
		"config_world":      cfg.World,
		"config_cache_dir":  cfg.CacheDir,
		"config_assets_dir": cfg.AssetsDir,
	}

	ctx := kong.Parse(&c,
		kong.Name("minelog"),
		kong.Description("Read a Minecraft server's log history as typed events, sessions and aggregates"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}),
		vars,
	)

	logger := logging.New(c.Verbose || cfg.Verbose)
	defer logger.Sync()

	globals := cli.NewGlobals(&c, cfg, logger)
	if err := ctx.Run(globals); err != nil {
		os.Exit(1)
	}
}
