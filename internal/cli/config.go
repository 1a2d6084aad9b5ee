package cli

import (
	"fmt"

	"github.com/minelog/minelog/internal/config"
	"github.com/minelog/minelog/internal/output"
)

// ConfigCmd shows the effective configuration and where it came from
type ConfigCmd struct{}

// Run executes the config command
func (c *ConfigCmd) Run(globals *Globals) error {
	effective := map[string]any{
		"configFile": config.ConfigFile(),
		"format":     globals.Format,
		"serverDir":  globals.ServerDir,
		"world":      globals.World,
		"cacheDir":   globals.CacheDir,
		"assetsDir":  globals.Config.AssetsDir,
		"verbose":    globals.Verbose,
	}
	if globals.ResolveFormat(false) == "table" {
		if path := config.ConfigFile(); path != "" {
			fmt.Fprintf(globals.Stdout, "Config file: %s\n", path)
		} else {
			fmt.Fprintln(globals.Stdout, "Config file: (none found)")
		}
		fmt.Fprintf(globals.Stdout, "Server dir:  %s\n", globals.ServerDir)
		fmt.Fprintf(globals.Stdout, "World:       %s\n", globals.World)
		fmt.Fprintf(globals.Stdout, "Cache dir:   %s\n", globals.CacheDir)
		fmt.Fprintf(globals.Stdout, "Assets dir:  %s\n", globals.Config.AssetsDir)
		fmt.Fprintf(globals.Stdout, "Format:      %s\n", globals.Format)
		return nil
	}
	return output.WriteDocument(globals.Stdout, effective)
}
