// Package config loads minelog configuration from files and environment.
package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	// Global settings
	Format  string `mapstructure:"format"`
	Verbose bool   `mapstructure:"verbose"`

	// ServerDir is the Minecraft server root containing one directory per
	// world
	ServerDir string `mapstructure:"server_dir"`
	// World is the default world name
	World string `mapstructure:"world"`
	// CacheDir enables aggregate caching when set; empty means every call
	// rescans the full log history
	CacheDir string `mapstructure:"cache_dir"`
	// AssetsDir holds static game data (achievements.json)
	AssetsDir string `mapstructure:"assets_dir"`
	// NickHistory points at the nickname-ownership history file
	NickHistory string `mapstructure:"nick_history"`

	// DeathMessages overrides the built-in death-message pattern list
	DeathMessages []string `mapstructure:"death_messages"`
}

// Default returns a Config with default values
func Default() *Config {
	return &Config{
		Format:    "auto",
		ServerDir: "/opt/minecraft/server",
		World:     "world",
	}
}

// Load loads configuration from files and environment. Directories are
// searched in order — the current directory, the home directory,
// $XDG_CONFIG_HOME/minelog (or ~/.config/minelog) and /etc/minelog — and
// within each directory the names .minelog.yaml, .minelog.yml, minelog.yaml,
// minelog.yml and config.yaml; the first existing file wins.
func Load() (*Config, error) {
	cfg := Default()

	configFile := findConfigFile()
	if configFile != "" {
		v := viper.New()
		v.SetConfigFile(configFile)

		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}

		if err := v.Unmarshal(cfg); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// LoadFromFile loads configuration from a specific file
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// ConfigFile returns the path to the config file that would be loaded
func ConfigFile() string {
	return findConfigFile()
}

// findConfigFile searches for a config file in standard locations
func findConfigFile() string {
	names := []string{".minelog.yaml", ".minelog.yml", "minelog.yaml", "minelog.yml"}

	home, homeErr := os.UserHomeDir()
	configDir, configDirErr := os.UserConfigDir()

	var searchPaths []string
	cwd, err := os.Getwd()
	if err == nil {
		searchPaths = append(searchPaths, cwd)
	}
	if homeErr == nil {
		searchPaths = append(searchPaths, home)
	}
	if configDirErr == nil {
		searchPaths = append(searchPaths, filepath.Join(configDir, "minelog"))
	}
	searchPaths = append(searchPaths, "/etc/minelog")

	for _, dir := range searchPaths {
		for _, name := range names {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
		path := filepath.Join(dir, "config.yaml")
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MINELOG_FORMAT"); v != "" {
		cfg.Format = v
	}
	if v := os.Getenv("MINELOG_SERVER_DIR"); v != "" {
		cfg.ServerDir = v
	}
	if v := os.Getenv("MINELOG_WORLD"); v != "" {
		cfg.World = v
	}
	if v := os.Getenv("MINELOG_CACHE_DIR"); v != "" {
		cfg.CacheDir = v
	}
	if v := os.Getenv("MINELOG_ASSETS_DIR"); v != "" {
		cfg.AssetsDir = v
	}
	if v := os.Getenv("MINELOG_VERBOSE"); v == "true" || v == "1" {
		cfg.Verbose = true
	}
}
