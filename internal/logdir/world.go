package logdir

import (
	"os"
	"path/filepath"
	"sort"
)

// World is one Minecraft world directory under the server dir
type World struct {
	Name string
	Path string
}

// NewWorld builds a World rooted at serverDir/name
func NewWorld(serverDir, name string) World {
	return World{Name: name, Path: filepath.Join(serverDir, name)}
}

// LogsDir returns the rotated-log directory (may not exist on old worlds)
func (w World) LogsDir() string {
	return filepath.Join(w.Path, "logs")
}

// LatestLog returns the path of the mandatory current log file
func (w World) LatestLog() string {
	return filepath.Join(w.LogsDir(), "latest.log")
}

// RollupLog returns the path of the optional pre-rotation historical log
func (w World) RollupLog() string {
	return filepath.Join(w.Path, "server.log")
}

// Worlds enumerates the world directories under serverDir: any directory
// containing either logs/latest.log or a legacy server.log rollup
func Worlds(serverDir string) ([]World, error) {
	entries, err := os.ReadDir(serverDir)
	if err != nil {
		return nil, err
	}
	var worlds []World
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		w := NewWorld(serverDir, entry.Name())
		if fileExists(w.LatestLog()) || fileExists(w.RollupLog()) {
			worlds = append(worlds, w)
		}
	}
	sort.Slice(worlds, func(i, j int) bool { return worlds[i].Name < worlds[j].Name })
	return worlds, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
