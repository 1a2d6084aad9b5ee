package cli

import (
	"path/filepath"

	"github.com/minelog/minelog/internal/cache"
	"github.com/minelog/minelog/internal/classify"
	"github.com/minelog/minelog/internal/ident"
	"github.com/minelog/minelog/internal/logdir"
)

// worldEnv bundles the per-world machinery most commands need
type worldEnv struct {
	world      logdir.World
	resolver   *ident.File
	classifier *classify.Classifier
	reader     *logdir.Reader
	store      cache.Store
}

// newWorldEnv wires resolver, classifier, reader and cache store for one
// world
func newWorldEnv(g *Globals, worldName string) *worldEnv {
	if worldName == "" {
		worldName = g.World
	}
	world := logdir.NewWorld(g.ServerDir, worldName)

	resolver := ident.NewFile(
		g.Config.NickHistory,
		filepath.Join(g.ServerDir, "usercache.json"),
		g.Logger,
	)

	opts := []classify.Option{classify.WithLogger(g.Logger)}
	if len(g.Config.DeathMessages) > 0 {
		opts = append(opts, classify.WithDeathMessages(g.Config.DeathMessages))
	}
	classifier := classify.New(resolver, opts...)

	var store cache.Store = cache.Disabled{}
	if g.CacheDir != "" {
		store = cache.NewDir(g.CacheDir)
	}

	return &worldEnv{
		world:      world,
		resolver:   resolver,
		classifier: classifier,
		reader:     logdir.NewReader(world, classifier, logdir.WithLogger(g.Logger)),
		store:      store,
	}
}
