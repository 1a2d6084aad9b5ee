package aggregate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/minelog/minelog/internal/classify"
	"github.com/minelog/minelog/internal/logdir"
)

// writeLogs lays out world log files under serverDir and returns a reader
// over them. Keys are paths relative to the world dir.
func writeLogs(t *testing.T, serverDir, world string, files map[string]string) *logdir.Reader {
	t.Helper()
	w := logdir.NewWorld(serverDir, world)
	for rel, content := range files {
		path := filepath.Join(w.Path, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return logdir.NewReader(w, classify.New(nil))
}
