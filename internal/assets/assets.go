// Package assets reads static game data shipped alongside the tool.
package assets

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/gjson"
)

// AchievementCount returns the game's total achievement count: the number of
// top-level entries in <assetsDir>/achievements.json. This count is the
// cache fingerprint for the achievement-winner aggregator.
func AchievementCount(assetsDir string) (int, error) {
	path := filepath.Join(assetsDir, "achievements.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	parsed := gjson.ParseBytes(data)
	if !parsed.IsObject() && !parsed.IsArray() {
		return 0, fmt.Errorf("%s: expected a JSON object or array", path)
	}
	count := 0
	parsed.ForEach(func(_, _ gjson.Result) bool {
		count++
		return true
	})
	return count, nil
}
