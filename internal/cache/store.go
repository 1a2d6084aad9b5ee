// Package cache is a file-backed blob store for derived aggregates.
//
// Keys are hierarchical slash-separated paths ("all-deaths.json",
// "last-seen/wurst.json"). The modification time returned by Get is the
// low-water mark aggregators use to bound their incremental rescans.
package cache

import (
	"errors"
	"os"
	"path/filepath"
	"time"
)

// ErrMiss means the key has never been written (or the store is disabled)
var ErrMiss = errors.New("cache miss")

// Store reads and writes aggregate blobs. Implementations are best-effort:
// callers treat every Get failure as a miss and must not fail on Put errors.
type Store interface {
	// Get returns the blob and its last modification time
	Get(key string) ([]byte, time.Time, error)
	// Put writes the blob, creating parent directories as needed
	Put(key string, data []byte) error
}

// Dir is a Store rooted at a directory
type Dir struct {
	root string
}

// NewDir creates a Store rooted at root. The directory is created lazily on
// first Put.
func NewDir(root string) *Dir {
	return &Dir{root: root}
}

// Get implements Store
func (d *Dir) Get(key string) ([]byte, time.Time, error) {
	path := filepath.Join(d.root, filepath.FromSlash(key))
	info, err := os.Stat(path)
	if err != nil {
		return nil, time.Time{}, ErrMiss
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, time.Time{}, ErrMiss
	}
	return data, info.ModTime(), nil
}

// Put implements Store
func (d *Dir) Put(key string, data []byte) error {
	path := filepath.Join(d.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Disabled is a Store with no backing storage: every Get misses and every
// Put is dropped. Used when no cache directory is configured, so every
// aggregator call does a full rescan.
type Disabled struct{}

// Get implements Store
func (Disabled) Get(string) ([]byte, time.Time, error) {
	return nil, time.Time{}, ErrMiss
}

// Put implements Store
func (Disabled) Put(string, []byte) error {
	return nil
}
