// Package pagecache implements the cache-invalidation collaborator fired
// on every datastore save.
package pagecache

import (
	"log/slog"
	"os"
	"path/filepath"
)

// Invalidator receives a best-effort signal whenever the collection
// changes on disk.
type Invalidator interface {
	Invalidate()
}

// Dir invalidates a directory of rendered page caches by deleting its
// *.cache files. Failures are logged and otherwise ignored; a stale page
// cache is not worth failing a save over.
type Dir struct {
	path   string
	logger *slog.Logger
}

// NewDir creates a directory-backed invalidator. An empty path disables it.
func NewDir(path string, logger *slog.Logger) *Dir {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dir{path: path, logger: logger}
}

// Invalidate removes every cached page file under the directory.
func (d *Dir) Invalidate() {
	if d.path == "" {
		return
	}
	matches, err := filepath.Glob(filepath.Join(d.path, "*.cache"))
	if err != nil {
		return
	}
	for _, m := range matches {
		if err := os.Remove(m); err != nil {
			d.logger.Warn("pagecache: remove failed",
				slog.String("file", m),
				slog.String("error", err.Error()))
		}
	}
}

// Noop is an Invalidator that does nothing, for callers without a page cache.
type Noop struct{}

// Invalidate implements Invalidator.
func (Noop) Invalidate() {}
