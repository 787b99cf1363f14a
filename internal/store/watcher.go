package store

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/seywald/marque/internal/checksum"
)

// ReloadCallback is called after a watcher-driven reload of the collection.
type ReloadCallback func()

// Watch monitors the datastore file for external replacement (another
// writer process, a restore from backup) and reloads the in-memory
// collection when its content actually changed, until ctx is cancelled.
//
// The parent directory is watched rather than the file itself: atomic
// saves replace the file by rename, which would silently drop a watch
// on the old inode. Events are debounced, and a checksum comparison
// against the store's last known content skips reloads triggered by the
// store's own saves.
func (s *Store) Watch(ctx context.Context, logger *slog.Logger, cb ReloadCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	path := s.io.Path()
	if err := w.Add(filepath.Dir(path)); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("datastore", path))

	var debounce *time.Timer
	var debounceCh <-chan time.Time

	scheduleReload := func() {
		if debounce == nil {
			debounce = time.NewTimer(200 * time.Millisecond)
			debounceCh = debounce.C
		} else {
			debounce.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-debounceCh:
			sum := checksum.SumFile(path)
			if sum == "" || sum == s.LastChecksum() {
				continue
			}
			if err := s.Reload(); err != nil {
				logger.Warn("watcher: reload failed", slog.String("error", err.Error()))
				continue
			}
			logger.Info("watcher: datastore reloaded", slog.String("datastore", path))
			if cb != nil {
				cb()
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Name != path {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
				scheduleReload()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
