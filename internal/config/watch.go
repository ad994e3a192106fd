package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/homedeck/homedeck/internal/logging"
)

const minTimeBetweenReloads = time.Second

// Watch observes the configuration file for writes and invokes onChange after
// each one, debounced so editors that fire several events per save trigger a
// single reload. It blocks until ctx is cancelled.
func Watch(ctx context.Context, path string, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the directory rather than the file: many editors replace the
	// file on save, which would otherwise drop the watch.
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		return err
	}

	lastReload := time.Time{}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != absPath {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			now := time.Now()
			if now.Sub(lastReload) < minTimeBetweenReloads {
				continue
			}
			lastReload = now
			logging.Debug("Config file modified, reloading", zap.String("path", absPath))
			onChange()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logging.Warn("Config watcher error", zap.Error(err))
		}
	}
}
