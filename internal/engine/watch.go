package engine

import (
	"context"
	"path/filepath"

	"GopherScene/internal/logger"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// WatchConfig reloads the config at path whenever it is written and sends the result
// on the returned channel. Files that fail to parse are logged and skipped.
// The channel is closed once ctx is done.
func WatchConfig(ctx context.Context, path string) (<-chan Config, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// editors often replace the file, so watch the directory
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, err
	}

	out := make(chan Config, 1)
	go func() {
		defer close(out)
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != abs {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				cfg, err := LoadConfig(abs)
				if err != nil {
					logger.Log.Warn("Config reload failed", zap.String("path", abs), zap.Error(err))
					continue
				}
				logger.Log.Info("Config reloaded", zap.String("path", abs))
				// keep only the newest config pending
				select {
				case <-out:
				default:
				}
				select {
				case out <- cfg:
				case <-ctx.Done():
					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Log.Warn("Config watcher error", zap.Error(err))
			}
		}
	}()
	return out, nil
}
