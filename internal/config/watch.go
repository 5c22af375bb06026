package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDelay is how long the file must stay quiet before a reload
var reloadDelay = 100 * time.Millisecond

// Watch reloads the config file in dir ("" = default dir) whenever it
// changes on disk and hands the result to onChange. It blocks until ctx is
// done. The directory is watched rather than the file so editors that replace
// the file on save are still seen. Bursts of events are coalesced into one
// reload, and an empty file is skipped since it is usually mid-save.
func Watch(ctx context.Context, dir string, logger *slog.Logger, onChange func(*Config)) error {
	if logger == nil {
		logger = slog.Default()
	}
	path := FilePath(dir)
	dir = filepath.Dir(path)

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create config watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch config directory: %w", err)
	}

	var timer *time.Timer
	var timerC <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(reloadDelay)
				timerC = timer.C
			} else {
				timer.Reset(reloadDelay)
			}

		case <-timerC:
			timer, timerC = nil, nil
			if info, err := os.Stat(path); err != nil || info.Size() == 0 {
				continue
			}
			cfg, err := LoadConfig(dir)
			if err != nil {
				logger.Warn("failed to reload config", "error", err, "path", path)
				continue
			}
			logger.Debug("config reloaded", "path", path)
			onChange(cfg)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("config watcher error", "error", err)
		}
	}
}
