// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// DefaultDebounce is how long the watcher waits for writes to settle.
const DefaultDebounce = 200 * time.Millisecond

// ReloadFunc receives a freshly loaded configuration.
type ReloadFunc func(cfg *Config)

// Watch reloads the config file at path whenever it changes and passes the
// result to fn. The parent directory is watched so that editors which
// replace the file by rename are seen too. A file that fails to load or
// validate is logged and skipped; the previous configuration stays active.
//
// Watch blocks until ctx is done.
func Watch(ctx context.Context, path string, fn ReloadFunc) error {
	return WatchWithDebounce(ctx, path, DefaultDebounce, fn)
}

// WatchWithDebounce is Watch with an explicit debounce interval.
func WatchWithDebounce(ctx context.Context, path string, debounce time.Duration, fn ReloadFunc) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrap(err, "failed to resolve config path")
	}
	dir := filepath.Dir(absPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(err, "failed to create config directory")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create watcher")
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return errors.Wrapf(err, "failed to watch %s", dir)
	}

	logger := log.With().Str("component", "config").Str("path", absPath).Logger()

	// Stopped timer; armed on the first relevant event.
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

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
			if event.Op&fsnotify.Write == fsnotify.Write ||
				event.Op&fsnotify.Create == fsnotify.Create ||
				event.Op&fsnotify.Rename == fsnotify.Rename {
				timer.Reset(debounce)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn().Err(err).Msg("config watcher error")

		case <-timer.C:
			cfg, err := LoadFromPath(absPath)
			if err != nil {
				logger.Warn().Err(err).Msg("config reload failed, keeping previous")
				continue
			}
			logger.Info().Msg("config reloaded")
			fn(cfg)
		}
	}
}
