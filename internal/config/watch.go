package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDebounce = 200 * time.Millisecond

// Store holds the current settings snapshot. Readers never see a
// partially applied reload.
type Store struct {
	cur atomic.Pointer[Config]
}

// NewStore returns a store holding cfg, or the defaults when cfg is nil.
func NewStore(cfg *Config) *Store {
	if cfg == nil {
		cfg = Default()
	}
	s := &Store{}
	s.cur.Store(cfg)
	return s
}

// Get returns the current settings. The result must not be modified.
func (s *Store) Get() *Config {
	return s.cur.Load()
}

// Set replaces the current settings.
func (s *Store) Set(cfg *Config) {
	s.cur.Store(cfg)
}

// ActivePath returns the file Watch should follow: explicit when set,
// otherwise the highest-priority config file that exists, falling back
// to the XDG location.
func ActivePath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	paths := getConfigPaths()
	for i := len(paths) - 1; i >= 0; i-- {
		if _, err := os.Stat(paths[i]); err == nil {
			return paths[i]
		}
	}
	return paths[0]
}

// Watch reloads path into store whenever the file changes, until ctx is
// cancelled. A file that fails to load or validate is logged and the
// previous settings stay in effect. onChange, if non-nil, runs after each
// successful reload.
func Watch(ctx context.Context, path string, store *Store, logger *slog.Logger, onChange func(*Config)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	// Editors often replace the file, so watch the directory.
	if err := w.Add(dir); err != nil {
		return err
	}
	logger.Info("config watcher: started", slog.String("path", abs))

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("config watcher: stopped")
			return nil

		case <-fire:
			fire = nil
			cfg, err := Load(abs)
			if err != nil {
				logger.Warn("config watcher: reload failed",
					slog.String("path", abs), slog.String("error", err.Error()))
				continue
			}
			store.Set(cfg)
			logger.Info("config watcher: reloaded", slog.String("path", abs))
			if onChange != nil {
				onChange(cfg)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(reloadDebounce)
			} else {
				timer.Reset(reloadDebounce)
			}
			fire = timer.C

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("config watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
