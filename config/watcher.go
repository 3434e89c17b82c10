package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"go.uber.org/atomic"

	"github.com/satinavrobotics/depthnav/logging"
)

// DefaultReloadDelay coalesces bursts of writes from editors into one reload.
const DefaultReloadDelay = 250 * time.Millisecond

// Watcher reloads a config file into a Store whenever it changes on disk. Files that fail to
// load are logged and skipped, leaving the previous config in place.
type Watcher struct {
	path    string
	store   *Store
	logger  logging.Logger
	fsw     *fsnotify.Watcher
	trigger func(f func())
	stopped *atomic.Bool

	// Overrides are applied on top of every reloaded file.
	Overrides AttributeMap
	// OnReload, if set, is called after a successful reload with the diff that was applied.
	OnReload func(*Diff)
}

// NewWatcher starts watching the directory holding path. Call Run to process events.
func NewWatcher(path string, store *Store, delay time.Duration, logger logging.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// editors often replace the file, so watch the directory
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		//nolint:errcheck
		fsw.Close()
		return nil, errors.Wrapf(err, "cannot watch %q", path)
	}
	if delay <= 0 {
		delay = DefaultReloadDelay
	}
	return &Watcher{
		path:    abs,
		store:   store,
		logger:  logger,
		fsw:     fsw,
		trigger: debounce.New(delay),
		stopped: atomic.NewBool(false),
	}, nil
}

// Run handles file events until ctx is done or the watcher is closed. A reload still pending
// when Run returns is discarded.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() {
		w.stopped.Store(true)
		w.trigger(func() {})
		//nolint:errcheck
		w.fsw.Close()
	}()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				w.scheduleReload()
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warnw("config watcher error", "path", w.path, "error", err)
		}
	}
}

func (w *Watcher) scheduleReload() {
	w.trigger(func() {
		if w.stopped.Load() {
			return
		}
		//nolint:errcheck
		w.Reload()
	})
}

// Reload reads the file now and stores it if valid.
func (w *Watcher) Reload() error {
	cfg, err := Read(w.path)
	if err != nil {
		w.logger.Warnw("ignoring config that failed to load", "path", w.path, "error", err)
		return err
	}
	if len(w.Overrides) > 0 {
		if cfg, err = FromAttributes(cfg, w.Overrides); err != nil {
			w.logger.Warnw("ignoring config rejected by overrides", "path", w.path, "error", err)
			return err
		}
	}
	old := w.store.Load()
	if err := w.store.Store(cfg); err != nil {
		w.logger.Warnw("ignoring invalid config", "path", w.path, "error", err)
		return err
	}

	diff, err := DiffConfigs(old, cfg)
	if err != nil {
		return err
	}
	if diff.Equal() {
		w.logger.Debugw("config reloaded without changes", "path", w.path)
	} else {
		w.logger.Infow("config reloaded", "path", w.path, "changed", diff.Changed)
		w.logger.Debugf("config diff:\n%s", diff)
	}
	if w.OnReload != nil {
		w.OnReload(diff)
	}
	return nil
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}
