// control/hotreload.go
// Author: momentics <momentics@gmail.com>
//
// Watches the config file and pushes re-parsed snapshots into a ConfigStore.

package control

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/joeycumines/logiface"
)

// ConfigWatcher reloads a config file into a store whenever it changes.
type ConfigWatcher struct {
	watcher *fsnotify.Watcher
	store   *ConfigStore
	path    string
	logger  *logiface.Logger[logiface.Event]
	done    chan struct{}
	once    sync.Once
}

// WatchConfig starts watching path. The parent directory is watched so that
// editors replacing the file atomically are still observed.
func WatchConfig(path string, store *ConfigStore, logger *logiface.Logger[logiface.Event]) (*ConfigWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config watcher: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("config watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("config watcher: %w", err)
	}
	cw := &ConfigWatcher{
		watcher: w,
		store:   store,
		path:    abs,
		logger:  logger,
		done:    make(chan struct{}),
	}
	go cw.run()
	return cw, nil
}

func (cw *ConfigWatcher) run() {
	defer close(cw.done)
	for {
		select {
		case ev, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != cw.path || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			cw.reload()
		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			cw.logger.Warning().Err(err).Str("path", cw.path).Log("config watch error")
		}
	}
}

func (cw *ConfigWatcher) reload() {
	cfg, err := LoadConfig(cw.path)
	if err != nil {
		cw.logger.Warning().Err(err).Str("path", cw.path).Log("config reload rejected")
		return
	}
	cw.logger.Info().Str("path", cw.path).Str("log_level", cfg.LogLevel).Log("config reloaded")
	cw.store.SetConfig(cfg)
}

// Close stops the watcher and waits for its goroutine to exit.
func (cw *ConfigWatcher) Close() error {
	var err error
	cw.once.Do(func() {
		err = cw.watcher.Close()
		<-cw.done
	})
	return err
}
