package config

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/teleconsult/signal/pkg/logger"
)

// Watch calls fn after each change of the file.
// The directory is watched because editors often replace files.
func Watch(path string, fn func(), log *logger.Logger) (stop func() error, err error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		_ = w.Close()
		return nil, err
	}
	if err = w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		return nil, err
	}
	go func() {
		for {
			select {
			case e, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(e.Name) != abs {
					continue
				}
				if e.Op&(fsnotify.Write|fsnotify.Create) != 0 {
					log.Debug().Str("file", e.Name).Msg("Config changed")
					fn()
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Warn().Err(err).Msg("Config watch")
			}
		}
	}()
	return w.Close, nil
}
