package template

import (
	"context"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// WatchDir reloads the templates in dir whenever a template file is written,
// created, renamed or removed and passes the full set to onChange. A reload
// that fails is logged and the previous set stays in effect. It runs until
// ctx is cancelled.
func WatchDir(ctx context.Context, dir string, log *zap.Logger, onChange func([]Template)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return err
	}
	log.Info("templates_watching", zap.String("dir", dir))

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isTemplateFile(ev.Name) || (ev.Has(fsnotify.Chmod) && !ev.Has(fsnotify.Write)) {
				continue
			}
			ts, err := LoadDir(dir)
			if err != nil {
				log.Error("templates_reload_failed", zap.String("dir", dir), zap.Error(err))
				continue
			}
			log.Info("templates_reloaded", zap.String("dir", dir), zap.Int("count", len(ts)))
			onChange(ts)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error("templates_watcher_error", zap.Error(err))
		}
	}
}
