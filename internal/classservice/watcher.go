package classservice

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// EventCallback is called after a watcher-driven reload.
// kind is one of "reloaded", "removed".
type EventCallback func(kind string, path string)

// Watch starts an fsnotify watcher on the export file's directory and
// reloads the service when the file changes, until ctx is cancelled.
// It calls cb (if non-nil) after each successful reload.
//
// Editors commonly replace files via rename, and exporters rewrite the
// file in several writes. Events are therefore debounced, and a checksum
// gate skips reloads when the bytes did not actually change.
func Watch(ctx context.Context, svc *Service, dataRoot string, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	exportAbs := filepath.Join(dataRoot, filepath.FromSlash(svc.ExportFile()))
	watchDir := filepath.Dir(exportAbs)
	if err := w.Add(watchDir); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("dir", watchDir), slog.String("file", svc.ExportFile()))

	// reloadTimer debounces bursts of write events into one reload.
	var reloadTimer *time.Timer
	var reloadCh <-chan time.Time

	scheduleReload := func() {
		if reloadTimer == nil {
			reloadTimer = time.NewTimer(200 * time.Millisecond)
			reloadCh = reloadTimer.C
		} else {
			reloadTimer.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reloadTimer != nil {
				reloadTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-reloadCh:
			reloadIfChanged(ctx, svc, logger, cb)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != filepath.Clean(exportAbs) {
				continue
			}

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				scheduleReload()

			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				// Atomic-save editors remove or rename the old file
				// before the replacement lands, so wait for the Create
				// instead of tearing down state immediately. If the file
				// stays gone the debounced pass reports it.
				logger.Debug("watcher: export removed or renamed", slog.String("path", ev.Name))
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

// reloadIfChanged reloads the export unless its on-disk checksum matches
// the currently loaded snapshot.
func reloadIfChanged(ctx context.Context, svc *Service, logger *slog.Logger, cb EventCallback) {
	meta, err := svc.store.Stat(svc.ExportFile())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Warn("watcher: export missing, keeping last snapshot", slog.String("file", svc.ExportFile()))
			if cb != nil {
				cb("removed", svc.ExportFile())
			}
			return
		}
		logger.Warn("watcher: stat failed", slog.String("file", svc.ExportFile()), slog.String("error", err.Error()))
		return
	}
	if meta.Checksum == svc.SourceChecksum() {
		logger.Debug("watcher: checksum unchanged, skipping reload")
		return
	}

	stats, err := svc.Reload(ctx)
	if err != nil {
		logger.Warn("watcher: reload failed", slog.String("error", err.Error()))
		return
	}
	logger.Debug("watcher: reloaded",
		slog.Int("categories", stats.Categories),
		slog.Int("classes", stats.Classes))
	if cb != nil {
		cb("reloaded", svc.ExportFile())
	}
}
