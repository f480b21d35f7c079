// Package filewatcher monitors the documents directory and drives
// automatic reloads. It implements ports.FileWatcher using fsnotify.
package filewatcher

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/nmrocha/munirag-go/internal/domain/entities"
	"github.com/nmrocha/munirag-go/internal/logger"
)

// FSNotifyWatcher implements ports.FileWatcher using fsnotify.
type FSNotifyWatcher struct {
	watcher    *fsnotify.Watcher
	extensions []string // file extensions to watch
}

// NewFSNotifyWatcher creates a new file watcher.
func NewFSNotifyWatcher(extensions []string) (*FSNotifyWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if len(extensions) == 0 {
		extensions = []string{".pdf", ".txt", ".md"}
	}

	return &FSNotifyWatcher{
		watcher:    w,
		extensions: extensions,
	}, nil
}

// Watch starts monitoring the directory and emits the paths of created,
// modified or removed documents.
func (w *FSNotifyWatcher) Watch(ctx context.Context, dir string) (<-chan string, error) {
	if err := w.watcher.Add(dir); err != nil {
		return nil, err
	}

	changes := make(chan string, 100)

	go func() {
		defer close(changes)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if !w.isWatchedExtension(event.Name) {
					continue
				}
				if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}
				select {
				case changes <- event.Name:
				case <-ctx.Done():
					return
				}
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("file watcher: %v", err)
			}
		}
	}()

	return changes, nil
}

// Stop stops the watcher.
func (w *FSNotifyWatcher) Stop() error {
	return w.watcher.Close()
}

// isWatchedExtension checks if the file has a watched extension.
func (w *FSNotifyWatcher) isWatchedExtension(path string) bool {
	ext := filepath.Ext(path)
	for _, e := range w.extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// TriggerReloads consumes change events and invokes reload after a quiet
// period, coalescing bursts of file changes into a single rebuild. A
// reload rejected because one is already running is logged and dropped;
// any other failure keeps the previous generation serving.
func TriggerReloads(ctx context.Context, changes <-chan string, quiet time.Duration, reload func(context.Context) error) {
	if quiet <= 0 {
		quiet = 2 * time.Second
	}

	timer := time.NewTimer(quiet)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case path, ok := <-changes:
			if !ok {
				return
			}
			logger.Debug("document change detected: %s", path)
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(quiet)
		case <-timer.C:
			logger.Info("documents changed, reloading index")
			if err := reload(ctx); err != nil {
				if errors.Is(err, entities.ErrReloadInProgress) {
					logger.Warn("auto-reload skipped: %v", err)
				} else {
					logger.Error("auto-reload failed: %v", err)
				}
			}
		}
	}
}
