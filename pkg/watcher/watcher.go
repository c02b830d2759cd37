package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/philipparndt/goslice/internal/logging"
)

// FileWatcher watches files for changes and triggers callbacks
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	debounce time.Duration

	mu    sync.Mutex
	files map[string]bool
	timer *time.Timer
}

// NewFileWatcher creates a new file watcher
func NewFileWatcher(debounce time.Duration, logger *slog.Logger) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	return &FileWatcher{
		watcher:  watcher,
		logger:   logging.OrDiscard(logger),
		debounce: debounce,
		files:    make(map[string]bool),
	}, nil
}

// Watch adds files to the watch set. The parent directories are watched so
// that editors replacing a file by rename are still noticed.
func (fw *FileWatcher) Watch(files ...string) error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	for _, file := range files {
		absPath, err := filepath.Abs(file)
		if err != nil {
			return fmt.Errorf("failed to resolve path %s: %w", file, err)
		}

		dir := filepath.Dir(absPath)
		if err := fw.watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}

		fw.files[absPath] = true
	}

	return nil
}

// Replace swaps the watch set, e.g. after the include list of a model changed.
func (fw *FileWatcher) Replace(files ...string) error {
	fw.mu.Lock()
	for _, dir := range fw.watcher.WatchList() {
		if err := fw.watcher.Remove(dir); err != nil {
			fw.mu.Unlock()
			return err
		}
	}
	fw.files = make(map[string]bool)
	fw.mu.Unlock()

	return fw.Watch(files...)
}

// Run delivers debounced change notifications to callback until ctx is done.
// A burst of events for any watched file results in one call carrying the
// last changed path. Callbacks never run concurrently.
func (fw *FileWatcher) Run(ctx context.Context, callback func(path string)) error {
	changed := make(chan string, 1)

	for {
		select {
		case <-ctx.Done():
			fw.stopTimer()
			return ctx.Err()

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			fw.handleFileChange(event.Name, changed)

		case path := <-changed:
			fw.logger.Debug("file changed", "path", path)
			callback(path)

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return nil
			}
			fw.logger.Warn("watcher error", "error", err)
		}
	}
}

// handleFileChange handles a file change event with debouncing
func (fw *FileWatcher) handleFileChange(filePath string, changed chan<- string) {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if !fw.files[filepath.Clean(filePath)] {
		return
	}

	if fw.timer != nil {
		fw.timer.Stop()
	}
	fw.timer = time.AfterFunc(fw.debounce, func() {
		select {
		case changed <- filePath:
		default:
		}
	})
}

func (fw *FileWatcher) stopTimer() {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	if fw.timer != nil {
		fw.timer.Stop()
	}
}

// Close stops the watcher
func (fw *FileWatcher) Close() error {
	return fw.watcher.Close()
}
