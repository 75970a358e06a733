// Package watcher reloads the catalog when its file changes on disk.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/preedep/appinterfaceviewer/pkg/logging"
)

// ChangeType represents the type of file change detected
type ChangeType int

const (
	ChangeTypeModified ChangeType = iota
	ChangeTypeRemoved
)

func (t ChangeType) String() string {
	if t == ChangeTypeRemoved {
		return "removed"
	}
	return "modified"
}

// ChangeEvent represents a batch of file system changes
type ChangeEvent struct {
	Type      ChangeType
	Paths     []string
	Timestamp time.Time
}

// batchDelay groups the burst of events a single save produces
const batchDelay = 100 * time.Millisecond

// FileWatcher watches one catalog file. The parent directory is watched
// rather than the file itself, so editors that save by renaming a temporary
// file over the original are still seen.
type FileWatcher struct {
	watcher *fsnotify.Watcher
	path    string
	events  chan ChangeEvent
	log     *slog.Logger
}

// NewFileWatcher creates a new file system watcher for the catalog file
func NewFileWatcher(path string) (*FileWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve catalog path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	fw := &FileWatcher{
		watcher: watcher,
		path:    abs,
		events:  make(chan ChangeEvent, 100),
		log:     logging.New("watcher"),
	}

	return fw, nil
}

// Start begins watching for file changes. The event channel is closed once
// ctx is done.
func (fw *FileWatcher) Start(ctx context.Context) error {
	dir := filepath.Dir(fw.path)
	if err := fw.watcher.Add(dir); err != nil {
		fw.watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	fw.log.Info("started watching catalog", "path", fw.path)

	go fw.processEvents(ctx)

	return nil
}

// processEvents filters directory events down to the catalog file and
// batches them
func (fw *FileWatcher) processEvents(ctx context.Context) {
	var (
		modified []string
		removed  []string
	)

	flushTimer := time.NewTimer(batchDelay)
	flushTimer.Stop()

	send := func(event ChangeEvent) {
		select {
		case fw.events <- event:
		case <-ctx.Done():
		}
	}

	flush := func() {
		if len(modified) > 0 {
			send(ChangeEvent{Type: ChangeTypeModified, Paths: modified, Timestamp: time.Now()})
			modified = nil
		}
		if len(removed) > 0 {
			send(ChangeEvent{Type: ChangeTypeRemoved, Paths: removed, Timestamp: time.Now()})
			removed = nil
		}
	}

	defer func() {
		fw.watcher.Close()
		close(fw.events)
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != fw.path {
				continue
			}

			fw.log.Debug("catalog file event", "op", event.Op.String())
			switch {
			case event.Has(fsnotify.Write), event.Has(fsnotify.Create):
				modified = append(modified, event.Name)
			case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
				removed = append(removed, event.Name)
			default:
				continue
			}
			flushTimer.Reset(batchDelay)

		case <-flushTimer.C:
			flush()

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.log.Error("watcher error", "error", err)
		}
	}
}

// Events returns the channel of change events
func (fw *FileWatcher) Events() <-chan ChangeEvent {
	return fw.events
}

// Path returns the absolute path of the watched file
func (fw *FileWatcher) Path() string {
	return fw.path
}

// Watch runs the watcher and debouncer and calls reload after each quiet
// period with the merged change. It blocks until ctx is done.
func Watch(ctx context.Context, path string, quietPeriod, maxWait time.Duration, reload func(context.Context, ChangeEvent)) error {
	fw, err := NewFileWatcher(path)
	if err != nil {
		return err
	}
	if err := fw.Start(ctx); err != nil {
		return err
	}

	d := NewDebouncer(fw.Events(), quietPeriod, maxWait)
	d.Start(ctx)

	for event := range d.Output() {
		if ctx.Err() != nil {
			break
		}
		reload(ctx, event)
	}
	return nil
}
