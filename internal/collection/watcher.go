package collection

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce collapses the burst of events an editor or an atomic save
// produces into a single callback.
const DefaultDebounce = 200 * time.Millisecond

// Watch calls onChange after the collection file at path is written,
// created or replaced, until ctx is done. The parent directory is watched so
// rename-based saves are seen. Watcher errors go to onError when it is
// non-nil.
func Watch(ctx context.Context, path string, debounce time.Duration, onChange func(), onError func(error)) (err error) {
	path, err = filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve collection path: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() {
		if closeErr := watcher.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to watch collection directory: %w", err)
	}

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				timer.Reset(debounce)
			}
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			if onError != nil {
				onError(werr)
			}
		case <-timer.C:
			onChange()
		}
	}
}
