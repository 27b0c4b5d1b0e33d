package store

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
)

const watchDebounce = 100 * time.Millisecond

// Watch signals on the returned channel whenever the database file changes
// on disk, debounced so a burst of indexer writes produces one signal. The
// WAL sidecar files count as changes too. Call stop to end watching; the
// channel closes once the watcher shuts down.
func Watch(dbPath string) (<-chan struct{}, func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, err
	}

	// Watch the directory, not the file: sqlite replaces and appends to
	// sidecars, and a direct file watch would be lost on rename.
	if err := watcher.Add(filepath.Dir(dbPath)); err != nil {
		watcher.Close()
		return nil, nil, err
	}

	changes := make(chan struct{}, 1)
	base := filepath.Base(dbPath)

	go func() {
		// A debounce timer fires on its own goroutine and may race the
		// shutdown below, so sends are gated on stopped under the mutex;
		// changes is only closed once no gated send can still go through.
		var mu sync.Mutex
		stopped := false

		signal := func() {
			mu.Lock()
			defer mu.Unlock()
			if stopped {
				return
			}
			select {
			case changes <- struct{}{}:
			default:
			}
		}

		var debounce *time.Timer
		defer func() {
			if debounce != nil {
				debounce.Stop()
			}
			mu.Lock()
			stopped = true
			mu.Unlock()
			close(changes)
		}()

		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !strings.HasPrefix(filepath.Base(event.Name), base) {
					continue
				}
				if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
					continue
				}
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(watchDebounce, signal)

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.WithError(err).Debug("database watcher error")
			}
		}
	}()

	return changes, func() { watcher.Close() }, nil
}
