package backupmgr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// fsWatcher wraps an fsnotify watcher on a single directory.
type fsWatcher struct {
	watcher   *fsnotify.Watcher
	events    chan fsnotify.Event
	errors    chan error
	done      chan struct{}
	closeOnce sync.Once
}

func newFsWatcher(path, identifier string) (*fsWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("%s failed to create watcher: %w", identifier, err)
	}
	if err := w.Add(path); err != nil {
		w.Close()
		return nil, fmt.Errorf("%s failed to watch %s: %w", identifier, path, err)
	}

	fw := &fsWatcher{
		watcher: w,
		events:  make(chan fsnotify.Event, 16),
		errors:  make(chan error, 4),
		done:    make(chan struct{}),
	}
	go fw.forward()
	return fw, nil
}

func (w *fsWatcher) forward() {
	defer close(w.events)
	defer close(w.errors)
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			select {
			case w.events <- event:
			case <-w.done:
				return
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			case <-w.done:
				return
			}
		}
	}
}

func (w *fsWatcher) close() {
	w.closeOnce.Do(func() {
		close(w.done)
		w.watcher.Close()
	})
}

// WatchWorlds reports worlds appearing in or disappearing from discoveryPath
// until ctx is cancelled or the manager shuts down. discoveryPath must exist.
func (m *BackupManager) WatchWorlds(ctx context.Context, discoveryPath string, onChange func(WorldEvent)) error {
	known := make(map[string]bool)
	worlds, err := ListWorlds(discoveryPath)
	if err != nil {
		return err
	}
	for _, w := range worlds {
		known[w] = true
	}

	watcher, err := newFsWatcher(discoveryPath, m.config.Identifier)
	if err != nil {
		return fmt.Errorf("failed to create world watcher: %w", err)
	}

	m.mu.Lock()
	if m.cancel == nil {
		m.mu.Unlock()
		watcher.close()
		return fmt.Errorf("%s backup manager is shut down", m.config.Identifier)
	}
	if m.watcher != nil {
		m.watcher.close()
	}
	m.watcher = watcher
	m.wg.Add(1)
	m.mu.Unlock()

	defer m.wg.Done()
	defer watcher.close()

	m.log(fmt.Sprintf("Watching %s for worlds", discoveryPath), "Info")
	defer m.log("World watcher stopped", "Info")

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-m.ctx.Done():
			return nil
		case event, ok := <-watcher.events:
			if !ok {
				return nil
			}
			if filepath.Dir(event.Name) != filepath.Clean(discoveryPath) {
				continue
			}
			world := filepath.Base(event.Name)
			switch {
			case event.Op&fsnotify.Create == fsnotify.Create:
				// restores stage into hidden siblings
				if strings.HasPrefix(world, ".") {
					continue
				}
				info, err := os.Stat(event.Name)
				if err != nil || !info.IsDir() || known[world] {
					continue
				}
				known[world] = true
				m.log(fmt.Sprintf("New world detected: %s", world), "Info")
				onChange(WorldEvent{World: world, Path: event.Name, Op: WorldAdded, Time: time.Now()})
			case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				if !known[world] {
					continue
				}
				delete(known, world)
				m.log(fmt.Sprintf("World removed: %s", world), "Info")
				onChange(WorldEvent{World: world, Path: event.Name, Op: WorldRemoved, Time: time.Now()})
			}
		case err, ok := <-watcher.errors:
			if !ok {
				return nil
			}
			m.log(fmt.Sprintf("World watcher error: %s", err.Error()), "Error")
		}
	}
}
