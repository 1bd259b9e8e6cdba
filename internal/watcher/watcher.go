package watcher

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher monitors the asset source directories and fires the callback when
// files settle after a change. Events are debounced because poster drops
// usually arrive as bursts (a folder of season images at once).
type Watcher struct {
	callback func()
	watcher  *fsnotify.Watcher

	mu      sync.Mutex
	watched map[string]bool
	timer   *time.Timer
	stop    chan struct{}
}

const settleDelay = 10 * time.Second

// New creates a watcher over the given source directories.
func New(dirs []string, cb func()) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		callback: cb,
		watcher:  fw,
		watched:  make(map[string]bool),
		stop:     make(chan struct{}),
	}
	for _, dir := range dirs {
		if err := w.addRecursive(dir); err != nil {
			log.Printf("[watcher] error adding %s: %v", dir, err)
		}
	}
	return w, nil
}

// Start begins processing events.
func (w *Watcher) Start() {
	go w.eventLoop()
	w.mu.Lock()
	n := len(w.watched)
	w.mu.Unlock()
	log.Printf("[watcher] watching %d directories", n)
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	close(w.stop)
	w.watcher.Close()
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip inaccessible dirs
		}
		if !info.IsDir() {
			return nil
		}
		if strings.HasPrefix(filepath.Base(path), ".") && path != root {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return nil
		}
		w.mu.Lock()
		w.watched[path] = true
		w.mu.Unlock()
		return nil
	})
}

func (w *Watcher) eventLoop() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("[watcher] error: %v", err)
		case <-w.stop:
			return
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, ".tmp") {
		return
	}

	// New subdirectories (a freshly dropped title folder) join the watch set.
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addRecursive(event.Name); err != nil {
				log.Printf("[watcher] error adding %s: %v", event.Name, err)
			}
		}
	}

	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(settleDelay, func() {
		log.Printf("[watcher] source change settled, triggering rescan")
		w.callback()
	})
}
