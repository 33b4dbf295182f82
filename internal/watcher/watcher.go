// Package watcher invalidates caches reactively when content files change on
// disk. Delivery is best-effort: a missed event only leaves an entry stale
// until its TTL runs out, which is why the watcher complements TTL expiry
// instead of replacing it.
package watcher

import (
	"log"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher observes a content directory and reports changed simulado ids.
type Watcher struct {
	fsw      *fsnotify.Watcher
	dir      string
	onChange func(id string)

	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New starts watching dir. onChange is called with the affected simulado id
// for every create/write/remove/rename of a .json file, from the watcher's
// own goroutine; it must not block for long.
func New(dir string, onChange func(id string)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	w := &Watcher{
		fsw:      fsw,
		dir:      dir,
		onChange: onChange,
		done:     make(chan struct{}),
	}
	w.wg.Add(1)
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	defer w.wg.Done()
	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !event.Op.Has(fsnotify.Create | fsnotify.Write | fsnotify.Remove | fsnotify.Rename) {
				continue
			}
			name := filepath.Base(event.Name)
			if !strings.HasSuffix(name, ".json") {
				continue
			}
			id := strings.TrimSuffix(name, ".json")
			log.Printf("content change detected: %s %s, invalidating %q", event.Op, name, id)
			w.onChange(id)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Printf("watcher error: %v", err)
		case <-w.done:
			return
		}
	}
}

// Close stops the background goroutine and releases the OS watch.
func (w *Watcher) Close() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.fsw.Close()
		w.wg.Wait()
	})
	return err
}
