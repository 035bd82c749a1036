// Package filesystem watches log files on disk and reports changes, so the
// indexer can keep the vector store current as logs are written.
package filesystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// ChangeType describes what happened to a watched file.
type ChangeType string

// Change types.
const (
	ChangeCreated  ChangeType = "created"
	ChangeModified ChangeType = "modified"
	ChangeDeleted  ChangeType = "deleted"
)

// Change is a single observed file event.
type Change struct {
	// Path is the absolute path of the affected file.
	Path string

	// Type is what happened to it.
	Type ChangeType
}

// Watcher reports changes to log files under a set of root paths.
type Watcher struct {
	roots []string

	mu     sync.Mutex
	closed bool
	fsw    *fsnotify.Watcher
}

// NewWatcher creates a watcher over the given root paths. Each root may be a
// file or a directory; directories are watched non-recursively.
func NewWatcher(roots ...string) *Watcher {
	return &Watcher{roots: roots}
}

// Watch starts watching and returns a channel of changes. The channel is
// closed when the context is cancelled or the watcher is closed.
func (w *Watcher) Watch(ctx context.Context) (<-chan Change, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil, fmt.Errorf("watcher is closed")
	}
	if w.fsw != nil {
		return nil, fmt.Errorf("watcher is already running")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	for _, root := range w.roots {
		if _, err := os.Stat(root); err != nil {
			fsw.Close()
			return nil, fmt.Errorf("root path error: %w", err)
		}
		if err := fsw.Add(root); err != nil {
			fsw.Close()
			return nil, fmt.Errorf("watch %s: %w", root, err)
		}
	}
	w.fsw = fsw

	changes := make(chan Change)
	go w.run(ctx, fsw, changes)
	return changes, nil
}

// run pumps fsnotify events into the change channel until the context is
// cancelled or the underlying watcher closes.
func (w *Watcher) run(ctx context.Context, fsw *fsnotify.Watcher, changes chan<- Change) {
	defer close(changes)

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			change, relevant := translateEvent(event)
			if !relevant {
				continue
			}
			select {
			case changes <- change:
			case <-ctx.Done():
				return
			}

		case _, ok := <-fsw.Errors:
			if !ok {
				return
			}
			// Watch errors are transient; keep watching.
		}
	}
}

// translateEvent maps an fsnotify event to a change. Hidden files and
// directories are ignored.
func translateEvent(event fsnotify.Event) (Change, bool) {
	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, ".") {
		return Change{}, false
	}

	switch {
	case event.Op.Has(fsnotify.Create):
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			return Change{}, false
		}
		return Change{Path: event.Name, Type: ChangeCreated}, true

	case event.Op.Has(fsnotify.Write):
		return Change{Path: event.Name, Type: ChangeModified}, true

	case event.Op.Has(fsnotify.Remove), event.Op.Has(fsnotify.Rename):
		return Change{Path: event.Name, Type: ChangeDeleted}, true

	default:
		return Change{}, false
	}
}

// Close stops the watcher. Safe to call more than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.closed = true
	if w.fsw == nil {
		return nil
	}
	err := w.fsw.Close()
	w.fsw = nil
	return err
}
