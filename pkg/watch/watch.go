// Package watch reports changed manifests of a workspace.
//
// A [Watcher] subscribes to every project directory, collects write, create,
// remove and rename events on Package.swift files, and hands settled batches
// to a [Handler] keyed by project root, the shape the graph builder takes as
// its change set.
package watch

import (
	"context"
	"path"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/matzehuels/spmgraph/pkg/manifest"
	"github.com/matzehuels/spmgraph/pkg/workspace"
)

// DefaultDebounce is how long a file must be quiet before it is reported.
const DefaultDebounce = 300 * time.Millisecond

// Handler receives changed manifest files grouped by project root.
type Handler func(ctx context.Context, changed map[string][]string)

// Watcher watches the manifests of a workspace.
type Watcher struct {
	Debounce time.Duration

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	ws      *workspace.Workspace
	handler Handler
	logger  *log.Logger
	pending map[string]time.Time
	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
	stopped bool
}

// New creates a watcher for ws. Call Start to begin watching.
func New(ws *workspace.Workspace, handler Handler, logger *log.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Watcher{
		Debounce: DefaultDebounce,
		watcher:  fw,
		ws:       ws,
		handler:  handler,
		logger:   logger,
		pending:  make(map[string]time.Time),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start subscribes to every project directory and runs the event loop in a
// goroutine. Directories that cannot be watched are logged and skipped.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running || w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	for _, p := range w.ws.Projects {
		dir := w.ws.Abs(p.Root)
		if err := w.watcher.Add(dir); err != nil {
			w.logger.Warn("cannot watch project", "root", p.Root, "err", err)
			continue
		}
		w.logger.Debug("watching", "dir", dir)
	}

	go w.run(ctx)
	return nil
}

// Stop ends the event loop and releases the underlying watcher. It waits
// for an in-flight handler call to return. Stop is idempotent.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	started := w.running
	w.mu.Unlock()

	if started {
		close(w.stopCh)
		<-w.doneCh
	} else {
		close(w.doneCh)
	}
	if err := w.watcher.Close(); err != nil {
		w.logger.Error("closing watcher", "err", err)
	}
}

// Done is closed when the event loop exits.
func (w *Watcher) Done() <-chan struct{} {
	return w.doneCh
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.Debounce / 3)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watch error", "err", err)
		case <-ticker.C:
			w.flush(ctx)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Base(event.Name) != manifest.FileName {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}
	w.logger.Debug("manifest event", "op", event.Op.String(), "file", event.Name)
	w.mu.Lock()
	w.pending[event.Name] = time.Now()
	w.mu.Unlock()
}

// flush hands files that have been quiet for the debounce window to the
// handler.
func (w *Watcher) flush(ctx context.Context) {
	w.mu.Lock()
	now := time.Now()
	var settled []string
	for p, at := range w.pending {
		if now.Sub(at) >= w.Debounce {
			settled = append(settled, p)
			delete(w.pending, p)
		}
	}
	w.mu.Unlock()

	if len(settled) == 0 {
		return
	}
	if changed := Changes(w.ws, settled); len(changed) > 0 {
		w.handler(ctx, changed)
	}
}

// Changes groups absolute manifest paths by the project root that owns
// them. Paths outside the workspace or outside any known project are
// dropped. Files within a root are sorted.
func Changes(ws *workspace.Workspace, paths []string) map[string][]string {
	changed := make(map[string][]string)
	for _, abs := range paths {
		rel, ok := ws.Rel(abs)
		if !ok {
			continue
		}
		p, ok := ws.ProjectByRoot(path.Dir(rel))
		if !ok {
			continue
		}
		changed[p.Root] = append(changed[p.Root], rel)
	}
	for _, files := range changed {
		sort.Strings(files)
	}
	return changed
}
