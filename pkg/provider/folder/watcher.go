package folder

import (
	"context"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/matzehuels/piemenu/pkg/events"
	"github.com/matzehuels/piemenu/pkg/node"
	"github.com/matzehuels/piemenu/pkg/provider"
)

// DefaultDebounce coalesces bursts of changes in one directory.
const DefaultDebounce = 100 * time.Millisecond

// Watcher publishes an update event for a directory whenever its entries
// change. Events carry the directory as content ID, matching the rings
// listing it.
type Watcher struct {
	fs       *fsnotify.Watcher
	bus      events.Bus
	logger   *log.Logger
	debounce time.Duration

	mu      sync.Mutex
	dirs    map[string]struct{}
	pending map[string]*time.Timer
}

// NewWatcher creates a watcher publishing to bus.
func NewWatcher(bus events.Bus, logger *log.Logger) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Watcher{
		fs:       fs,
		bus:      bus,
		logger:   logger,
		debounce: DefaultDebounce,
		dirs:     make(map[string]struct{}),
		pending:  make(map[string]*time.Timer),
	}, nil
}

// Watch starts watching dir. Watching a directory twice is a no-op.
func (w *Watcher) Watch(dir string) error {
	dir = filepath.Clean(dir)
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.dirs[dir]; ok {
		return nil
	}
	if err := w.fs.Add(dir); err != nil {
		return err
	}
	w.dirs[dir] = struct{}{}
	w.logger.Debug("watching folder", "dir", dir)
	return nil
}

// Unwatch stops watching dir.
func (w *Watcher) Unwatch(dir string) {
	dir = filepath.Clean(dir)
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.dirs[dir]; !ok {
		return
	}
	delete(w.dirs, dir)
	_ = w.fs.Remove(dir)
}

// Watched returns the number of watched directories.
func (w *Watcher) Watched() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.dirs)
}

// Run forwards filesystem changes until ctx is done, then closes the
// underlying watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.close()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			w.handle(ctx, ev)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("folder watcher error", "err", err)
		}
	}
}

func (w *Watcher) handle(ctx context.Context, ev fsnotify.Event) {
	// Chmod never changes a listing.
	if ev.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename|fsnotify.Write) == 0 {
		return
	}
	dir := filepath.Dir(ev.Name)
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.dirs[dir]; !ok {
		return
	}

	if t, ok := w.pending[dir]; ok {
		t.Stop()
	}
	w.pending[dir] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.pending, dir)
		w.mu.Unlock()

		up := provider.NewUpdateEvent(ID, dir)
		up.Metadata = map[string]string{"op": ev.Op.String(), "name": filepath.Base(ev.Name)}
		if err := w.bus.Publish(ctx, up); err != nil {
			w.logger.Warn("publishing folder update failed", "dir", dir, "err", err)
			return
		}
		w.logger.Debug("folder changed", "dir", dir, "op", ev.Op.String())
	})
}

func (w *Watcher) close() {
	w.mu.Lock()
	for dir, t := range w.pending {
		t.Stop()
		delete(w.pending, dir)
	}
	w.mu.Unlock()
	_ = w.fs.Close()
}

// Tracking wraps p so every directory it lists is watched by w. p is usually
// a folder Provider, possibly behind a cache.
func Tracking(p provider.Provider, w *Watcher) provider.Provider {
	return &tracked{Provider: p, w: w}
}

type tracked struct {
	provider.Provider
	w *Watcher
}

func (t *tracked) LoadChildren(ctx context.Context, n node.Node) ([]node.Node, error) {
	children, err := t.Provider.LoadChildren(ctx, n)
	if err == nil {
		if dir := n.Metadata[node.MetaPath]; dir != "" {
			if werr := t.w.Watch(dir); werr != nil {
				t.w.logger.Warn("cannot watch folder", "dir", dir, "err", werr)
			}
		}
	}
	return children, err
}
