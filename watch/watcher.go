package watch

import (
	"context"
	"fmt"

	"github.com/fsnotify/fsnotify"

	"prompt-keeper/library"
	"prompt-keeper/logger"
	"prompt-keeper/storage"
)

// Reloader is a store whose collections can be re-read from a directory.
// Reload reports false when the file matches what the store already holds.
type Reloader interface {
	Dir() string
	Reload(collection string) (bool, error)
}

// Watcher reloads collections when their files change on disk. Events
// caused by the store's own writes find the content unchanged and publish
// nothing.
type Watcher struct {
	fs     *fsnotify.Watcher
	store  Reloader
	notify library.Notifier
	log    *logger.Logger
}

// NewWatcher starts watching store's data directory. The directory is
// watched rather than the files because atomic writes replace them.
func NewWatcher(store Reloader, notify library.Notifier, log *logger.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(store.Dir()); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", store.Dir(), err)
	}
	return &Watcher{fs: fw, store: store, notify: notify, log: log}, nil
}

// Run processes events until ctx is cancelled or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.Warn("file watcher error", "error", err)
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
		return
	}
	collection, ok := storage.CollectionForFile(ev.Name)
	if !ok {
		return
	}
	changed, err := w.store.Reload(collection)
	if err != nil {
		w.log.Warn("reload after external edit failed", "collection", collection, "error", err)
		return
	}
	if !changed {
		return
	}
	w.log.Debug("collection reloaded", "collection", collection, "op", ev.Op.String())
	if w.notify != nil {
		w.notify.Notify(library.Change{Collection: collection, Op: library.OpReload})
	}
}

// Close stops the underlying fsnotify watcher.
func (w *Watcher) Close() error {
	return w.fs.Close()
}
