package simulation

import (
	"fmt"
	"log"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"chosenoffset.com/rubble/internal/core/fracture"
)

// MaterialWatcher reloads the material file whenever it changes on disk. Reloaded
// registries are delivered on Updates; only the newest unread one is kept, so the game
// loop can drain it once per frame.
type MaterialWatcher struct {
	path    string
	watcher *fsnotify.Watcher
	updates chan *fracture.Registry
	done    chan struct{}
}

// WatchMaterials starts watching path. The parent directory is watched so editors that
// save by rename are still seen.
func WatchMaterials(path string) (*MaterialWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create material watcher: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to resolve material path: %w", err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch material directory: %w", err)
	}

	mw := &MaterialWatcher{
		path:    abs,
		watcher: watcher,
		updates: make(chan *fracture.Registry, 1),
		done:    make(chan struct{}),
	}
	go mw.run()
	return mw, nil
}

// Updates delivers freshly loaded registries.
func (mw *MaterialWatcher) Updates() <-chan *fracture.Registry {
	return mw.updates
}

// Close stops the watcher and waits for its goroutine to exit.
func (mw *MaterialWatcher) Close() error {
	err := mw.watcher.Close()
	<-mw.done
	return err
}

func (mw *MaterialWatcher) run() {
	defer close(mw.done)
	for {
		select {
		case event, ok := <-mw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != mw.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			reg, err := fracture.LoadRegistry(mw.path)
			if err != nil {
				log.Printf("Warning: material reload failed: %v", err)
				continue
			}
			mw.publish(reg)
		case err, ok := <-mw.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("Warning: material watcher error: %v", err)
		}
	}
}

func (mw *MaterialWatcher) publish(reg *fracture.Registry) {
	select {
	case mw.updates <- reg:
		return
	default:
	}
	// Drop the stale registry nobody has read yet.
	select {
	case <-mw.updates:
	default:
	}
	select {
	case mw.updates <- reg:
	default:
	}
}
