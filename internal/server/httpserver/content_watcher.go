package httpserver

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/docsite/internal/content"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/logfields"
)

// ContentWatcher rebuilds the content index when files below the content
// root change and hands the new index to apply. A failed rebuild keeps the
// previous index in service.
type ContentWatcher struct {
	root         string
	rebuild      func() (*content.Index, error)
	apply        func(*content.Index)
	watcher      *fsnotify.Watcher
	debounceTime time.Duration

	mu         sync.Mutex
	stopChan   chan struct{}
	reloadChan chan struct{}
	wg         sync.WaitGroup
}

// NewContentWatcher creates a watcher for root.
func NewContentWatcher(root string, debounce time.Duration, rebuild func() (*content.Index, error), apply func(*content.Index)) (*ContentWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to create file watcher").Build()
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		_ = watcher.Close()
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to resolve content root").
			WithContext("path", root).
			Build()
	}
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	return &ContentWatcher{
		root:         absRoot,
		rebuild:      rebuild,
		apply:        apply,
		watcher:      watcher,
		debounceTime: debounce,
		stopChan:     make(chan struct{}),
		reloadChan:   make(chan struct{}, 1),
	}, nil
}

// Start watches every directory below the root. fsnotify is not recursive,
// so directories created later are added as they appear.
func (cw *ContentWatcher) Start(ctx context.Context) error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	if err := cw.addTree(cw.root); err != nil {
		return err
	}
	slog.Info("Starting content watcher", logfields.Path(cw.root))

	cw.wg.Add(2)
	go cw.watchLoop(ctx)
	go cw.reloadLoop(ctx)
	return nil
}

// Stop stops the watcher and waits for its goroutines.
func (cw *ContentWatcher) Stop() {
	cw.mu.Lock()
	select {
	case <-cw.stopChan:
		cw.mu.Unlock()
		return
	default:
		close(cw.stopChan)
	}
	cw.mu.Unlock()

	if err := cw.watcher.Close(); err != nil {
		slog.Error("Error closing content watcher", logfields.Error(err))
	}
	cw.wg.Wait()
	slog.Info("Content watcher stopped")
}

func (cw *ContentWatcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := cw.watcher.Add(path); err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "failed to watch directory").
				WithContext("path", path).
				Build()
		}
		return nil
	})
}

func (cw *ContentWatcher) watchLoop(ctx context.Context) {
	defer cw.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-cw.stopChan:
			return
		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			if event.Op == fsnotify.Chmod {
				continue
			}
			if event.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := cw.addTree(event.Name); err != nil {
						slog.Debug("Not watching new directory", logfields.Path(event.Name), logfields.Error(err))
					}
				}
			}
			slog.Debug("Content change detected", logfields.File(event.Name), slog.String("op", event.Op.String()))
			cw.triggerReload()
		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("Content watcher error", logfields.Error(err))
		}
	}
}

// reloadLoop coalesces bursts of changes into one rebuild per quiet period.
func (cw *ContentWatcher) reloadLoop(ctx context.Context) {
	defer cw.wg.Done()
	timer := time.NewTimer(cw.debounceTime)
	if !timer.Stop() {
		<-timer.C
	}
	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-cw.stopChan:
			timer.Stop()
			return
		case <-cw.reloadChan:
			timer.Reset(cw.debounceTime)
		case <-timer.C:
			cw.performReload()
		}
	}
}

func (cw *ContentWatcher) triggerReload() {
	select {
	case cw.reloadChan <- struct{}{}:
	default:
	}
}

func (cw *ContentWatcher) performReload() {
	start := time.Now()
	ix, err := cw.rebuild()
	if err != nil {
		slog.Error("Content reindex failed; keeping previous index", logfields.Error(err))
		return
	}
	cw.apply(ix)
	slog.Info("Content reindexed",
		logfields.Count(ix.Len()),
		logfields.DurationMS(float64(time.Since(start).Microseconds())/1000))
}
