package indexer

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/SShadowS/al-call-hierarchy/internal/debug"
)

// fileWatcher recursively watches a project root and drives ReindexFile
// off debounced fsnotify events. Grounded on the original indexer's
// FileWatcher: a single events goroutine feeding a debouncer that batches
// same-path events before dispatch.
type fileWatcher struct {
	idx     *Indexer
	root    string
	fsw     *fsnotify.Watcher
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	debounce time.Duration

	mu     sync.Mutex
	events map[string]fsnotify.Op
	timer  *time.Timer
}

// Watch starts a recursive filesystem watcher over root, reindexing
// changed files after a debounce window. The returned stop function closes
// the watcher and waits for its goroutines to exit.
func (idx *Indexer) Watch(ctx context.Context, root string) (stop func(), err error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	wctx, cancel := context.WithCancel(ctx)
	debounce := time.Duration(idx.config.Index.WatchDebounceMs) * time.Millisecond
	if debounce <= 0 {
		debounce = 300 * time.Millisecond
	}

	fw := &fileWatcher{
		idx:      idx,
		root:     root,
		fsw:      fsw,
		ctx:      wctx,
		cancel:   cancel,
		debounce: debounce,
		events:   make(map[string]fsnotify.Op),
	}
	idx.watcher = fw

	if err := fw.addWatches(root); err != nil {
		cancel()
		fsw.Close()
		return nil, err
	}

	fw.wg.Add(1)
	go fw.processEvents()

	debug.LogIndexing("watcher started for %s (debounce=%s)\n", root, debounce)

	return func() {
		cancel()
		fsw.Close()
		fw.wg.Wait()
	}, nil
}

// addWatches recursively registers a watch on every directory under root,
// guarding against symlink cycles the same way the batch walk does.
func (fw *fileWatcher) addWatches(root string) error {
	visited := make(map[string]bool)
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		real, rerr := filepath.EvalSymlinks(path)
		if rerr != nil {
			return nil
		}
		if visited[real] {
			return filepath.SkipDir
		}
		visited[real] = true

		if fw.idx.isExcludedDir(root, path) {
			return filepath.SkipDir
		}
		if err := fw.fsw.Add(path); err != nil {
			debug.LogIndexing("failed to watch %s: %v\n", path, err)
		}
		return nil
	})
}

func (fw *fileWatcher) processEvents() {
	defer fw.wg.Done()
	for {
		select {
		case <-fw.ctx.Done():
			return
		case ev, ok := <-fw.fsw.Events:
			if !ok {
				return
			}
			fw.handleEvent(ev)
		case _, ok := <-fw.fsw.Errors:
			if !ok {
				return
			}
		}
	}
}

func (fw *fileWatcher) handleEvent(ev fsnotify.Event) {
	path := ev.Name

	if ev.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if !fw.idx.isExcludedDir(fw.root, path) {
				_ = fw.fsw.Add(path)
			}
			return
		}
	}

	if !fw.idx.shouldInclude(fw.root, path) {
		return
	}

	fw.schedule(path, ev.Op)
}

// schedule records the latest op for path and resets the debounce timer,
// which flushes every batched event once the project goes quiet.
func (fw *fileWatcher) schedule(path string, op fsnotify.Op) {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	fw.events[path] = fw.events[path] | op
	if fw.timer != nil {
		fw.timer.Stop()
	}
	fw.timer = time.AfterFunc(fw.debounce, fw.flush)
}

func (fw *fileWatcher) flush() {
	fw.mu.Lock()
	events := fw.events
	fw.events = make(map[string]fsnotify.Op)
	fw.mu.Unlock()

	for path := range events {
		debug.LogIndexing("reindexing %s after debounced change\n", path)
		if err := fw.idx.ReindexFile(path); err != nil {
			debug.LogIndexing("reindex failed for %s: %v\n", path, err)
		}
	}
}
